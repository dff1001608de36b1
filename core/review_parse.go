package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"

	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/schema"
)

// fencedPattern matches a response that is entirely wrapped in a markdown code fence.
var fencedPattern = regexp.MustCompile("(?s)^```(?:json)?\\s*\\n?(.*?)\\n?```$")

// ParseReviewResponse validates model output against the review contract:
// one JSON object whose "issues" key holds a list of finding objects.
// Every deviation is reported as an ErrValidation with the reason.
func ParseReviewResponse(text string) ([]schema.ReviewFinding, error) {
	cleaned := strings.TrimSpace(text)
	if m := fencedPattern.FindStringSubmatch(cleaned); m != nil {
		cleaned = strings.TrimSpace(m[1])
	}

	top, err := decodeStrict(cleaned)
	if err != nil {
		return nil, validationErr("response is not valid JSON: %v", err)
	}

	obj, ok := top.(map[string]any)
	if !ok {
		return nil, validationErr("expected a JSON object, got %s", jsonKind(top))
	}
	raw, ok := obj["issues"]
	if !ok {
		return nil, validationErr(`response has no "issues" key`)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, validationErr(`"issues" must be a list, got %s`, jsonKind(raw))
	}

	findings := make([]schema.ReviewFinding, 0, len(items))
	for i, item := range items {
		f, err := parseFinding(item)
		if err != nil {
			return nil, validationErr("issues[%d]: %v", i, err)
		}
		findings = append(findings, f)
	}
	return findings, nil
}

// decodeStrict parses exactly one JSON value and rejects trailing content.
func decodeStrict(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected content after the JSON value")
	}
	return v, nil
}

func parseFinding(item any) (schema.ReviewFinding, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return schema.ReviewFinding{}, fmt.Errorf("expected an object, got %s", jsonKind(item))
	}

	line, err := requiredLine(obj)
	if err != nil {
		return schema.ReviewFinding{}, err
	}
	issueType, err := stringField(obj, "issue_type", true)
	if err != nil {
		return schema.ReviewFinding{}, err
	}
	description, err := stringField(obj, "description", true)
	if err != nil {
		return schema.ReviewFinding{}, err
	}
	snippet, err := stringField(obj, "code_snippet", false)
	if err != nil {
		return schema.ReviewFinding{}, err
	}
	suggestion, err := stringField(obj, "suggestion", false)
	if err != nil {
		return schema.ReviewFinding{}, err
	}

	return schema.ReviewFinding{
		LineNumber:  line,
		CodeSnippet: snippet,
		IssueType:   issueType,
		Description: description,
		Suggestion:  suggestion,
	}, nil
}

func requiredLine(obj map[string]any) (int, error) {
	raw, ok := obj["line_number"]
	if !ok {
		return 0, errors.New(`missing "line_number"`)
	}
	num, ok := raw.(json.Number)
	if !ok {
		return 0, fmt.Errorf(`"line_number" must be a number, got %s`, jsonKind(raw))
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return 0, fmt.Errorf(`"line_number" must be a non-negative integer, got %s`, num)
	}
	return int(f), nil
}

func stringField(obj map[string]any, key string, required bool) (string, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		if required {
			return "", fmt.Errorf("missing %q", key)
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%q must be a string, got %s", key, jsonKind(raw))
	}
	return s, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", contract.ErrValidation, fmt.Sprintf(format, args...))
}
