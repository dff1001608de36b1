package core

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/schema"
)

// oversizedPlaceholder stands in for the code of files too large to review.
const oversizedPlaceholder = "// File content omitted: too large to review."

// notConfiguredMessage is reported for every file when no model client is set.
const notConfiguredMessage = "AI review is not configured: set ANTHROPIC_API_KEY to enable it"

const reviewSystemPrompt = `You are a senior software engineer performing a focused code review.
Report concrete problems only: bugs, security issues, performance problems and code quality issues.

Respond with exactly one JSON object and nothing else, in this shape:
{"issues": [{"line_number": 12, "code_snippet": "...", "issue_type": "Potential Bug", "description": "...", "suggestion": "..."}]}

- line_number is the 1-based line the issue refers to.
- issue_type is one of "Potential Bug", "Security", "Code Quality", "Performance", or another short category.
- Return {"issues": []} when there is nothing worth reporting.`

// Reviewer runs one AI review per file, concurrently.
// A nil model is the review-disabled mode.
type Reviewer struct {
	hosting      contract.HostingClient
	model        contract.ModelClient
	maxFileBytes int64
}

// NewReviewer creates a reviewer. maxFileBytes <= 0 uses the 1MB default.
func NewReviewer(hosting contract.HostingClient, model contract.ModelClient, maxFileBytes int64) *Reviewer {
	if maxFileBytes <= 0 {
		maxFileBytes = contract.DefaultMaxFileBytes
	}
	return &Reviewer{hosting: hosting, model: model, maxFileBytes: maxFileBytes}
}

// Review returns exactly one FileReview per path, in the order given. Every
// failure, including a panic, is recorded in that file's Error field; it never
// affects the other files. Review returns only after all files have settled.
func (r *Reviewer) Review(ctx context.Context, ref schema.RepositoryRef, paths []string) []schema.FileReview {
	reviews := make([]schema.FileReview, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Go(func() {
			// Each goroutine writes only reviews[i].
			defer func() {
				if rec := recover(); rec != nil {
					reviews[i] = schema.FileReview{
						Filename: path,
						Findings: []schema.ReviewFinding{},
						Error:    fmt.Sprintf("review failed unexpectedly: %v", rec),
					}
				}
			}()
			reviews[i] = r.reviewFile(ctx, ref, path)
		})
	}
	wg.Wait()

	return reviews
}

func (r *Reviewer) reviewFile(ctx context.Context, ref schema.RepositoryRef, path string) schema.FileReview {
	review := schema.FileReview{Filename: path, Findings: []schema.ReviewFinding{}}

	content, err := r.hosting.GetFileContent(ctx, ref, path)
	if err != nil {
		review.Error = fmt.Sprintf("failed to fetch file: %v", err)
		return review
	}
	if content.Size > r.maxFileBytes {
		review.Code = oversizedPlaceholder
		review.Error = oversizedMessage(r.maxFileBytes)
		return review
	}

	data, err := content.Decode()
	if err != nil {
		review.Error = fmt.Sprintf("failed to decode file: %v", err)
		return review
	}
	if !utf8.Valid(data) {
		review.Error = "file is not valid UTF-8 text"
		return review
	}
	review.Code = string(data)

	if r.model == nil {
		review.Error = notConfiguredMessage
		return review
	}

	text, err := r.model.Complete(ctx, reviewSystemPrompt, buildReviewPrompt(path, review.Code))
	if err != nil {
		review.Error = fmt.Sprintf("AI review request failed: %v", err)
		return review
	}

	findings, err := ParseReviewResponse(text)
	if err != nil {
		review.Error = fmt.Sprintf("invalid AI response: %v", err)
		return review
	}
	review.Findings = findings
	return review
}

func buildReviewPrompt(path, code string) string {
	return fmt.Sprintf("Review the file %s.\n\n```\n%s\n```", path, code)
}

// oversizedMessage renders the size limit, e.g. "File size exceeds 1MB; skipped AI review".
func oversizedMessage(limit int64) string {
	var size string
	switch {
	case limit%(1<<20) == 0:
		size = fmt.Sprintf("%dMB", limit>>20)
	case limit%(1<<10) == 0:
		size = fmt.Sprintf("%dKB", limit>>10)
	default:
		size = fmt.Sprintf("%d bytes", limit)
	}
	return fmt.Sprintf("File size exceeds %s; skipped AI review", size)
}
