package core

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func textFile(path, code string) schema.FileContent {
	return schema.FileContent{
		Path:     path,
		Size:     int64(len(code)),
		Encoding: "base64",
		Raw:      base64.StdEncoding.EncodeToString([]byte(code)),
	}
}

// panickingModel is a ModelClient whose Complete always panics.
type panickingModel struct{}

func (panickingModel) Complete(context.Context, string, string) (string, error) {
	panic("boom")
}

func TestReviewer_Review(t *testing.T) {
	ctx := context.Background()
	hosting := &contract.MockHostingClient{}
	model := &contract.MockModelClient{}

	hosting.On("GetFileContent", mock.Anything, testRef, "good.go").Return(textFile("good.go", "package good\n"), nil)
	hosting.On("GetFileContent", mock.Anything, testRef, "clean.go").Return(textFile("clean.go", "package clean\n"), nil)
	hosting.On("GetFileContent", mock.Anything, testRef, "bad.go").Return(textFile("bad.go", "package bad\n"), nil)

	model.On("Complete", mock.Anything, reviewSystemPrompt, buildReviewPrompt("good.go", "package good\n")).
		Return(`{"issues": [{"line_number": 1, "code_snippet": "package good", "issue_type": "Code Quality", "description": "missing doc", "suggestion": "add a package comment"}]}`, nil)
	model.On("Complete", mock.Anything, reviewSystemPrompt, buildReviewPrompt("clean.go", "package clean\n")).
		Return(`{"issues": []}`, nil)
	model.On("Complete", mock.Anything, reviewSystemPrompt, buildReviewPrompt("bad.go", "package bad\n")).
		Return(`{"result": []}`, nil)

	reviewer := NewReviewer(hosting, model, 0)
	reviews := reviewer.Review(ctx, testRef, []string{"good.go", "clean.go", "bad.go"})

	require.Len(t, reviews, 3)
	assert.Equal(t, "good.go", reviews[0].Filename)
	assert.Equal(t, "package good\n", reviews[0].Code)
	assert.Empty(t, reviews[0].Error)
	require.Len(t, reviews[0].Findings, 1)
	assert.Equal(t, "Code Quality", reviews[0].Findings[0].IssueType)

	assert.Equal(t, "clean.go", reviews[1].Filename)
	assert.Empty(t, reviews[1].Error)
	assert.NotNil(t, reviews[1].Findings)
	assert.Empty(t, reviews[1].Findings)

	assert.Equal(t, "bad.go", reviews[2].Filename)
	assert.True(t, reviews[2].Failed())
	assert.Contains(t, reviews[2].Error, "invalid AI response")
	assert.Contains(t, reviews[2].Error, `"issues"`)
	assert.Empty(t, reviews[2].Findings)

	hosting.AssertExpectations(t)
	model.AssertExpectations(t)
}

func TestReviewer_PerFileFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		content   schema.FileContent
		fetchErr  error
		model     func() contract.ModelClient
		wantError string
		wantCode  string
	}{
		{
			name:      "oversized file",
			content:   schema.FileContent{Path: "big.bin", Size: 2 << 20, Encoding: "base64"},
			wantError: "File size exceeds 1MB; skipped AI review",
			wantCode:  oversizedPlaceholder,
		},
		{
			name:      "rate limited fetch",
			fetchErr:  fmt.Errorf("%w: retry after 60s", contract.ErrRateLimited),
			wantError: "failed to fetch file: upstream rate limited",
		},
		{
			name:      "missing file",
			fetchErr:  contract.ErrNotFound,
			wantError: "failed to fetch file",
		},
		{
			name:      "unsupported encoding",
			content:   schema.FileContent{Path: "x", Size: 3, Encoding: "none"},
			wantError: "failed to decode file",
		},
		{
			name:      "binary content",
			content:   schema.FileContent{Path: "x", Size: 2, Raw: "\xff\xfe"},
			wantError: "not valid UTF-8",
		},
		{
			name:      "review disabled",
			content:   textFile("x.go", "package x\n"),
			model:     func() contract.ModelClient { return nil },
			wantError: notConfiguredMessage,
			wantCode:  "package x\n",
		},
		{
			name:    "model request failure",
			content: textFile("x.go", "package x\n"),
			model: func() contract.ModelClient {
				m := &contract.MockModelClient{}
				m.On("Complete", mock.Anything, reviewSystemPrompt, buildReviewPrompt("target", "package x\n")).Return("", contract.ErrRateLimited)
				return m
			},
			wantError: "AI review request failed",
			wantCode:  "package x\n",
		},
		{
			name:    "invalid JSON",
			content: textFile("x.go", "package x\n"),
			model: func() contract.ModelClient {
				m := &contract.MockModelClient{}
				m.On("Complete", mock.Anything, reviewSystemPrompt, buildReviewPrompt("target", "package x\n")).Return("I found no issues!", nil)
				return m
			},
			wantError: "invalid AI response",
			wantCode:  "package x\n",
		},
		{
			name:      "panic in task",
			content:   textFile("x.go", "package x\n"),
			model:     func() contract.ModelClient { return panickingModel{} },
			wantError: "review failed unexpectedly: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hosting := &contract.MockHostingClient{}
			hosting.On("GetFileContent", mock.Anything, testRef, "target").Return(tt.content, tt.fetchErr)
			hosting.On("GetFileContent", mock.Anything, testRef, "other.go").Return(textFile("other.go", "package other\n"), nil)

			var model contract.ModelClient = &contract.MockModelClient{}
			if tt.model != nil {
				model = tt.model()
			}
			if m, ok := model.(*contract.MockModelClient); ok {
				m.On("Complete", mock.Anything, mock.Anything, buildReviewPrompt("other.go", "package other\n")).Return(`{"issues": []}`, nil)
			}

			reviews := NewReviewer(hosting, model, 0).Review(ctx, testRef, []string{"target", "other.go"})
			require.Len(t, reviews, 2)

			got := reviews[0]
			assert.Equal(t, "target", got.Filename)
			assert.Contains(t, got.Error, tt.wantError)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.NotNil(t, got.Findings)
			assert.Empty(t, got.Findings)

			// The sibling file is never affected.
			assert.Equal(t, "other.go", reviews[1].Filename)
			if model == nil {
				assert.Equal(t, notConfiguredMessage, reviews[1].Error)
			} else if _, ok := model.(panickingModel); !ok {
				assert.Empty(t, reviews[1].Error)
			}
		})
	}
}

func TestReviewer_NoPaths(t *testing.T) {
	reviews := NewReviewer(&contract.MockHostingClient{}, nil, 0).Review(context.Background(), testRef, nil)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

func TestOversizedMessage(t *testing.T) {
	assert.Equal(t, "File size exceeds 1MB; skipped AI review", oversizedMessage(1<<20))
	assert.Equal(t, "File size exceeds 512KB; skipped AI review", oversizedMessage(512<<10))
	assert.Equal(t, "File size exceeds 1000 bytes; skipped AI review", oversizedMessage(1000))
}

func TestReviewer_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	hosting := &contract.MockHostingClient{}
	hosting.On("GetFileContent", mock.Anything, testRef, "a.go").Return(schema.FileContent{}, context.Canceled)

	reviews := NewReviewer(hosting, nil, 0).Review(ctx, testRef, []string{"a.go"})
	require.Len(t, reviews, 1)
	assert.Contains(t, reviews[0].Error, "context canceled")
}
