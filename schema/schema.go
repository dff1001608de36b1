// Package schema has the data models shared by every part of codesight.
package schema

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// RepositoryRef identifies a hosted repository as an owner/name pair.
type RepositoryRef struct {
	Owner string
	Name  string
}

// FullName returns the canonical "owner/name" form.
func (r RepositoryRef) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// RepoInfo is the repository metadata shown at the top of a report.
type RepoInfo struct {
	Name       string `json:"name" yaml:"name"`
	Stars      int    `json:"stars" yaml:"stars"`
	Forks      int    `json:"forks" yaml:"forks"`
	OpenIssues int    `json:"open_issues" yaml:"open_issues"`
}

// CommitRecord is one commit as seen by the miner.
// A nil TouchedFiles means the host had no file-change data for the commit.
type CommitRecord struct {
	SHA          string
	AuthorID     string // empty when the host has no linked account
	Message      string
	TouchedFiles []string
}

// PullRequestRecord is one closed pull request.
type PullRequestRecord struct {
	Number         int
	Merged         bool
	CreatedAt      *time.Time
	MergedAt       *time.Time
	ReviewComments int
}

// FileContent is a file fetched from the host. Size is known before
// the content is decoded.
type FileContent struct {
	Path     string
	Size     int64
	Encoding string // "base64" or "" for raw text
	Raw      string
}

// Decode returns the file bytes, decoding base64 payloads.
func (f FileContent) Decode() ([]byte, error) {
	switch f.Encoding {
	case "":
		return []byte(f.Raw), nil
	case "base64":
		data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(f.Raw, "\n", ""))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", f.Path, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q for %s", f.Encoding, f.Path)
	}
}

// FileStat is the per-file aggregate of the sampled commit window.
type FileStat struct {
	Path            string  `json:"filename" yaml:"filename"`
	Modifications   int     `json:"modifications" yaml:"modifications"`
	DistinctAuthors int     `json:"authors_count" yaml:"authors_count"`
	RiskScore       float64 `json:"risk_score" yaml:"risk_score"`
}

// CollaborationMetrics summarizes merged pull requests in the sampled window.
type CollaborationMetrics struct {
	MergedPRCount     int        `json:"merged_pr_count" yaml:"merged_pr_count"`
	AvgMergeTime      string     `json:"avg_merge_time_str" yaml:"avg_merge_time_str"`
	AvgReviewComments NumberOrNA `json:"avg_review_comments" yaml:"avg_review_comments"`
}

// Metrics groups the repository-wide numbers of a report.
type Metrics struct {
	TechDebtIndex        float64 `json:"tech_debt_index" yaml:"tech_debt_index"`
	CollaborationMetrics `yaml:",inline"`
}

// ReviewFinding is one issue reported by the model for a file.
type ReviewFinding struct {
	LineNumber  int    `json:"line_number" yaml:"line_number"`
	CodeSnippet string `json:"code_snippet" yaml:"code_snippet"`
	IssueType   string `json:"issue_type" yaml:"issue_type"`
	Description string `json:"description" yaml:"description"`
	Suggestion  string `json:"suggestion" yaml:"suggestion"`
}

// FileReview is the outcome of reviewing a single file.
// Error is set whenever the review did not complete.
type FileReview struct {
	Filename string          `json:"filename" yaml:"filename"`
	Code     string          `json:"code" yaml:"code"`
	Findings []ReviewFinding `json:"findings" yaml:"findings"`
	Error    string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the review carries an error.
func (r FileReview) Failed() bool {
	return r.Error != ""
}

// AnalysisReport is the final output of one analysis run.
type AnalysisReport struct {
	RunID           string       `json:"run_id" yaml:"run_id"`
	RepoInfo        RepoInfo     `json:"repo_info" yaml:"repo_info"`
	CommitsAnalyzed int          `json:"commits_analyzed" yaml:"commits_analyzed"`
	Metrics         Metrics      `json:"metrics" yaml:"metrics"`
	BugHotbeds      []FileStat   `json:"bug_hotbeds" yaml:"bug_hotbeds"`
	AIReviews       []FileReview `json:"ai_reviews" yaml:"ai_reviews"`
}
