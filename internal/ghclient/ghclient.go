// Package ghclient adapts the GitHub REST API to contract.HostingClient.
package ghclient

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/schema"
	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// pageSize is the largest page GitHub serves for list endpoints.
const pageSize = 100

// Client implements contract.HostingClient on top of go-github.
// Every API call first waits on a client-side token bucket.
type Client struct {
	gh      *github.Client
	limiter *rate.Limiter
}

var _ contract.HostingClient = &Client{} // Compile-time check

// New wraps an existing go-github client. A non-positive rps disables throttling.
func New(gh *github.Client, rps float64) *Client {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{gh: gh, limiter: rate.NewLimiter(limit, 1)}
}

// NewFromConfig builds a client from the validated config. An empty token
// means anonymous access, which GitHub limits to 60 requests per hour.
func NewFromConfig(ctx context.Context, cfg *contract.Config) (*Client, error) {
	var httpClient *http.Client
	if cfg.GitHubToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHubToken})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	gh := github.NewClient(httpClient)
	if cfg.GitHubBaseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(cfg.GitHubBaseURL, cfg.GitHubBaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure enterprise URL: %w", err)
		}
	}
	return New(gh, cfg.RequestsPerSecond), nil
}

// Resolve implements contract.HostingClient.
func (c *Client) Resolve(ctx context.Context, owner, name string) (schema.RepositoryRef, error) {
	repo, err := c.getRepository(ctx, owner, name)
	if err != nil {
		if errors.Is(err, contract.ErrNotFound) {
			return schema.RepositoryRef{}, fmt.Errorf("repository '%s/%s' not found or it's private: %w", owner, name, contract.ErrNotFound)
		}
		return schema.RepositoryRef{}, err
	}
	return schema.RepositoryRef{Owner: repo.GetOwner().GetLogin(), Name: repo.GetName()}, nil
}

// GetRepoMetadata implements contract.HostingClient.
func (c *Client) GetRepoMetadata(ctx context.Context, ref schema.RepositoryRef) (schema.RepoInfo, error) {
	repo, err := c.getRepository(ctx, ref.Owner, ref.Name)
	if err != nil {
		return schema.RepoInfo{}, err
	}
	return schema.RepoInfo{
		Name:       repo.GetFullName(),
		Stars:      repo.GetStargazersCount(),
		Forks:      repo.GetForksCount(),
		OpenIssues: repo.GetOpenIssuesCount(),
	}, nil
}

// ListCommits implements contract.HostingClient. File lists come from one
// extra request per commit, made only when the consumer pulls that commit.
func (c *Client) ListCommits(ctx context.Context, ref schema.RepositoryRef) iter.Seq2[schema.CommitRecord, error] {
	return func(yield func(schema.CommitRecord, error) bool) {
		opts := &github.CommitsListOptions{ListOptions: github.ListOptions{PerPage: pageSize}}
		for {
			if err := c.limiter.Wait(ctx); err != nil {
				yield(schema.CommitRecord{}, err)
				return
			}
			commits, resp, err := c.gh.Repositories.ListCommits(ctx, ref.Owner, ref.Name, opts)
			if err != nil {
				if isEmptyRepository(err) {
					return
				}
				yield(schema.CommitRecord{}, mapError(err, "failed to list commits"))
				return
			}

			for _, rc := range commits {
				record, err := c.toCommitRecord(ctx, ref, rc)
				if !yield(record, err) || err != nil {
					return
				}
			}

			if resp.NextPage == 0 {
				return
			}
			opts.Page = resp.NextPage
		}
	}
}

// ListPullRequests implements contract.HostingClient. Review comment counts
// are only on the single-PR endpoint, so merged PRs cost one extra request.
func (c *Client) ListPullRequests(ctx context.Context, ref schema.RepositoryRef) iter.Seq2[schema.PullRequestRecord, error] {
	return func(yield func(schema.PullRequestRecord, error) bool) {
		opts := &github.PullRequestListOptions{
			State:       "closed",
			Sort:        "updated",
			Direction:   "desc",
			ListOptions: github.ListOptions{PerPage: pageSize},
		}
		for {
			if err := c.limiter.Wait(ctx); err != nil {
				yield(schema.PullRequestRecord{}, err)
				return
			}
			prs, resp, err := c.gh.PullRequests.List(ctx, ref.Owner, ref.Name, opts)
			if err != nil {
				yield(schema.PullRequestRecord{}, mapError(err, "failed to list pull requests"))
				return
			}

			for _, pr := range prs {
				record, err := c.toPullRequestRecord(ctx, ref, pr)
				if !yield(record, err) || err != nil {
					return
				}
			}

			if resp.NextPage == 0 {
				return
			}
			opts.Page = resp.NextPage
		}
	}
}

// GetFileContent implements contract.HostingClient.
func (c *Client) GetFileContent(ctx context.Context, ref schema.RepositoryRef, path string) (schema.FileContent, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return schema.FileContent{}, err
	}
	file, dir, _, err := c.gh.Repositories.GetContents(ctx, ref.Owner, ref.Name, path, nil)
	if err != nil {
		return schema.FileContent{}, mapError(err, fmt.Sprintf("failed to fetch %s", path))
	}
	if file == nil {
		return schema.FileContent{}, fmt.Errorf("%s is a directory with %d entries: %w", path, len(dir), contract.ErrNotFound)
	}

	content := schema.FileContent{
		Path:     path,
		Size:     int64(file.GetSize()),
		Encoding: file.GetEncoding(),
	}
	if file.Content != nil {
		content.Raw = *file.Content
	}
	return content, nil
}

func (c *Client) getRepository(ctx context.Context, owner, name string) (*github.Repository, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	repo, _, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("failed to get repository %s/%s", owner, name))
	}
	return repo, nil
}

// toCommitRecord fetches the touched files of a listed commit. Only rate
// limiting and cancellation are fatal; other failures leave TouchedFiles nil.
func (c *Client) toCommitRecord(ctx context.Context, ref schema.RepositoryRef, rc *github.RepositoryCommit) (schema.CommitRecord, error) {
	record := schema.CommitRecord{
		SHA:      rc.GetSHA(),
		AuthorID: rc.GetAuthor().GetLogin(),
		Message:  rc.GetCommit().GetMessage(),
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return record, err
	}
	detail, _, err := c.gh.Repositories.GetCommit(ctx, ref.Owner, ref.Name, record.SHA, nil)
	if err != nil {
		mapped := mapError(err, fmt.Sprintf("failed to get commit %s", record.SHA))
		if errors.Is(mapped, contract.ErrRateLimited) || ctx.Err() != nil {
			return record, mapped
		}
		return record, nil
	}

	files := make([]string, 0, len(detail.Files))
	for _, f := range detail.Files {
		if name := f.GetFilename(); name != "" {
			files = append(files, name)
		}
	}
	record.TouchedFiles = files
	return record, nil
}

func (c *Client) toPullRequestRecord(ctx context.Context, ref schema.RepositoryRef, pr *github.PullRequest) (schema.PullRequestRecord, error) {
	record := schema.PullRequestRecord{
		Number: pr.GetNumber(),
		Merged: pr.MergedAt != nil,
	}
	if pr.CreatedAt != nil {
		t := pr.CreatedAt.Time
		record.CreatedAt = &t
	}
	if pr.MergedAt != nil {
		t := pr.MergedAt.Time
		record.MergedAt = &t
	}
	if !record.Merged {
		return record, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return record, err
	}
	full, _, err := c.gh.PullRequests.Get(ctx, ref.Owner, ref.Name, record.Number)
	if err != nil {
		return record, mapError(err, fmt.Sprintf("failed to get pull request #%d", record.Number))
	}
	record.ReviewComments = full.GetReviewComments()
	return record, nil
}

// mapError translates go-github errors into the contract error taxonomy.
func mapError(err error, msg string) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%s: %w: %w", msg, contract.ErrRateLimited, err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%s: %w: %w", msg, contract.ErrRateLimited, err)
		case http.StatusNotFound, http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("%s: %w: %w", msg, contract.ErrNotFound, err)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// isEmptyRepository reports GitHub's 409 response for a repository without commits.
func isEmptyRepository(err error) bool {
	var respErr *github.ErrorResponse
	if !errors.As(err, &respErr) || respErr.Response == nil {
		return false
	}
	return respErr.Response.StatusCode == http.StatusConflict &&
		strings.Contains(strings.ToLower(respErr.Message), "empty")
}
