package core

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/schema"
)

// repoURLPattern extracts owner and name from anything containing a github.com path.
var repoURLPattern = regexp.MustCompile(`github\.com/([^/\s]+)/([^/\s?#]+)`)

// ParseRepositoryURL extracts the owner/name pair from a repository URL.
func ParseRepositoryURL(repoURL string) (schema.RepositoryRef, error) {
	m := repoURLPattern.FindStringSubmatch(repoURL)
	if m == nil {
		return schema.RepositoryRef{}, fmt.Errorf("%w: invalid GitHub repository URL %q", contract.ErrInvalidInput, repoURL)
	}
	name := strings.TrimSuffix(m[2], ".git")
	if name == "" {
		return schema.RepositoryRef{}, fmt.Errorf("%w: invalid GitHub repository URL %q", contract.ErrInvalidInput, repoURL)
	}
	return schema.RepositoryRef{Owner: m[1], Name: name}, nil
}

// Locate parses repoURL and resolves it against the host. Both failures are terminal.
func Locate(ctx context.Context, hosting contract.HostingClient, repoURL string) (schema.RepositoryRef, error) {
	ref, err := ParseRepositoryURL(repoURL)
	if err != nil {
		return schema.RepositoryRef{}, err
	}
	return hosting.Resolve(ctx, ref.Owner, ref.Name)
}
