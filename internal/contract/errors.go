package contract

import "errors"

// Error taxonomy shared by the pipeline and its collaborators. Callers wrap
// these with fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	// ErrInvalidInput means the repository identifier could not be parsed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means the repository or file does not exist or is not accessible.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited means the upstream API refused the request due to rate limiting.
	ErrRateLimited = errors.New("upstream rate limited")

	// ErrValidation means model output did not match the expected review schema.
	ErrValidation = errors.New("validation error")

	// ErrInvalidConfig means a flag, environment variable or config file value was rejected.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfigurationMissing means an optional collaborator was not configured.
	ErrConfigurationMissing = errors.New("configuration missing")
)
