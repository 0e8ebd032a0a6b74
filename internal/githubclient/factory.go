package githubclient

import "fmt"

// Client modes. The mode is fixed at construction: callers get either the
// production client or the mock and never switch at request time.
const (
	ModeProduction = "production"
	ModeMock       = "mock"
)

// New builds a Service for the given mode. An empty mode defaults to
// production.
func New(mode string, opts Options) (Service, error) {
	switch mode {
	case ModeMock:
		return NewMockClient(), nil
	case ModeProduction, "":
		return NewClient(opts), nil
	default:
		return nil, fmt.Errorf("unknown github client mode %q", mode)
	}
}
