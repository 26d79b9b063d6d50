package mailtm

import (
	"fmt"

	"github.com/dmitrijs2005/mailrelay/internal/common"
)

// maxErrorBody caps how much of a rejected response is kept for diagnostics.
const maxErrorBody = 4 << 10

// ProviderError is a non-2xx, non-404 provider response.
type ProviderError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("mailtm %s: provider returned %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *ProviderError) Unwrap() error {
	return common.ErrProviderRejected
}

func transportError(op string, err error) error {
	return fmt.Errorf("mailtm %s: %w: %w", op, common.ErrTransport, err)
}

func notFound(op string) error {
	return fmt.Errorf("mailtm %s: %w", op, common.ErrRemoteNotFound)
}
