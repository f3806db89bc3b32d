package toolexec

import (
	"fmt"
	"time"

	"mkvsubs/internal/services"
)

// TimeoutError reports that a subprocess was killed because it ran past its deadline.
type TimeoutError struct {
	Command    string
	Timeout    time.Duration
	Diagnostic string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Command, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return services.ErrTimeout }

// OutputLimitError reports that a subprocess wrote more diagnostic output than
// the configured bound and was killed instead of being parsed truncated.
type OutputLimitError struct {
	Command string
	Limit   int64
}

func (e *OutputLimitError) Error() string {
	return fmt.Sprintf("%s exceeded output limit of %d bytes", e.Command, e.Limit)
}

func (e *OutputLimitError) Unwrap() error { return services.ErrOutputLimit }
