package completion

import (
	"fmt"
	"strings"
)

// Kind classifies a completion failure.
type Kind string

const (
	KindNetwork     Kind = "network"
	KindTimeout     Kind = "timeout"
	KindAuth        Kind = "auth"
	KindRateLimit   Kind = "rate_limit"
	KindUnavailable Kind = "unavailable"
	KindUpstream    Kind = "upstream"
	KindMalformed   Kind = "malformed"
)

// ServiceError reports a failed completion call.
type ServiceError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	var sb strings.Builder
	sb.WriteString("completion service error (")
	sb.WriteString(string(e.Kind))
	sb.WriteString(")")
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " [status %d]", e.StatusCode)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request may succeed if sent again.
// Authentication, upstream and envelope failures are not retryable.
func (e *ServiceError) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout, KindRateLimit, KindUnavailable:
		return true
	}
	return false
}
