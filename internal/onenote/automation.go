// Package onenote reads notebooks through the OneNote desktop automation
// interface and turns page XML into plain text.
package onenote

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// Automation is the subset of the OneNote application object notegest uses.
// Implementations must honor ctx cancellation.
type Automation interface {
	// OpenHierarchy loads a notebook file into the running OneNote instance.
	OpenHierarchy(ctx context.Context, path string) error
	// GetHierarchy returns the notebooks, sections and pages as XML.
	GetHierarchy(ctx context.Context) ([]byte, error)
	// GetPageContent returns the XML of one page.
	GetPageContent(ctx context.Context, pageID string) ([]byte, error)
}

// ErrUnavailable means the OneNote application could not be reached at all.
var ErrUnavailable = errors.New("onenote automation unavailable")

// COM errors worth retrying: the application is busy or rejected the call.
var busyCodes = []string{"0x80010001", "0x8001010a"}

// AutomationError is a failed automation call.
type AutomationError struct {
	Op        string
	Message   string
	Retryable bool
	Err       error
}

func (e *AutomationError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("onenote %s: %s", e.Op, msg)
}

func (e *AutomationError) Unwrap() error { return e.Err }

func newAutomationError(op, message string, err error) *AutomationError {
	lower := strings.ToLower(message)
	retry := false
	for _, code := range busyCodes {
		if strings.Contains(lower, code) {
			retry = true
			break
		}
	}
	return &AutomationError{
		Op:        op,
		Message:   strings.TrimSpace(message),
		Retryable: retry,
		Err:       err,
	}
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var ae *AutomationError
	return errors.As(err, &ae) && ae.Retryable
}

const (
	backoffBase = 250 * time.Millisecond
	backoffCap  = 5 * time.Second
)

// Backoff returns a duration for attempt n (0-indexed) with jitter.
// From attempt 5 on the base stays at the cap, so large n cannot overflow.
func Backoff(attempt int) time.Duration {
	base := backoffCap
	switch {
	case attempt <= 0:
		base = backoffBase
	case attempt < 5:
		base = backoffBase << uint(attempt)
	}
	if base > backoffCap {
		base = backoffCap
	}
	if half := int64(base) / 2; half > 0 {
		base += time.Duration(rand.Int64N(half))
	}
	return base
}
