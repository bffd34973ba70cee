// Package sink publishes finished exports beyond the local output
// directory.
package sink

import (
	"context"
	"errors"

	"github.com/dgallion1/notegest/internal/export"
	"github.com/dgallion1/notegest/internal/extract"
)

// Sink receives one finished export. Local files are never touched.
type Sink interface {
	Name() string
	Publish(ctx context.Context, files export.Files, entries []extract.Entry) error
}

// PublishError reports which sink failed.
type PublishError struct {
	Sink string
	Err  error
}

func (e *PublishError) Error() string { return "sink " + e.Sink + ": " + e.Err.Error() }

func (e *PublishError) Unwrap() error { return e.Err }

// PublishAll runs every sink and joins their failures. A failing sink does
// not stop the others.
func PublishAll(ctx context.Context, sinks []Sink, files export.Files, entries []extract.Entry) error {
	var errs []error
	for _, s := range sinks {
		if err := s.Publish(ctx, files, entries); err != nil {
			errs = append(errs, &PublishError{Sink: s.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}
