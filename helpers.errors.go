package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/multierr"
)

var (
	ErrInvalidBook       = errors.New("invalid book")
	ErrDuplicateISBN     = errors.New("duplicate isbn")
	ErrBookNotFound      = errors.New("book not found")
	ErrUnknownStatus     = errors.New("unknown reading status")
	ErrInvalidRating     = errors.New("invalid rating")
	ErrFileFormat        = errors.New("invalid file format")
	ErrFileNotFound      = fmt.Errorf("file not found: %w", fs.ErrNotExist)
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrUnsafePath        = errors.New("path escapes the data directory")
	ErrUnknownBackend    = errors.New("unknown storage backend")
	ErrNothingToUndo     = errors.New("nothing to undo")
	ErrNothingToRedo     = errors.New("nothing to redo")
)

// FieldError reports a single invalid field of a book.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Reason
}

// Is makes every FieldError match ErrInvalidBook.
func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidBook
}

// RecordError reports why one row or object of a catalogue file was rejected.
// Location is human readable, like "line 4" or "book #2".
type RecordError struct {
	Location string
	Title    string
	Err      error
}

func (e *RecordError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("%s (%s): %v", e.Location, e.Title, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Location, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// LoadError is the aggregate failure of a load. It lists every
// rejected record found in the file. Nothing is loaded when it occurs.
type LoadError struct {
	Path string
	errs error
}

func (e *LoadError) Error() string {
	records := e.Records()
	var sb strings.Builder
	fmt.Fprintf(&sb, "cannot load %s: found %d invalid book(s):", e.Path, len(records))
	for _, r := range records {
		sb.WriteString("\n  - ")
		sb.WriteString(r.Error())
	}
	return sb.String()
}

// Unwrap exposes every record error to errors.Is and errors.As.
func (e *LoadError) Unwrap() []error {
	return multierr.Errors(e.errs)
}

// Records returns the rejected records in file order.
func (e *LoadError) Records() []*RecordError {
	errs := multierr.Errors(e.errs)
	records := make([]*RecordError, 0, len(errs))
	for _, err := range errs {
		var re *RecordError
		if errors.As(err, &re) {
			records = append(records, re)
		}
	}
	return records
}

// Messages returns one line per rejected record.
func (e *LoadError) Messages() []string {
	records := e.Records()
	msgs := make([]string, len(records))
	for i, r := range records {
		msgs[i] = r.Error()
	}
	return msgs
}

// fieldErrors flattens a validation error into "field reason" strings.
func fieldErrors(err error) []string {
	errs := multierr.Errors(err)
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return msgs
}
