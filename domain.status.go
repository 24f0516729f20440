package main

import (
	"fmt"
	"strings"
)

// ReadingStatus tells how far the owner is with a book.
type ReadingStatus uint8

// The zero value is not a valid status on purpose so that a
// missing field is caught by validation.
const (
	StatusToRead ReadingStatus = iota + 1
	StatusReading
	StatusRead
)

var statusNames = map[ReadingStatus]string{
	StatusToRead:  "DA_LEGGERE",
	StatusReading: "IN_LETTURA",
	StatusRead:    "LETTO",
}

var statusLabels = map[ReadingStatus]string{
	StatusToRead:  "Da leggere",
	StatusReading: "In lettura",
	StatusRead:    "Letto",
}

// ReadingStatuses lists all statuses in their display order.
func ReadingStatuses() []ReadingStatus {
	return []ReadingStatus{StatusToRead, StatusReading, StatusRead}
}

// IsValid reports whether s is one of the known statuses.
func (s ReadingStatus) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}

// Name returns the internal name used by the file formats.
func (s ReadingStatus) Name() string {
	return statusNames[s]
}

// Label returns the human readable description.
func (s ReadingStatus) Label() string {
	return statusLabels[s]
}

// String implements fmt.Stringer.
func (s ReadingStatus) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("ReadingStatus(%d)", uint8(s))
	}
	return s.Label()
}

// MarshalText implements encoding.TextMarshaler with the internal name.
func (s ReadingStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, uint8(s))
	}
	return []byte(s.Name()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts
// both the internal name and the label.
func (s *ReadingStatus) UnmarshalText(text []byte) error {
	status, err := ParseReadingStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// ParseReadingStatus finds the status whose internal name or label
// matches the given value, ignoring case and surrounding spaces.
func ParseReadingStatus(value string) (ReadingStatus, error) {
	v := strings.TrimSpace(value)
	for _, s := range ReadingStatuses() {
		if strings.EqualFold(s.Name(), v) {
			return s, nil
		}
	}
	return ParseReadingStatusLabel(v)
}

// ParseReadingStatusLabel finds the status from its label only.
func ParseReadingStatusLabel(label string) (ReadingStatus, error) {
	v := strings.TrimSpace(label)
	for _, s := range ReadingStatuses() {
		if strings.EqualFold(s.Label(), v) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, label)
}
