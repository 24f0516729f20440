package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

const (
	// Unrated is the rating of a book nobody has scored yet.
	Unrated = 0
	// MaxRating is the highest number of stars a book can get.
	MaxRating = 5
	// UnratedLabel is how an unrated book is displayed and serialized.
	UnratedLabel = "Da valutare"
)

var isbnRX = regexp.MustCompile(`^[0-9-]+$`)

// Book represents a book entity of the personal catalogue.
// The ISBN identifies the book: two values with the same ISBN
// are the same catalogue entry. A Book is a value, an edit
// produces a new Book which replaces the previous one.
type Book struct {
	Title  string        `json:"title"`
	Author string        `json:"author"`
	ISBN   string        `json:"isbn"`
	Genre  string        `json:"genre"`
	Rating int           `json:"rating"`
	Status ReadingStatus `json:"status"`
}

// NewBook builds a book and refuses to return one that is not valid.
func NewBook(title, author, isbn, genre string, rating int, status ReadingStatus) (Book, error) {
	book := Book{
		Title:  title,
		Author: author,
		ISBN:   isbn,
		Genre:  genre,
		Rating: rating,
		Status: status,
	}
	if err := book.Validate(); err != nil {
		return Book{}, err
	}
	return book, nil
}

// Validate checks every field and reports all failing ones at once.
// Each failure is a *FieldError and the result matches ErrInvalidBook.
func (b Book) Validate() error {
	var err error
	err = multierr.Append(err, checkText("title", b.Title))
	err = multierr.Append(err, checkText("author", b.Author))
	if !IsValidISBN(b.ISBN) {
		err = multierr.Append(err, &FieldError{Field: "isbn", Reason: "must contain only digits and hyphens"})
	}
	err = multierr.Append(err, checkText("genre", b.Genre))
	if b.Rating < Unrated || b.Rating > MaxRating {
		err = multierr.Append(err, &FieldError{Field: "rating", Reason: fmt.Sprintf("must be between %d and %d, got %d", Unrated, MaxRating, b.Rating)})
	}
	if !b.Status.IsValid() {
		err = multierr.Append(err, &FieldError{Field: "status", Reason: "is not a known reading status"})
	}
	return err
}

// checkText validates a free text field: not blank and without carriage
// returns, which no CSV reader gives back intact.
func checkText(field, value string) error {
	if isBlank(value) {
		return &FieldError{Field: field, Reason: "must not be empty"}
	}
	if strings.ContainsRune(value, '\r') {
		return &FieldError{Field: field, Reason: "must not contain carriage returns"}
	}
	return nil
}

// IsValid reports whether all fields of the book are valid.
func (b Book) IsValid() bool {
	return b.Validate() == nil
}

// Equal reports whether both books are the same catalogue entry.
// Use == to compare every field.
func (b Book) Equal(other Book) bool {
	return b.ISBN == other.ISBN
}

// RatingText returns the rating the way it is displayed to users.
func (b Book) RatingText() string {
	if b.Rating == Unrated {
		return UnratedLabel
	}
	return strconv.Itoa(b.Rating)
}

// String implements fmt.Stringer.
func (b Book) String() string {
	return fmt.Sprintf("%s (%s) [%s]", b.Title, b.Author, b.ISBN)
}

// IsValidISBN reports whether s is a non blank string made of digits and hyphens.
func IsValidISBN(s string) bool {
	return !isBlank(s) && isbnRX.MatchString(s)
}

// ParseRating converts the textual form of a rating. It accepts the
// UnratedLabel (case-insensitive) or an integer between 0 and 5.
func ParseRating(s string) (int, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, UnratedLabel) || s == "0" {
		return Unrated, nil
	}
	rating, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: expected an integer between %d and %d or %q, got %q", ErrInvalidRating, Unrated, MaxRating, UnratedLabel, s)
	}
	if rating < Unrated || rating > MaxRating {
		return 0, fmt.Errorf("%w: must be between %d and %d, got %d", ErrInvalidRating, Unrated, MaxRating, rating)
	}
	return rating, nil
}

func isBlank(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}
