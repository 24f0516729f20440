package main

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey is the closed set of orderings a listing can use.
type SortKey uint8

const (
	SortNone SortKey = iota
	SortTitleAsc
	SortTitleDesc
	SortAuthorAsc
	SortAuthorDesc
	SortRatingAsc
	SortRatingDesc
)

var sortKeyNames = [...]string{
	SortNone:       "none",
	SortTitleAsc:   "title-asc",
	SortTitleDesc:  "title-desc",
	SortAuthorAsc:  "author-asc",
	SortAuthorDesc: "author-desc",
	SortRatingAsc:  "rating-asc",
	SortRatingDesc: "rating-desc",
}

func (k SortKey) String() string {
	if int(k) < len(sortKeyNames) {
		return sortKeyNames[k]
	}
	return fmt.Sprintf("SortKey(%d)", uint8(k))
}

// ParseSortKey reads names like "title-asc". The empty string means SortNone.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortNone, nil
	}
	for k, name := range sortKeyNames {
		if name == s {
			return SortKey(k), nil
		}
	}
	return SortNone, fmt.Errorf("unknown sort key %q, expected one of %s", s, strings.Join(sortKeyNames[:], ", "))
}

// SearchField is the book field the free text search looks into.
type SearchField uint8

const (
	SearchTitle SearchField = iota
	SearchAuthor
	SearchISBN
)

// ParseSearchField reads "title", "author" or "isbn". Empty means title.
func ParseSearchField(s string) (SearchField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "title", "titolo":
		return SearchTitle, nil
	case "author", "autore":
		return SearchAuthor, nil
	case "isbn":
		return SearchISBN, nil
	}
	return SearchTitle, fmt.Errorf("unknown search field %q, expected title, author or isbn", s)
}

// Query selects and orders the books of a listing. Filters combine with AND.
type Query struct {
	Search string
	By     SearchField
	Genre  string
	Author string
	Status ReadingStatus // zero means any status
	Rating int           // negative means any rating
	Sort   SortKey
}

// NewQuery returns the query matching every book in catalogue order.
func NewQuery() Query {
	return Query{Rating: -1}
}

// ParseQuery builds a query from its textual parts, as received by the
// API or the command line. "Tutti", "all" or an empty value disables a filter.
func ParseQuery(search, by, genre, author, status, rating, sort string) (Query, error) {
	q := NewQuery()
	var err error
	q.Search = search
	if q.By, err = ParseSearchField(by); err != nil {
		return q, err
	}
	if !isAll(genre) {
		q.Genre = genre
	}
	if !isAll(author) {
		q.Author = author
	}
	if !isAll(status) {
		if q.Status, err = ParseReadingStatus(status); err != nil {
			return q, err
		}
	}
	if !isAll(rating) {
		if q.Rating, err = ParseRating(rating); err != nil {
			return q, err
		}
	}
	if q.Sort, err = ParseSortKey(sort); err != nil {
		return q, err
	}
	return q, nil
}

func isAll(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "tutti") || strings.EqualFold(s, "all")
}

// ApplyQuery returns the books matching q, ordered as q asks. Text is
// compared with the collation rules of tag. The input is left untouched.
func ApplyQuery(books []Book, q Query, tag language.Tag) []Book {
	fold := cases.Fold()
	search := fold.String(strings.TrimSpace(q.Search))
	genre := fold.String(strings.TrimSpace(q.Genre))
	author := fold.String(strings.TrimSpace(q.Author))

	result := make([]Book, 0, len(books))
	for _, b := range books {
		if search != "" {
			var field string
			switch q.By {
			case SearchAuthor:
				field = b.Author
			case SearchISBN:
				field = b.ISBN
			default:
				field = b.Title
			}
			if !strings.Contains(fold.String(field), search) {
				continue
			}
		}
		if genre != "" && fold.String(strings.TrimSpace(b.Genre)) != genre {
			continue
		}
		if author != "" && !strings.Contains(fold.String(b.Author), author) {
			continue
		}
		if q.Status != 0 && b.Status != q.Status {
			continue
		}
		if q.Rating >= 0 && b.Rating != q.Rating {
			continue
		}
		result = append(result, b)
	}

	if cmp := comparator(q.Sort, tag); cmp != nil {
		slices.SortStableFunc(result, cmp)
	}
	return result
}

// comparator returns the ordering function of key, nil for SortNone.
func comparator(key SortKey, tag language.Tag) func(a, b Book) int {
	col := collate.New(tag)
	switch key {
	case SortTitleAsc:
		return func(a, b Book) int { return col.CompareString(a.Title, b.Title) }
	case SortTitleDesc:
		return func(a, b Book) int { return col.CompareString(b.Title, a.Title) }
	case SortAuthorAsc:
		return func(a, b Book) int { return col.CompareString(a.Author, b.Author) }
	case SortAuthorDesc:
		return func(a, b Book) int { return col.CompareString(b.Author, a.Author) }
	case SortRatingAsc:
		return func(a, b Book) int { return a.Rating - b.Rating }
	case SortRatingDesc:
		return func(a, b Book) int { return b.Rating - a.Rating }
	}
	return nil
}

// uniqueSorted returns the distinct non blank values, ordered for tag.
func uniqueSorted(values []string, tag language.Tag) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	collate.New(tag).SortStrings(result)
	return result
}
