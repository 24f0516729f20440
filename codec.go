package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Codec converts an ordered list of books to and from one file format.
// Load is all-or-nothing: on any invalid record it returns a *LoadError
// and no book at all.
type Codec interface {
	Name() string
	Extension() string
	Save(books []Book, path string) error
	Load(path string) ([]Book, error)
}

// Codecs returns every supported codec.
func Codecs(logger *zap.Logger) []Codec {
	return []Codec{NewJSONCodec(logger), NewCSVCodec(logger)}
}

// CodecFor picks the codec matching the extension of path.
func CodecFor(path string, logger *zap.Logger) (Codec, error) {
	ext := filepath.Ext(path)
	for _, c := range Codecs(logger) {
		if strings.EqualFold(ext, c.Extension()) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// checkExtension accepts a file name carrying exactly one extension equal to ext.
func checkExtension(path, ext string) error {
	name := filepath.Base(path)
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return fmt.Errorf("%w: %s has no extension, expected %s", ErrFileFormat, name, ext)
	}
	if strings.Contains(name[:dot], ".") {
		return fmt.Errorf("%w: %s has more than one extension, expected %s", ErrFileFormat, name, ext)
	}
	if !strings.EqualFold(name[dot:], ext) {
		return fmt.Errorf("%w: %s does not have the %s extension", ErrFileFormat, name, ext)
	}
	return nil
}

// openCatalog checks the name then opens path for reading. The returned
// reader strips a UTF-8 BOM and decodes UTF-16 files marked with one.
func openCatalog(path, ext string) (io.ReadCloser, error) {
	if err := checkExtension(path, ext); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return &catalogReader{Reader: transform.NewReader(f, decoder), file: f}, nil
}

type catalogReader struct {
	io.Reader
	file *os.File
}

func (r *catalogReader) Close() error {
	return r.file.Close()
}

// writeFileAtomic writes through a temporary file in the same directory
// then renames it over path.
func writeFileAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// bookFields holds the textual values of one record before they are
// turned into a Book.
type bookFields struct {
	title, author, isbn, genre string
	rating, status             string
}

// loader accumulates the books decoded from one file and the reasons
// why records were rejected.
type loader struct {
	path  string
	books []Book
	seen  map[string]string
	errs  error
}

func newLoader(path string) *loader {
	return &loader{path: path, books: []Book{}, seen: make(map[string]string)}
}

// add converts and validates the fields found at location.
func (l *loader) add(location string, f bookFields) {
	rating, ratingErr := ParseRating(f.rating)
	status, statusErr := ParseReadingStatus(f.status)
	book := Book{
		Title:  f.title,
		Author: f.author,
		ISBN:   f.isbn,
		Genre:  f.genre,
		Rating: rating,
		Status: status,
	}
	err := multierr.Combine(ratingErr, statusErr)
	if err == nil {
		err = book.Validate()
	}
	if err != nil {
		l.reject(location, f.title, err)
		return
	}
	if first, ok := l.seen[book.ISBN]; ok {
		l.reject(location, f.title, fmt.Errorf("%w: %s already used by %s", ErrDuplicateISBN, book.ISBN, first))
		return
	}
	l.seen[book.ISBN] = location
	l.books = append(l.books, book)
}

func (l *loader) reject(location, title string, err error) {
	l.errs = multierr.Append(l.errs, &RecordError{Location: location, Title: title, Err: err})
}

func (l *loader) result() ([]Book, error) {
	if l.errs != nil {
		return nil, &LoadError{Path: l.path, errs: l.errs}
	}
	return l.books, nil
}
