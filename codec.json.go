package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

var _ Codec = (*jsonCodec)(nil)

// jsonBook is the on-disk shape of a book in a JSON catalogue.
type jsonBook struct {
	Title  string `json:"titolo"`
	Author string `json:"autore"`
	ISBN   string `json:"isbn"`
	Genre  string `json:"genere"`
	Rating int    `json:"valutazione"`
	Status string `json:"statoLettura"`
}

// jsonRecord is the lenient shape used when reading: the rating may be
// a number or a string.
type jsonRecord struct {
	Title  string          `json:"titolo"`
	Author string          `json:"autore"`
	ISBN   string          `json:"isbn"`
	Genre  string          `json:"genere"`
	Rating json.RawMessage `json:"valutazione"`
	Status string          `json:"statoLettura"`
}

type jsonCodec struct {
	logger *zap.Logger
}

// NewJSONCodec provides the codec of .json catalogues.
func NewJSONCodec(logger *zap.Logger) Codec {
	return &jsonCodec{logger: logger}
}

func (c *jsonCodec) Name() string      { return "json" }
func (c *jsonCodec) Extension() string { return ".json" }

// Save writes books as an indented array of objects.
func (c *jsonCodec) Save(books []Book, path string) error {
	records := make([]jsonBook, 0, len(books))
	for _, b := range books {
		records = append(records, jsonBook{
			Title:  b.Title,
			Author: b.Author,
			ISBN:   b.ISBN,
			Genre:  b.Genre,
			Rating: b.Rating,
			Status: b.Status.Name(),
		})
	}
	err := writeFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(records)
	})
	if err != nil {
		return err
	}
	c.logger.Info("catalogue saved", zap.String("path", path), zap.String("format", c.Name()), zap.Int("books", len(books)))
	return nil
}

// Load reads a JSON array of books. Each element is decoded on its own
// so that every invalid one is reported.
func (c *jsonCodec) Load(path string) ([]Book, error) {
	r, err := openCatalog(path, c.Extension())
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Book{}, nil
	}

	var elements []json.RawMessage
	if err = json.Unmarshal(data, &elements); err != nil {
		return nil, jsonFormatError(path, data, err)
	}

	l := newLoader(path)
	for i, raw := range elements {
		location := fmt.Sprintf("book #%d", i+1)
		var rec jsonRecord
		if err = json.Unmarshal(raw, &rec); err != nil {
			l.reject(location, "", fmt.Errorf("%w: %v", ErrFileFormat, err))
			continue
		}
		l.add(location, bookFields{
			title:  rec.Title,
			author: rec.Author,
			isbn:   rec.ISBN,
			genre:  rec.Genre,
			rating: jsonScalar(rec.Rating),
			status: rec.Status,
		})
	}
	books, err := l.result()
	if err != nil {
		return nil, err
	}
	c.logger.Info("catalogue loaded", zap.String("path", path), zap.String("format", c.Name()), zap.Int("books", len(books)))
	return books, nil
}

// jsonScalar returns the text of a string or number value. A missing
// or null value gives the empty string.
func jsonScalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// jsonFormatError describes a document that is not an array of values.
func jsonFormatError(path string, data []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: %s line %d: %v", ErrFileFormat, path, lineAt(data, syntaxErr.Offset), err)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %s: expected an array of books, found %s", ErrFileFormat, path, typeErr.Value)
	}
	return fmt.Errorf("%w: %s: %v", ErrFileFormat, path, err)
}

// lineAt returns the 1-based line of the byte at offset.
func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}
