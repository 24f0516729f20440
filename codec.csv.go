package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

var _ Codec = (*csvCodec)(nil)

// csvHeader is the first record of every CSV catalogue.
var csvHeader = []string{"titolo", "autore", "isbn", "genere", "valutazione", "statoLettura"}

type csvCodec struct {
	logger *zap.Logger
}

// NewCSVCodec provides the codec of .csv catalogues.
func NewCSVCodec(logger *zap.Logger) Codec {
	return &csvCodec{logger: logger}
}

func (c *csvCodec) Name() string      { return "csv" }
func (c *csvCodec) Extension() string { return ".csv" }

// Save writes the header then one record per book. Lines end with the
// host convention.
func (c *csvCodec) Save(books []Book, path string) error {
	err := writeFileAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		cw.UseCRLF = runtime.GOOS == "windows"
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		for _, b := range books {
			record := []string{b.Title, b.Author, b.ISBN, b.Genre, b.RatingText(), b.Status.Name()}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return err
	}
	c.logger.Info("catalogue saved", zap.String("path", path), zap.String("format", c.Name()), zap.Int("books", len(books)))
	return nil
}

// Load reads a CSV catalogue. Every record is checked and all rejected
// lines are reported together.
func (c *csvCodec) Load(path string) ([]Book, error) {
	r, err := openCatalog(path, c.Extension())
	if err != nil {
		return nil, err
	}
	defer r.Close()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	l := newLoader(path)
	first := true
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			l.reject(fmt.Sprintf("line %d", parseErr.StartLine), "", fmt.Errorf("%w: %v", ErrFileFormat, parseErr.Err))
			first = false
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if isBlankRecord(record) {
			continue
		}
		line, _ := cr.FieldPos(0)
		location := fmt.Sprintf("line %d", line)

		if first {
			first = false
			if !isCSVHeader(record) {
				l.reject(location, "", fmt.Errorf("%w: expected header %q", ErrFileFormat, strings.Join(csvHeader, ",")))
			}
			continue
		}
		if len(record) != len(csvHeader) {
			l.reject(location, "", fmt.Errorf("%w: expected %d fields, found %d", ErrFileFormat, len(csvHeader), len(record)))
			continue
		}
		l.add(location, bookFields{
			title:  record[0],
			author: record[1],
			isbn:   record[2],
			genre:  record[3],
			rating: record[4],
			status: record[5],
		})
	}

	books, err := l.result()
	if err != nil {
		return nil, err
	}
	c.logger.Info("catalogue loaded", zap.String("path", path), zap.String("format", c.Name()), zap.Int("books", len(books)))
	return books, nil
}

// isBlankRecord reports a line made only of spaces or tabs. Empty lines never
// reach it, the csv reader drops them.
func isBlankRecord(record []string) bool {
	return len(record) == 1 && isBlank(record[0])
}

func isCSVHeader(record []string) bool {
	if len(record) != len(csvHeader) {
		return false
	}
	for i, name := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(record[i]), name) {
			return false
		}
	}
	return true
}
