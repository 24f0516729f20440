package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// HistoryState describes what undo and redo would do next.
type HistoryState struct {
	CanUndo         bool   `json:"canUndo"`
	CanRedo         bool   `json:"canRedo"`
	UndoDescription string `json:"undoDescription,omitempty"`
	RedoDescription string `json:"redoDescription,omitempty"`
	Undoable        int    `json:"undoable"`
	Redoable        int    `json:"redoable"`
}

// LibraryProvider is what the presentation layers need from the catalogue.
type LibraryProvider interface {
	Add(ctx context.Context, book Book) (Book, error)
	Edit(ctx context.Context, isbn string, updated Book) (Book, error)
	Delete(ctx context.Context, isbn string) (Book, error)
	Undo(ctx context.Context) (string, error)
	Redo(ctx context.Context) (string, error)
	HistoryState() HistoryState
	Get(ctx context.Context, isbn string) (Book, error)
	List(ctx context.Context, q Query) ([]Book, error)
	Genres(ctx context.Context) ([]string, error)
	Authors(ctx context.Context) ([]string, error)
	Save(ctx context.Context, name string) (int, error)
	Load(ctx context.Context, name string) (int, error)
	Wipe(ctx context.Context) error
}

var _ LibraryProvider = (*Library)(nil)

// Library is the catalogue manager. It owns the collection and its
// history and serializes every call, so it is safe for concurrent use.
type Library struct {
	mu         sync.Mutex
	logger     *zap.Logger
	config     *CatalogConfig
	locale     language.Tag
	collection Collection
	history    *History
}

// NewLibrary provides a library working on the given collection.
func NewLibrary(logger *zap.Logger, config *CatalogConfig, c Collection) *Library {
	locale, err := language.Parse(config.Locale)
	if err != nil {
		locale = language.Italian
	}
	return &Library{
		logger:     logger,
		config:     config,
		locale:     locale,
		collection: c,
		history:    NewHistory(logger, c),
	}
}

// Add records a new book.
func (l *Library) Add(ctx context.Context, book Book) (Book, error) {
	op, err := AddOp(book)
	if err != nil {
		return book, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err = l.history.Execute(ctx, op); err != nil {
		return book, err
	}
	l.logger.Info("library: book added", zap.String("book.isbn", book.ISBN))
	return book, nil
}

// Edit replaces the book identified by isbn. The ISBN itself may change.
func (l *Library) Edit(ctx context.Context, isbn string, updated Book) (Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	old, err := l.collection.Get(ctx, isbn)
	if err != nil {
		return updated, err
	}
	op, err := EditOp(old, updated)
	if err != nil {
		return updated, err
	}
	if err = l.history.Execute(ctx, op); err != nil {
		return updated, err
	}
	l.logger.Info("library: book edited", zap.String("book.isbn", isbn), zap.String("book.new_isbn", updated.ISBN))
	return updated, nil
}

// Delete removes the book identified by isbn and returns it.
func (l *Library) Delete(ctx context.Context, isbn string) (Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	old, err := l.collection.Get(ctx, isbn)
	if err != nil {
		return old, err
	}
	if err = l.history.Execute(ctx, DeleteOp(old)); err != nil {
		return old, err
	}
	l.logger.Info("library: book deleted", zap.String("book.isbn", isbn))
	return old, nil
}

// Undo reverts the last operation and returns its description.
func (l *Library) Undo(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	desc, _ := l.history.PeekUndo()
	ok, err := l.history.Undo(ctx)
	if err != nil {
		return desc, err
	}
	if !ok {
		return "", ErrNothingToUndo
	}
	l.logger.Info("library: operation undone", zap.String("operation", desc))
	return desc, nil
}

// Redo applies again the last undone operation and returns its description.
func (l *Library) Redo(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	desc, _ := l.history.PeekRedo()
	ok, err := l.history.Redo(ctx)
	if err != nil {
		return desc, err
	}
	if !ok {
		return "", ErrNothingToRedo
	}
	l.logger.Info("library: operation redone", zap.String("operation", desc))
	return desc, nil
}

func (l *Library) HistoryState() HistoryState {
	l.mu.Lock()
	defer l.mu.Unlock()
	state := HistoryState{CanUndo: l.history.CanUndo(), CanRedo: l.history.CanRedo()}
	state.UndoDescription, _ = l.history.PeekUndo()
	state.RedoDescription, _ = l.history.PeekRedo()
	state.Undoable, state.Redoable = l.history.Len()
	return state
}

func (l *Library) Get(ctx context.Context, isbn string) (Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.collection.Get(ctx, isbn)
}

// List returns the books selected by q.
func (l *Library) List(ctx context.Context, q Query) ([]Book, error) {
	l.mu.Lock()
	books, err := l.collection.List(ctx)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return ApplyQuery(books, q, l.locale), nil
}

// Genres returns the distinct genres of the catalogue in collation order.
func (l *Library) Genres(ctx context.Context) ([]string, error) {
	return l.distinct(ctx, func(b Book) string { return b.Genre })
}

// Authors returns the distinct authors of the catalogue in collation order.
func (l *Library) Authors(ctx context.Context) ([]string, error) {
	return l.distinct(ctx, func(b Book) string { return b.Author })
}

func (l *Library) distinct(ctx context.Context, field func(Book) string) ([]string, error) {
	l.mu.Lock()
	books, err := l.collection.List(ctx)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}
	values := make([]string, len(books))
	for i, b := range books {
		values[i] = field(b)
	}
	return uniqueSorted(values, l.locale), nil
}

// Save writes the catalogue to the file name inside the data directory.
// The format follows the extension. It returns the number of books saved.
func (l *Library) Save(ctx context.Context, name string) (int, error) {
	path, err := l.resolvePath(name)
	if err != nil {
		return 0, err
	}
	codec, err := CodecFor(path, l.logger)
	if err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	books, err := l.collection.List(ctx)
	if err != nil {
		return 0, err
	}
	if err = codec.Save(books, path); err != nil {
		return 0, err
	}
	return len(books), nil
}

// Load replaces the catalogue with the content of the file name inside
// the data directory and forgets the history. On any invalid record
// nothing changes. It returns the number of books loaded.
func (l *Library) Load(ctx context.Context, name string) (int, error) {
	path, err := l.resolvePath(name)
	if err != nil {
		return 0, err
	}
	codec, err := CodecFor(path, l.logger)
	if err != nil {
		return 0, err
	}
	books, err := codec.Load(path)
	if err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err = l.collection.Reset(ctx, books); err != nil {
		return 0, err
	}
	l.history.Clear()
	return len(books), nil
}

// Wipe empties the catalogue and forgets the history.
func (l *Library) Wipe(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.collection.Reset(ctx, nil); err != nil {
		return err
	}
	l.history.Clear()
	l.logger.Info("library: catalogue wiped")
	return nil
}

// resolvePath maps a file name given by a client into the data directory.
func (l *Library) resolvePath(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return filepath.Join(l.config.DataDir, name), nil
}
