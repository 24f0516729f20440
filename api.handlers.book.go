package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// failed logs the error of a catalogue call then sends it to the client
// with the status code and details matching its kind.
func (api *APIHandler) failed(w http.ResponseWriter, r *http.Request, message string, err error) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		api.logger.Error(message, zap.String("request.id", requestID), zap.Error(err))
	} else {
		api.logger.Warn(message, zap.String("request.id", requestID), zap.Int("request.status", status), zap.Error(err))
	}
	errResp := NewAPIError(requestID, status, message, errorData(err))
	if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
		api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// succeeded sends a success response.
func (api *APIHandler) succeeded(w http.ResponseWriter, r *http.Request, status int, message string, total *int, data interface{}) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	resp := GenericResponse(requestID, status, message, total, data)
	if err := WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// badRequest sends a 400 for a body or a query the handler could not read.
func (api *APIHandler) badRequest(w http.ResponseWriter, r *http.Request, message string, err error) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	api.logger.Warn(message, zap.String("request.id", requestID), zap.Error(err))
	errResp := NewAPIError(requestID, http.StatusBadRequest, message, err.Error())
	if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
		api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var book Book
	if err := DecodeBookRequestBody(r, &book); err != nil {
		api.badRequest(w, r, "failed to read the book", err)
		return
	}
	book, err := api.library.Add(r.Context(), book)
	if err != nil {
		api.failed(w, r, "failed to create the book", err)
		return
	}
	api.succeeded(w, r, http.StatusCreated, "Book created successfully.", nil, book)
}

// GetAllBooks lists the catalogue. Supported query parameters are
// q, by, genre, author, status, rating and sort.
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	v := r.URL.Query()
	q, err := ParseQuery(v.Get("q"), v.Get("by"), v.Get("genre"), v.Get("author"), v.Get("status"), v.Get("rating"), v.Get("sort"))
	if err != nil {
		api.badRequest(w, r, "invalid books query", err)
		return
	}
	books, err := api.library.List(r.Context(), q)
	if err != nil {
		api.failed(w, r, "failed to get all books", err)
		return
	}
	total := len(books)
	api.succeeded(w, r, http.StatusOK, "All books fetched successfully.", &total, books)
}

func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	book, err := api.library.Get(r.Context(), ps.ByName("isbn"))
	if err != nil {
		api.failed(w, r, "failed to get the book", err)
		return
	}
	api.succeeded(w, r, http.StatusOK, "Book fetched successfully.", nil, book)
}

func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var book Book
	if err := DecodeBookRequestBody(r, &book); err != nil {
		api.badRequest(w, r, "failed to read the book", err)
		return
	}
	book, err := api.library.Edit(r.Context(), ps.ByName("isbn"), book)
	if err != nil {
		api.failed(w, r, "failed to update the book", err)
		return
	}
	api.succeeded(w, r, http.StatusOK, "Book updated successfully.", nil, book)
}

func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	book, err := api.library.Delete(r.Context(), ps.ByName("isbn"))
	if err != nil {
		api.failed(w, r, "failed to delete the book", err)
		return
	}
	api.succeeded(w, r, http.StatusOK, "Book deleted successfully.", nil, book)
}

// DeleteAllBooks empties the catalogue. This cannot be undone.
func (api *APIHandler) DeleteAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := api.library.Wipe(r.Context()); err != nil {
		api.failed(w, r, "failed to delete all books", err)
		return
	}
	api.succeeded(w, r, http.StatusOK, "All books deleted successfully.", nil, EmptyData)
}

func (api *APIHandler) GetGenres(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	genres, err := api.library.Genres(r.Context())
	if err != nil {
		api.failed(w, r, "failed to get the genres", err)
		return
	}
	total := len(genres)
	api.succeeded(w, r, http.StatusOK, "Genres fetched successfully.", &total, genres)
}

func (api *APIHandler) GetAuthors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	authors, err := api.library.Authors(r.Context())
	if err != nil {
		api.failed(w, r, "failed to get the authors", err)
		return
	}
	total := len(authors)
	api.succeeded(w, r, http.StatusOK, "Authors fetched successfully.", &total, authors)
}

func (api *APIHandler) GetHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.succeeded(w, r, http.StatusOK, "History fetched successfully.", nil, api.library.HistoryState())
}

func (api *APIHandler) UndoOperation(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	desc, err := api.library.Undo(r.Context())
	if err != nil {
		api.failed(w, r, "failed to undo the last operation", err)
		return
	}
	api.succeeded(w, r, http.StatusOK, "Undone: "+desc, nil, api.library.HistoryState())
}

func (api *APIHandler) RedoOperation(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	desc, err := api.library.Redo(r.Context())
	if err != nil {
		api.failed(w, r, "failed to redo the last undone operation", err)
		return
	}
	api.succeeded(w, r, http.StatusOK, "Redone: "+desc, nil, api.library.HistoryState())
}

// SaveLibrary writes the catalogue into the data directory file named by the body.
func (api *APIHandler) SaveLibrary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	name, err := DecodeFileRequestBody(r)
	if err != nil {
		api.badRequest(w, r, "failed to read the file request", err)
		return
	}
	n, err := api.library.Save(r.Context(), name)
	if err != nil {
		api.failed(w, r, "failed to save the catalogue", err)
		return
	}
	api.succeeded(w, r, http.StatusOK, "Catalogue saved successfully.", &n, map[string]string{"path": name})
}

// LoadLibrary replaces the catalogue with the data directory file named by the body.
// A file with invalid records is refused as a whole and each rejection is reported.
func (api *APIHandler) LoadLibrary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	name, err := DecodeFileRequestBody(r)
	if err != nil {
		api.badRequest(w, r, "failed to read the file request", err)
		return
	}
	n, err := api.library.Load(r.Context(), name)
	if err != nil {
		api.failed(w, r, "failed to load the catalogue", err)
		return
	}
	api.succeeded(w, r, http.StatusOK, "Catalogue loaded successfully.", &n, map[string]string{"path": name})
}
