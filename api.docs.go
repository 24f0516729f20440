package main

import "github.com/swaggo/swag"

// docTemplate is the OpenAPI 2.0 description of the catalogue endpoints.
// It is served by the swagger UI under /ops/swagger/.
const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["core"],
                "summary": "Service status",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/v1/books": {
            "get": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "List the catalogue",
                "description": "Filters combine with AND. Tutti or all disables a filter.",
                "parameters": [
                    {"type": "string", "description": "free text search", "name": "q", "in": "query"},
                    {"type": "string", "enum": ["title", "author", "isbn"], "description": "field searched by q", "name": "by", "in": "query"},
                    {"type": "string", "name": "genre", "in": "query"},
                    {"type": "string", "name": "author", "in": "query"},
                    {"type": "string", "description": "status name or label", "name": "status", "in": "query"},
                    {"type": "string", "description": "0 to 5 or Da valutare", "name": "rating", "in": "query"},
                    {"type": "string", "enum": ["none", "title-asc", "title-desc", "author-asc", "author-desc", "rating-asc", "rating-desc"], "name": "sort", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/APIError"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Add a book",
                "parameters": [
                    {"description": "book to add", "name": "book", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Book"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/APIError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/APIError"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Wipe the catalogue and its history",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}}
                }
            }
        },
        "/v1/books/{isbn}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Get a book",
                "parameters": [
                    {"type": "string", "name": "isbn", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/APIError"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Edit a book",
                "parameters": [
                    {"type": "string", "name": "isbn", "in": "path", "required": true},
                    {"description": "new book values", "name": "book", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Book"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/APIError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/APIError"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Delete a book",
                "parameters": [
                    {"type": "string", "name": "isbn", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/v1/genres": {
            "get": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Distinct genres, sorted",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}}
                }
            }
        },
        "/v1/authors": {
            "get": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Distinct authors, sorted",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}}
                }
            }
        },
        "/v1/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Undo and redo availability",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}}
                }
            }
        },
        "/v1/history/undo": {
            "post": {
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Undo the last operation",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}},
                    "409": {"description": "Nothing to undo", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/v1/history/redo": {
            "post": {
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Redo the last undone operation",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}},
                    "409": {"description": "Nothing to redo", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/v1/catalog/save": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Save the catalogue to a .json or .csv file of the data directory",
                "parameters": [
                    {"description": "file name", "name": "file", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/APIError"}},
                    "422": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/v1/catalog/load": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Replace the catalogue with a file of the data directory",
                "parameters": [
                    {"description": "file name", "name": "file", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/APIError"}},
                    "422": {"description": "Invalid records, every one listed in data", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        }
    },
    "definitions": {
        "Book": {
            "type": "object",
            "required": ["title", "author", "isbn", "genre", "status"],
            "properties": {
                "title": {"type": "string"},
                "author": {"type": "string"},
                "isbn": {"type": "string", "pattern": "^[0-9-]+$"},
                "genre": {"type": "string"},
                "rating": {"type": "integer", "minimum": 0, "maximum": 5, "description": "0 means unrated"},
                "status": {"type": "string", "enum": ["DA_LEGGERE", "IN_LETTURA", "LETTO"]}
            }
        },
        "FileRequest": {
            "type": "object",
            "required": ["path"],
            "properties": {
                "path": {"type": "string"}
            }
        },
        "APIResponse": {
            "type": "object",
            "properties": {
                "requestid": {"type": "string"},
                "status": {"type": "integer"},
                "message": {"type": "string"},
                "total": {"type": "integer"},
                "data": {}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "requestid": {"type": "string"},
                "status": {"type": "integer"},
                "message": {"type": "string"},
                "data": {}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:         "1.0",
	Host:            "",
	BasePath:        "/",
	Schemes:         []string{},
	Title:           "Libreria API",
	Description:     "Personal book catalogue with undo and redo.",
	SwaggerTemplate: docTemplate,
}

func init() {
	swag.Register(swag.Name, SwaggerInfo)
}
