// Package docs holds the OpenAPI document served at /swagger.
package docs

import "github.com/swaggo/swag"

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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Service health",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a member account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/auth.RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/apperr.Error"}},
                    "409": {"description": "Username taken", "schema": {"$ref": "#/definitions/apperr.Error"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange credentials for a bearer token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.LoginResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/apperr.Error"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Identity behind the token",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.Identity"}},
                    "401": {"description": "No or bad token", "schema": {"$ref": "#/definitions/apperr.Error"}}
                }
            }
        },
        "/books": {
            "get": {
                "tags": ["books"],
                "summary": "List the catalog",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "q", "in": "query", "description": "case-insensitive substring"},
                    {"type": "string", "name": "by", "in": "query", "enum": ["title", "author", "subject", "isbn"], "default": "title"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/catalog.Book"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["books"],
                "summary": "Add a book (admin)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/catalog.BookRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/catalog.BookResponse"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/apperr.Error"}},
                    "403": {"description": "Not an admin", "schema": {"$ref": "#/definitions/apperr.Error"}},
                    "409": {"description": "Duplicate ISBN", "schema": {"$ref": "#/definitions/apperr.Error"}}
                }
            }
        },
        "/books/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["books"],
                "summary": "Download the catalog as CSV (admin)",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "UTF-8 CSV with BOM"},
                    "403": {"description": "Not an admin", "schema": {"$ref": "#/definitions/apperr.Error"}}
                }
            }
        },
        "/books/{id}": {
            "get": {
                "tags": ["books"],
                "summary": "Get one book",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/catalog.Book"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/apperr.Error"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["books"],
                "summary": "Edit a book (admin)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/catalog.BookRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/catalog.BookResponse"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/apperr.Error"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/apperr.Error"}},
                    "409": {"description": "Duplicate ISBN", "schema": {"$ref": "#/definitions/apperr.Error"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["books"],
                "summary": "Delete a book with no active loans (admin)",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/catalog.BookResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/apperr.Error"}},
                    "409": {"description": "Book is on loan", "schema": {"$ref": "#/definitions/apperr.Error"}}
                }
            }
        },
        "/borrowings/borrow": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["borrowings"],
                "summary": "Borrow a book",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/borrowings.BorrowRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/borrowings.LoanResponse"}},
                    "400": {"description": "Validation failed, unavailable, duplicate loan or limit reached", "schema": {"$ref": "#/definitions/apperr.Error"}},
                    "403": {"description": "Guest caller", "schema": {"$ref": "#/definitions/apperr.Error"}},
                    "404": {"description": "Book not found", "schema": {"$ref": "#/definitions/apperr.Error"}}
                }
            }
        },
        "/borrowings/return/{borrowing_id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["borrowings"],
                "summary": "Return a borrowed book",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "borrowing_id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/borrowings.LoanResponse"}},
                    "403": {"description": "Guest caller", "schema": {"$ref": "#/definitions/apperr.Error"}},
                    "404": {"description": "No such active loan", "schema": {"$ref": "#/definitions/apperr.Error"}}
                }
            }
        },
        "/borrowings/user": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["borrowings"],
                "summary": "The caller's loans, newest first",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/borrowings.LoanView"}}},
                    "403": {"description": "Guest caller", "schema": {"$ref": "#/definitions/apperr.Error"}}
                }
            }
        },
        "/borrowings/all": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["borrowings"],
                "summary": "Every loan, newest first (admin)",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/borrowings.LoanView"}}},
                    "403": {"description": "Not an admin", "schema": {"$ref": "#/definitions/apperr.Error"}}
                }
            }
        }
    },
    "definitions": {
        "apperr.Error": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "INVALID_ARGUMENT"},
                "message": {"type": "string"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/apperr.FieldError"}}
            }
        },
        "apperr.FieldError": {
            "type": "object",
            "properties": {"field": {"type": "string"}, "message": {"type": "string"}}
        },
        "auth.RegisterRequest": {
            "type": "object",
            "properties": {
                "surname": {"type": "string"},
                "firstname": {"type": "string"},
                "middleInitial": {"type": "string"},
                "username": {"type": "string"},
                "password": {"type": "string"},
                "displayName": {"type": "string"}
            }
        },
        "auth.LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "auth.Identity": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "username": {"type": "string"}, "is_admin": {"type": "boolean"}}
        },
        "auth.LoginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expires_at": {"type": "string", "format": "date-time"},
                "user": {"type": "object"}
            }
        },
        "catalog.Book": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "author": {"type": "string"},
                "title": {"type": "string"},
                "publication": {"type": "string"},
                "copyright_year": {"type": "integer"},
                "physical_description": {"type": "string"},
                "series": {"type": "string"},
                "isbn": {"type": "string"},
                "subject": {"type": "string"},
                "call_number": {"type": "string"},
                "accession_number": {"type": "string"},
                "location": {"type": "string"},
                "total_copies": {"type": "integer"},
                "available_copies": {"type": "integer"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "catalog.BookRequest": {
            "type": "object",
            "properties": {
                "author": {"type": "string"},
                "title": {"type": "string"},
                "publication": {"type": "string"},
                "copyright_year": {"type": "integer"},
                "physical_description": {"type": "string"},
                "series": {"type": "string"},
                "isbn": {"type": "string"},
                "subject": {"type": "string"},
                "call_number": {"type": "string"},
                "accession_number": {"type": "string"},
                "location": {"type": "string"},
                "total_copies": {"type": "integer"},
                "available_copies": {"type": "integer"},
                "allowDuplicateIsbn": {"type": "boolean"}
            }
        },
        "catalog.BookResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "book": {"$ref": "#/definitions/catalog.Book"}}
        },
        "borrowings.BorrowRequest": {
            "type": "object",
            "properties": {"book_id": {"type": "integer"}, "notes": {"type": "string"}}
        },
        "borrowings.LoanSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "reference": {"type": "string"},
                "book_id": {"type": "integer"},
                "book_title": {"type": "string"},
                "book_author": {"type": "string"},
                "borrowed_date": {"type": "string", "format": "date-time"},
                "due_date": {"type": "string", "format": "date-time"},
                "returned_date": {"type": "string", "format": "date-time"},
                "status": {"type": "string", "enum": ["borrowed", "overdue", "returned"]},
                "notes": {"type": "string"}
            }
        },
        "borrowings.LoanResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "borrowing": {"$ref": "#/definitions/borrowings.LoanSummary"}}
        },
        "borrowings.LoanView": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "reference": {"type": "string"},
                "user_id": {"type": "integer"},
                "username": {"type": "string"},
                "book_id": {"type": "integer"},
                "title": {"type": "string"},
                "author": {"type": "string"},
                "isbn": {"type": "string"},
                "call_number": {"type": "string"},
                "borrowed_date": {"type": "string", "format": "date-time"},
                "due_date": {"type": "string", "format": "date-time"},
                "returned_date": {"type": "string", "format": "date-time"},
                "status": {"type": "string", "enum": ["borrowed", "overdue", "returned"]},
                "notes": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Library Repository API",
	Description:      "Catalog, borrowing and account endpoints of the library repository backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
