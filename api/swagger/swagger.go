package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Piscine Admin API",
        "description": "Staff backend for piscine administration: CSV smart import, student records, exam grades, rush scores and staff notes",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Staff login and token lifecycle"},
        {"name": "Import", "description": "CSV smart import and run history"},
        {"name": "Students", "description": "Piscine participant records"},
        {"name": "Scores", "description": "Manual exam grades and rush scores"},
        {"name": "Notes", "description": "Staff notes attached to students"},
        {"name": "Leaderboard", "description": "Level/blocks ranking"},
        {"name": "Export", "description": "Roster exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate staff user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Tokens issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "Tokens rotated"},
                    "401": {"description": "Expired or revoked refresh token"}
                }
            }
        },
        "/import": {
            "post": {
                "tags": ["Import"],
                "summary": "Import a CSV file",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "Import summary", "schema": {"$ref": "#/definitions/ImportSummary"}},
                    "400": {"description": "Structural rejection"},
                    "408": {"description": "Import exceeded the time budget"}
                }
            }
        },
        "/import/runs": {
            "get": {
                "tags": ["Import"],
                "summary": "List import runs",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Runs", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/import/runs/{id}": {
            "get": {
                "tags": ["Import"],
                "summary": "Get one import run",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Run"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"},
                    {"name": "sort_by", "in": "query", "type": "string"},
                    {"name": "sort_order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Students", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register a student manually",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Username already registered"}
                }
            }
        },
        "/students/{username}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get a student with grades and rush scores",
                "parameters": [
                    {"name": "username", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Student detail"},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Students"],
                "summary": "Patch a student",
                "responses": {
                    "200": {"description": "Updated"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete a student",
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/grades": {
            "put": {
                "tags": ["Scores"],
                "summary": "Record an exam grade",
                "responses": {
                    "200": {"description": "Grade recorded"},
                    "404": {"description": "Student not found"}
                }
            }
        },
        "/rushes": {
            "put": {
                "tags": ["Scores"],
                "summary": "Record a rush score",
                "responses": {
                    "200": {"description": "Score recorded"},
                    "404": {"description": "Student not found"}
                }
            }
        },
        "/leaderboard": {
            "get": {
                "tags": ["Leaderboard"],
                "summary": "Students ranked by level then blocks",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Entries"}
                }
            }
        },
        "/export/students": {
            "get": {
                "tags": ["Export"],
                "summary": "Export the student roster",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered file"}
                }
            }
        }
    },
    "definitions": {
        "ImportSummary": {
            "type": "object",
            "properties": {
                "run": {"type": "object"},
                "result": {
                    "type": "object",
                    "properties": {
                        "success": {"type": "boolean"},
                        "message": {"type": "string"},
                        "stats": {
                            "type": "object",
                            "properties": {
                                "total_rows": {"type": "integer"},
                                "created": {"type": "integer"},
                                "updated": {"type": "integer"},
                                "errors": {"type": "integer"}
                            }
                        },
                        "detected_tables": {"type": "array", "items": {"type": "string"}},
                        "errors": {"type": "array", "items": {"type": "string"}}
                    }
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
