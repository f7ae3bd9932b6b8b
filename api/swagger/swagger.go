package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Soma Approve API",
        "description": "Video approval workflow backend for Soma Studio clients",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Google sign-in and session lifecycle"},
        {"name": "Videos", "description": "Video catalog management"},
        {"name": "Review", "description": "Pending queue and approve/reject decisions"},
        {"name": "Clients", "description": "Client accounts and activity dashboard"},
        {"name": "Reports", "description": "Asynchronous report generation"},
        {"name": "Drive", "description": "Google Drive folder sync"}
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
        "/auth/google": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Sign in with a Google credential",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GoogleLoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/GoogleAuthResponse"}},
                    "400": {"description": "Missing credential", "schema": {"$ref": "#/definitions/GoogleAuthResponse"}},
                    "401": {"description": "Verification failed", "schema": {"$ref": "#/definitions/GoogleAuthResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "End the current session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/GoogleAuthResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current session profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Session expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/videos": {
            "get": {
                "tags": ["Videos"],
                "summary": "List videos",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "clientId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Videos"],
                "summary": "Register a video awaiting review",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateVideoRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/videos/queue": {
            "get": {
                "tags": ["Review"],
                "summary": "Pending videos in arrival order",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "clientId", "in": "query", "type": "string", "description": "Admins only"},
                    {"name": "after", "in": "query", "type": "string", "description": "Return only the entry following this video"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/videos/{id}": {
            "get": {
                "tags": ["Videos"],
                "summary": "Get video",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Videos"],
                "summary": "Remove video",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/videos/{id}/approve": {
            "post": {
                "tags": ["Review"],
                "summary": "Approve a pending video",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already reviewed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/videos/{id}/reject": {
            "post": {
                "tags": ["Review"],
                "summary": "Reject a pending video with feedback",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid feedback", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already reviewed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/clients": {
            "post": {
                "tags": ["Clients"],
                "summary": "Create client",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Client"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/clients/activity": {
            "get": {
                "tags": ["Clients"],
                "summary": "Per-client activity dashboard",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/clients/{id}": {
            "get": {
                "tags": ["Clients"],
                "summary": "Get client",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/generate": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a report for generation",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/status/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/download/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished report",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Expired or invalid token"}
                }
            }
        },
        "/drive/mappings": {
            "get": {
                "tags": ["Drive"],
                "summary": "Client folder mappings",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/drive/sync/{id}": {
            "post": {
                "tags": ["Drive"],
                "summary": "Import new videos from a client folder",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GoogleLoginRequest": {
            "type": "object",
            "properties": {
                "credential": {"type": "string"}
            },
            "required": ["credential"]
        },
        "GoogleAuthResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/AuthUser"},
                "message": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "AuthUser": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string"},
                "avatarUrl": {"type": "string"}
            }
        },
        "CreateVideoRequest": {
            "type": "object",
            "properties": {
                "clientId": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "videoUrl": {"type": "string"},
                "googleDriveFileId": {"type": "string"},
                "thumbnailUrl": {"type": "string"},
                "duration": {"type": "integer"},
                "type": {"type": "string"},
                "priority": {"type": "string"},
                "deadline": {"type": "string"}
            },
            "required": ["clientId", "title", "deadline"]
        },
        "RejectRequest": {
            "type": "object",
            "properties": {
                "feedbackCategories": {
                    "type": "array",
                    "items": {"type": "string"}
                },
                "feedback": {"type": "string"}
            }
        },
        "Video": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "clientId": {"type": "string"},
                "title": {"type": "string"},
                "status": {"type": "string"},
                "priority": {"type": "string"},
                "uploadedAt": {"type": "string"},
                "deadline": {"type": "string"},
                "timeRemaining": {"type": "string"},
                "feedback": {"type": "string"},
                "feedbackCategories": {
                    "type": "array",
                    "items": {"type": "string"}
                },
                "reviewedAt": {"type": "string"}
            }
        },
        "Client": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "company": {"type": "string"},
                "googleDriveFolder": {"type": "string"},
                "active": {"type": "boolean"}
            },
            "required": ["name", "email"]
        },
        "ReportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["client-activity", "review-history"]},
                "clientId": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["type", "format"]
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
