// Package docs holds the OpenAPI description served under /swagger/.
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
    "paths": {
        "/healthz": {
            "get": {
                "description": "Writes a health_check row; the request must carry no body or query",
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/v1/events": {
            "get": {
                "description": "Websocket stream of file_uploaded and file_deleted events",
                "tags": ["files"],
                "summary": "Subscribe to file events",
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httputils.ErrorResponse"}}
                }
            }
        },
        "/v1/file": {
            "post": {
                "description": "Stores the file in the bucket and records its metadata",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["file"],
                "summary": "Upload a file",
                "parameters": [
                    {"type": "file", "description": "File to upload", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.FileResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httputils.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/httputils.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httputils.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/httputils.ErrorResponse"}}
                }
            }
        },
        "/v1/file/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["file"],
                "summary": "Get file metadata",
                "parameters": [
                    {"type": "string", "description": "File ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.FileResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httputils.ErrorResponse"}},
                    "404": {"description": "Not Found"},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/httputils.ErrorResponse"}}
                }
            },
            "delete": {
                "description": "Removes the object from the bucket, then its metadata",
                "tags": ["file"],
                "summary": "Delete a file",
                "parameters": [
                    {"type": "string", "description": "File ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httputils.ErrorResponse"}},
                    "404": {"description": "Not Found"},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httputils.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/httputils.ErrorResponse"}}
                }
            }
        },
        "/v1/file/{id}/download": {
            "get": {
                "produces": ["application/json"],
                "tags": ["file"],
                "summary": "Get a temporary download URL",
                "parameters": [
                    {"type": "string", "description": "File ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.DownloadResponse"}},
                    "404": {"description": "Not Found"}
                }
            }
        }
    },
    "definitions": {
        "handler.DownloadResponse": {
            "type": "object",
            "properties": {
                "expires_in": {"type": "integer"},
                "url": {"type": "string"}
            }
        },
        "handler.FileResponse": {
            "type": "object",
            "properties": {
                "file_name": {"type": "string"},
                "id": {"type": "string"},
                "upload_date": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "httputils.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "webapp file service",
	Description:      "Stores files in S3 and their metadata in a relational database.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
