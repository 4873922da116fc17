// Package docs registers the webpaneld OpenAPI document with swag.
// Regenerate with `swag init -g cmd/webpaneld/docs.go -d ./,./internal/httpapi,./pkg/types`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "webpanel maintainers"},
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/instances": {
            "get": {
                "tags": ["instances"],
                "summary": "List panel instances",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.InstancesResponse"}}}
            },
            "post": {
                "tags": ["instances"],
                "summary": "Open or activate an instance",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "schema": {"$ref": "#/definitions/types.OpenRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.InstanceStatus"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/instances/{id}": {
            "get": {
                "tags": ["instances"],
                "summary": "Get one instance",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Instance id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.InstanceStatus"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/instances/{id}/navigate": {
            "post": {
                "tags": ["instances"],
                "summary": "Navigate an instance",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Instance id", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.NavigateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.InstanceStatus"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/instances/{id}/find": {
            "post": {
                "tags": ["find"],
                "summary": "Start, update or close a find-in-page search",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Instance id", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.FindRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.InstanceStatus"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/purge": {
            "post": {
                "tags": ["instances"],
                "summary": "Remove instances whose window was destroyed",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PurgeResponse"}}}
            }
        }
    },
    "definitions": {
        "types.OpenRequest": {"type": "object", "properties": {"id": {"type": "string"}, "url": {"type": "string"}, "title": {"type": "string"}, "mode": {"type": "string"}, "new": {"type": "boolean"}}},
        "types.NavigateRequest": {"type": "object", "properties": {"url": {"type": "string"}}},
        "types.FindRequest": {"type": "object", "properties": {"query": {"type": "string"}, "case_sensitive": {"type": "boolean"}, "highlight_all": {"type": "boolean"}}},
        "types.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "code": {"type": "integer"}}},
        "types.FindStatus": {"type": "object", "properties": {"state": {"type": "string"}, "query": {"type": "string"}, "current": {"type": "integer"}, "total": {"type": "integer"}, "supported": {"type": "boolean"}, "show_bar": {"type": "boolean"}, "highlight_all": {"type": "boolean"}}},
        "types.InstanceStatus": {"type": "object", "properties": {"id": {"type": "string"}, "state": {"type": "string"}, "url": {"type": "string"}, "title": {"type": "string"}, "window_text": {"type": "string"}, "mode": {"type": "string"}, "window": {"type": "string"}, "active": {"type": "boolean"}, "focus_tick": {"type": "integer"}, "find": {"$ref": "#/definitions/types.FindStatus"}, "init_failed": {"type": "boolean"}, "init_error": {"type": "string"}}},
        "types.InstancesResponse": {"type": "object", "properties": {"active": {"type": "string"}, "instances": {"type": "array", "items": {"$ref": "#/definitions/types.InstanceStatus"}}}},
        "types.PurgeResponse": {"type": "object", "properties": {"purged": {"type": "integer"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "webpaneld API",
	Description:      "HTTP API for managing embedded browser panel instances: open, navigate, focus and find-in-page.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
