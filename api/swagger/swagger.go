package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Social Flow API",
        "description": "Ranked course activity feed for the host learning platform",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "SocialFlow", "description": "Social flow widget, data and exports"},
        {"name": "System", "description": "Operational endpoints"}
    ],
    "paths": {
        "/socialflow": {
            "get": {
                "tags": ["SocialFlow"],
                "summary": "Social flow widget",
                "produces": ["text/html"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/WindowQuery"},
                    {"$ref": "#/parameters/TypeQuery"},
                    {"$ref": "#/parameters/ItemCountQuery"},
                    {"$ref": "#/parameters/SesskeyQuery"}
                ],
                "responses": {
                    "200": {"description": "HTML fragment"},
                    "400": {"description": "Invalid filter choice", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["SocialFlow"],
                "summary": "Save filter choices and render the widget",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["text/html"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "socialflow_optionchoice", "in": "formData", "type": "integer", "enum": [14, 7, 3, 1]},
                    {"name": "socialflow_typechoice", "in": "formData", "type": "string", "enum": ["consult", "contrib", "both"]},
                    {"name": "socialflow_itemnumchoice", "in": "formData", "type": "integer", "enum": [5, 10, 15, 20, 30, 50, 100]},
                    {"name": "socialflow_courseschoice[]", "in": "formData", "type": "array", "items": {"type": "integer"}, "collectionFormat": "multi"},
                    {"name": "sesskey", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "HTML fragment"},
                    "400": {"description": "Invalid filter choice", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/socialflow/data": {
            "get": {
                "tags": ["SocialFlow"],
                "summary": "Social flow data",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/WindowQuery"},
                    {"$ref": "#/parameters/TypeQuery"},
                    {"$ref": "#/parameters/ItemCountQuery"},
                    {"$ref": "#/parameters/SesskeyQuery"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No data", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/socialflow/export": {
            "get": {
                "tags": ["SocialFlow"],
                "summary": "Export the social flow",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "Runtime metrics snapshot",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Site administrators only", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "parameters": {
        "WindowQuery": {"name": "socialflow_optionchoice", "in": "query", "type": "integer", "enum": [14, 7, 3, 1]},
        "TypeQuery": {"name": "socialflow_typechoice", "in": "query", "type": "string", "enum": ["consult", "contrib", "both"]},
        "ItemCountQuery": {"name": "socialflow_itemnumchoice", "in": "query", "type": "integer", "enum": [5, 10, 15, 20, 30, 50, 100]},
        "SesskeyQuery": {"name": "sesskey", "in": "query", "type": "string"}
    },
    "definitions": {
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
