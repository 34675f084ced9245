// Package docs registers the OpenAPI description served at /swagger.
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
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/healthz": {"get": {"summary": "Liveness probe", "security": [], "responses": {"200": {"description": "OK"}}}},
        "/catalog": {"get": {"summary": "Practitioners and game types", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httpgin.CatalogResponse"}}}}},
        "/games": {
            "get": {
                "summary": "List games",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "date", "in": "query"},
                    {"type": "string", "name": "practitioner_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Game"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            },
            "post": {
                "summary": "Record a paid game (idempotent)",
                "parameters": [
                    {"type": "string", "name": "Idempotency-Key", "in": "header"},
                    {"name": "req", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpgin.CreateGameRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Game"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "409": {"description": "idempotency key in progress", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "429": {"description": "rate limited", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/games/{id}": {"get": {"summary": "Get game", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Game"}}, "404": {"description": "Not Found"}}}},
        "/games/{id}/wait": {"get": {"summary": "Queue position and estimated wait", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httpgin.WaitResponse"}}}}},
        "/games/{id}/start": {"post": {"summary": "Start attending a waiting game", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "If-Match", "in": "header"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/games/{id}/finish": {"post": {"summary": "Finish an in-progress game", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "If-Match", "in": "header"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/games/{id}/revert": {"post": {"summary": "Return a finished game to in progress (admin)", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}},
        "/games/{id}/move": {"post": {"summary": "Move a waiting game one place", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"name": "req", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpgin.MoveRequest"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/queue": {"get": {"summary": "Waiting list with estimated waits", "parameters": [{"type": "string", "name": "practitioner_id", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/queue/board": {"get": {"summary": "Waiting, in progress and finished columns", "parameters": [{"type": "string", "name": "practitioner_id", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/queue/optimizations": {"get": {"summary": "Load balancing hints", "responses": {"200": {"description": "OK"}}}},
        "/practitioners/{id}/next": {"get": {"summary": "Next waiting game", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "204": {"description": "queue empty"}}}},
        "/practitioners/{id}/active": {"get": {"summary": "Game in progress", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "204": {"description": "idle"}}}},
        "/reports/clients": {"get": {"summary": "Clients ranked by total spent (admin)", "responses": {"200": {"description": "OK"}}}},
        "/reports/financial": {"get": {"summary": "Revenue breakdown (admin)", "parameters": [{"type": "string", "name": "from", "in": "query"}, {"type": "string", "name": "to", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/reports/profit": {"get": {"summary": "Net profit (admin)", "parameters": [{"type": "string", "name": "from", "in": "query"}, {"type": "string", "name": "to", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/reports/campaigns": {"get": {"summary": "Campaign ROAS (admin)", "parameters": [{"type": "string", "name": "from", "in": "query"}, {"type": "string", "name": "to", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/reports/dashboard": {"get": {"summary": "Today's operation", "responses": {"200": {"description": "OK"}}}},
        "/reports/export": {"get": {"summary": "Finished games for export (admin)", "parameters": [{"type": "string", "name": "from", "in": "query"}, {"type": "string", "name": "to", "in": "query"}, {"type": "string", "name": "practitioner_id", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/campaigns/{name}/spend": {"put": {"summary": "Record campaign spend (admin)", "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}, {"name": "req", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpgin.SetSpendRequest"}}], "responses": {"200": {"description": "OK"}}}},
        "/events": {"get": {"summary": "Live stream of game changes", "produces": ["text/event-stream"], "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
        "domain.Game": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "client_name": {"type": "string"},
                "game_type_id": {"type": "string"},
                "practitioner_id": {"type": "string"},
                "value": {"type": "string"},
                "date": {"type": "string"},
                "payment_time": {"type": "string"},
                "status": {"type": "string", "enum": ["waiting", "in_progress", "finished", "paid_only"]},
                "campaign": {"type": "string"},
                "conversation_link": {"type": "string"},
                "queue_position": {"type": "integer"},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"},
                "version": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "httpgin.CatalogResponse": {"type": "object", "properties": {"practitioners": {"type": "array", "items": {"type": "object"}}, "game_types": {"type": "array", "items": {"type": "object"}}}},
        "httpgin.CreateGameRequest": {
            "type": "object",
            "required": ["client_name", "game_type_id", "practitioner_id", "date", "payment_time"],
            "properties": {
                "client_name": {"type": "string"},
                "game_type_id": {"type": "string"},
                "practitioner_id": {"type": "string"},
                "value": {"type": "string"},
                "date": {"type": "string"},
                "payment_time": {"type": "string"},
                "status": {"type": "string", "enum": ["waiting", "paid_only"]},
                "campaign": {"type": "string"},
                "conversation_link": {"type": "string"}
            }
        },
        "httpgin.MoveRequest": {"type": "object", "required": ["direction"], "properties": {"direction": {"type": "string", "enum": ["up", "down"]}}},
        "httpgin.SetSpendRequest": {"type": "object", "properties": {"spend": {"type": "string"}}},
        "httpgin.WaitResponse": {"type": "object", "properties": {"game_id": {"type": "string"}, "position": {"type": "integer"}, "wait_minutes": {"type": "integer"}}},
        "httpgin.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cartodesk API",
	Description:      "Queue, lifecycle and reporting backend for a cartomancy reading service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
