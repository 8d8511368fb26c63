// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with `swag init -g cmd/api/main.go` after changing handler annotations.
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
    "security": [{"BearerAuth": []}],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Create a student account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/registerRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Email already registered"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange credentials for a bearer token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/profile": {
            "get": {"tags": ["profile"], "summary": "Current student profile", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["profile"], "summary": "Replace profile fields", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/profile/semester": {
            "put": {"tags": ["profile"], "summary": "Configure the semester window", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}},
            "delete": {"tags": ["profile"], "summary": "Clear the semester window", "responses": {"204": {"description": "No Content"}}}
        },
        "/attendance": {
            "get": {
                "tags": ["attendance"],
                "summary": "Attendance days, optionally limited to [from, to]",
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/attendance/{date}": {
            "put": {"tags": ["attendance"], "summary": "Record the attendance of one day", "parameters": [{"type": "string", "name": "date", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}},
            "patch": {"tags": ["attendance"], "summary": "Partially update a day", "parameters": [{"type": "string", "name": "date", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Version conflict"}}},
            "delete": {"tags": ["attendance"], "summary": "Remove a day", "parameters": [{"type": "string", "name": "date", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        },
        "/attendance/sync": {
            "get": {"tags": ["attendance"], "summary": "Changes since last_sync, deletions included", "parameters": [{"type": "string", "name": "last_sync", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        },
        "/attendance/reports": {
            "get": {"tags": ["attendance"], "summary": "Days carrying a remark or proof", "responses": {"200": {"description": "OK"}}}
        },
        "/attendance/events": {
            "get": {"tags": ["attendance"], "summary": "Server-sent change notifications", "produces": ["text/event-stream"], "responses": {"200": {"description": "OK"}}}
        },
        "/analytics": {
            "get": {
                "tags": ["analytics"],
                "summary": "Totals, percentage and per-month breakdown",
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "string", "name": "scope", "in": "query", "enum": ["all", "semester"]}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/forecast/leave-plan": {
            "get": {
                "tags": ["forecast"],
                "summary": "Project attendance after taking planned leave days",
                "parameters": [
                    {"type": "string", "name": "mode", "in": "query", "enum": ["SEMESTER", "MONTH"]},
                    {"type": "string", "name": "month", "in": "query"},
                    {"type": "integer", "name": "leaves", "in": "query"},
                    {"type": "number", "name": "target", "in": "query"},
                    {"type": "string", "name": "today", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/forecast/range": {
            "get": {"tags": ["forecast"], "summary": "Forecast for an explicit date range", "responses": {"200": {"description": "OK"}}}
        },
        "/forecast/semester": {
            "get": {"tags": ["forecast"], "summary": "Semester totals and possible leaves", "responses": {"200": {"description": "OK"}}}
        },
        "/forecast/audit": {
            "get": {"tags": ["forecast"], "summary": "Per-month audit of the semester", "responses": {"200": {"description": "OK"}}}
        },
        "/habits": {
            "get": {"tags": ["habits"], "summary": "List habits", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["habits"], "summary": "Create a habit", "responses": {"201": {"description": "Created"}}}
        },
        "/habits/{id}": {
            "delete": {"tags": ["habits"], "summary": "Delete a habit", "responses": {"204": {"description": "No Content"}}}
        },
        "/habits/{id}/check-ins": {
            "post": {"tags": ["habits"], "summary": "Check a habit off for a day", "responses": {"201": {"description": "Created"}, "409": {"description": "Already checked"}}}
        },
        "/tasks": {
            "get": {"tags": ["tasks"], "summary": "List tasks with their due state", "parameters": [{"name": "filter", "in": "query", "type": "string", "enum": ["all", "today", "upcoming", "overdue", "completed"]}, {"name": "sort", "in": "query", "type": "string", "enum": ["date", "created", "name"]}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}},
            "post": {"tags": ["tasks"], "summary": "Create a task", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/tasks/{id}": {
            "patch": {"tags": ["tasks"], "summary": "Edit a task", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["tasks"], "summary": "Delete a task", "responses": {"204": {"description": "No Content"}}}
        },
        "/tasks/{id}/toggle": {
            "post": {"tags": ["tasks"], "summary": "Flip a task between open and completed", "responses": {"200": {"description": "OK"}}}
        },
        "/exams": {
            "get": {"tags": ["exams"], "summary": "Upcoming and past exams with days left", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["exams"], "summary": "Add an exam or deadline", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/exams/{id}": {
            "delete": {"tags": ["exams"], "summary": "Delete an exam", "responses": {"204": {"description": "No Content"}}}
        },
        "/export": {
            "get": {"tags": ["export"], "summary": "Full JSON backup", "responses": {"200": {"description": "OK"}}}
        },
        "/export/csv": {
            "get": {"tags": ["export"], "summary": "Attendance history as CSV", "produces": ["text/csv"], "responses": {"200": {"description": "OK"}}}
        },
        "/import": {
            "post": {"tags": ["export"], "summary": "Restore a backup produced by /export", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        }
    },
    "definitions": {
        "registerRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8},
                "name": {"type": "string"}
            }
        },
        "loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Studo Sync Engine API",
	Description:      "Attendance tracking, analytics and leave forecasting for students.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
