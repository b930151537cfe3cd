// Package docs holds the OpenAPI document served at /swagger.
// Regenerate with `swag init -g cmd/api/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/contracts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Contracts"],
                "summary": "List Contracts",
                "parameters": [
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "name": "per_page", "in": "query"},
                    {"type": "string", "name": "search_term", "in": "query"},
                    {"type": "integer", "name": "branch_id", "in": "query"},
                    {"type": "string", "description": "Comma separated lifecycle states", "name": "state", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/contracts/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Contracts"],
                "summary": "Get Contract",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ContractResponse"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/contracts/{id}/classification": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Contracts"],
                "summary": "Classify Contract",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Reference date (YYYY-MM-DD)", "name": "today", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ClassificationResponse"}},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/contracts/{id}/history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Contracts"],
                "summary": "Contract History",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "default": 50, "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/contracts/{id}/recalculate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Contracts"],
                "summary": "Recalculate Contract Dates",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "422": {"description": "Unprocessable Entity"}
                }
            }
        },
        "/contracts/{id}/schedule": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["Contracts"],
                "summary": "Change Contract Schedule",
                "consumes": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "schedule", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/contracts/{id}/submit": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Contracts"],
                "summary": "Submit Contract",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/contracts/{id}/approve": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Contracts"],
                "summary": "Approve Contract",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/contracts/{id}/reject": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Contracts"],
                "summary": "Reject Contract",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/contracts/{id}/terminate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Contracts"],
                "summary": "Terminate Contract",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/contracts/{id}/renew": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Contracts"],
                "summary": "Renew Contract",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/reminders": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Reminders"],
                "summary": "Reminder List",
                "description": "Classify every non-terminated contract for a day, ordered by next payment date. Nothing is sent or stored.",
                "parameters": [
                    {"type": "string", "name": "today", "in": "query"},
                    {"type": "integer", "name": "branch_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.SweepResult"}},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/reminders/dispatch": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Reminders"],
                "summary": "Dispatch Reminders",
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "schema": {"$ref": "#/definitions/handlers.DispatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.SweepResult"}},
                    "400": {"description": "Bad Request"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/branches/{id}/templates": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Templates"],
                "summary": "Get Branch Templates",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Templates"],
                "summary": "Update Branch Templates",
                "consumes": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "templates", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.TemplateUpdate"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/templates/preview": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Templates"],
                "summary": "Preview Template",
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PreviewRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/permissions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Permissions"],
                "summary": "List Permissions",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/permissions/check": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Permissions"],
                "summary": "Check Permission",
                "parameters": [{"type": "string", "name": "name", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/jobs/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Jobs"],
                "summary": "Get background job status",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/jobs/sweep": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Jobs"],
                "summary": "Trigger reminder sweep",
                "description": "Queue the dispatching sweep for today. Branch-bound accounts sweep only their own branch.",
                "responses": {"202": {"description": "Accepted"}, "503": {"description": "Service Unavailable"}}
            }
        }
    },
    "definitions": {
        "handlers.ScheduleRequest": {
            "type": "object",
            "properties": {
                "start_date": {"type": "string"},
                "payment_day_of_month": {"type": "integer"},
                "payment_plan_id": {"type": "integer"},
                "contract_type_id": {"type": "integer"}
            }
        },
        "handlers.DispatchRequest": {
            "type": "object",
            "properties": {
                "today": {"type": "string"},
                "branch_id": {"type": "integer"}
            }
        },
        "handlers.PreviewRequest": {
            "type": "object",
            "required": ["kind", "template"],
            "properties": {
                "kind": {"type": "string", "enum": ["payment", "renewal"]},
                "template": {"type": "string"},
                "contract_id": {"type": "integer"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handlers.ClassificationResponse": {
            "type": "object",
            "properties": {
                "contract": {"$ref": "#/definitions/models.ContractResponse"},
                "today": {"type": "string"},
                "classification": {"$ref": "#/definitions/lifecycle.Classification"}
            }
        },
        "lifecycle.Classification": {
            "type": "object",
            "properties": {
                "lifecycle_state": {"type": "string", "enum": ["draft", "checking", "active", "expired", "terminated"]},
                "urgency": {"type": "string", "enum": ["contract_expired", "contract_near_expiry", "payment_overdue", "payment_near_due", "none"]},
                "style_hint": {"type": "string"}
            }
        },
        "lifecycle.Reminder": {
            "type": "object",
            "properties": {
                "contract_id": {"type": "integer"},
                "branch_id": {"type": "integer"},
                "customer_id": {"type": "integer"},
                "customer_name": {"type": "string"},
                "contract_name": {"type": "string"},
                "next_payment_date": {"type": "string"},
                "contract_end_date": {"type": "string"},
                "classification": {"$ref": "#/definitions/lifecycle.Classification"}
            }
        },
        "models.ContractResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "branch_id": {"type": "integer"},
                "customer_id": {"type": "integer"},
                "customer_name": {"type": "string"},
                "name": {"type": "string"},
                "start_date": {"type": "string"},
                "signing_date": {"type": "string"},
                "payment_day_of_month": {"type": "integer"},
                "payment_plan_id": {"type": "integer"},
                "payment_plan_name": {"type": "string"},
                "contract_type_id": {"type": "integer"},
                "contract_type_name": {"type": "string"},
                "next_payment_date": {"type": "string"},
                "contract_end_date": {"type": "string"},
                "last_payment_date": {"type": "string"},
                "lifecycle_state": {"type": "string"},
                "base_price": {"type": "string"},
                "period_price": {"type": "string"},
                "deposit_amount": {"type": "string"},
                "penalty_amount": {"type": "string"},
                "late_fee_percent": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "services.ItemFailure": {
            "type": "object",
            "properties": {
                "contract_id": {"type": "integer"},
                "reason": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "services.SweepResult": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "today": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/lifecycle.Reminder"}},
                "failures": {"type": "array", "items": {"$ref": "#/definitions/services.ItemFailure"}},
                "expired": {"type": "integer"},
                "dispatched": {"type": "integer"},
                "skipped": {"type": "integer"}
            }
        },
        "services.TemplateUpdate": {
            "type": "object",
            "properties": {
                "payment_template": {"type": "string"},
                "renewal_template": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8081",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "RentDesk API",
	Description:      "Contract lifecycle, billing dates and reminder notifications for branch-managed rental contracts",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
