// Package docs registers the OpenAPI document served at /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/invoices": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Invoices"],
                "summary": "List invoices",
                "parameters": [
                    {"type": "string", "name": "payer_id", "in": "query"},
                    {"type": "string", "name": "period_id", "in": "query"},
                    {"type": "string", "name": "fee_definition_id", "in": "query"},
                    {"type": "string", "name": "campus_id", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "status", "in": "query"},
                    {"type": "string", "name": "start_time", "in": "query"},
                    {"type": "string", "name": "end_time", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"},
                    {"type": "string", "name": "sort", "in": "query"},
                    {"type": "string", "name": "order", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListInvoicesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Invoices"],
                "summary": "Generate an invoice",
                "parameters": [
                    {"name": "invoice", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.GenerateInvoiceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.InvoiceResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/invoices/generate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Invoices"],
                "summary": "Generate invoices in bulk",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.BulkGenerateInvoicesRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.BulkGenerateInvoicesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/invoices/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "tags": ["Invoices"],
                "summary": "Export invoices",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}}
                }
            }
        },
        "/invoices/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Invoices"],
                "summary": "Get an invoice",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.InvoiceResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Invoices"],
                "summary": "Update an invoice",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateInvoiceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.InvoiceResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/invoices/{id}/adjust": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Invoices"],
                "summary": "Adjust an invoice",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.AdjustInvoiceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.InvoiceResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/invoices/{id}/reverse": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Invoices"],
                "summary": "Reverse an invoice",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ReverseInvoiceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ReverseInvoiceResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/invoices/{id}/audit": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Invoices"],
                "summary": "Get invoice audit history",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListAuditEntriesResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.GenerateInvoiceRequest": {
            "type": "object",
            "required": ["payer_id", "fee_definition_id", "period_id", "due_date"],
            "properties": {
                "payer_id": {"type": "string"},
                "fee_definition_id": {"type": "string"},
                "period_id": {"type": "string"},
                "due_date": {"type": "string", "format": "date-time"},
                "campus_id": {"type": "string"},
                "apply_discounts": {"type": "boolean"}
            }
        },
        "dto.BulkGenerateInvoicesRequest": {
            "type": "object",
            "required": ["payer_ids", "fee_definition_id", "period_id", "due_date"],
            "properties": {
                "payer_ids": {"type": "array", "items": {"type": "string"}},
                "fee_definition_id": {"type": "string"},
                "period_id": {"type": "string"},
                "due_date": {"type": "string", "format": "date-time"},
                "campus_id": {"type": "string"},
                "apply_discounts": {"type": "boolean"}
            }
        },
        "dto.BulkGenerateInvoicesResponse": {
            "type": "object",
            "properties": {
                "successful": {"type": "array", "items": {"$ref": "#/definitions/dto.InvoiceResponse"}},
                "failed": {"type": "array", "items": {"$ref": "#/definitions/dto.BulkGenerateFailure"}},
                "total_count": {"type": "integer"},
                "success_count": {"type": "integer"},
                "failure_count": {"type": "integer"}
            }
        },
        "dto.BulkGenerateFailure": {
            "type": "object",
            "properties": {
                "payer_id": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "dto.AdjustInvoiceRequest": {
            "type": "object",
            "properties": {
                "additional_discount": {"type": "string"},
                "additional_late_fee": {"type": "string"}
            }
        },
        "dto.UpdateInvoiceRequest": {
            "type": "object",
            "properties": {
                "due_date": {"type": "string", "format": "date-time"},
                "invoice_status": {"type": "string", "enum": ["ISSUED", "PARTIALLY_PAID", "PAID", "OVERDUE"]}
            }
        },
        "dto.ReverseInvoiceRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string", "maxLength": 1000}
            }
        },
        "dto.ReverseInvoiceResponse": {
            "type": "object",
            "properties": {
                "original_invoice": {"$ref": "#/definitions/dto.InvoiceResponse"},
                "cancelled_invoice": {"$ref": "#/definitions/dto.InvoiceResponse"},
                "reason": {"type": "string"}
            }
        },
        "dto.InvoiceResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "invoice_number": {"type": "string"},
                "payer_id": {"type": "string"},
                "fee_definition_id": {"type": "string"},
                "period_id": {"type": "string"},
                "campus_id": {"type": "string"},
                "currency": {"type": "string"},
                "invoice_status": {"type": "string", "enum": ["DRAFT", "ISSUED", "PARTIALLY_PAID", "PAID", "OVERDUE", "CANCELLED"]},
                "issue_date": {"type": "string", "format": "date-time"},
                "due_date": {"type": "string", "format": "date-time"},
                "total_amount": {"type": "string"},
                "discount_amount": {"type": "string"},
                "late_fee_amount": {"type": "string"},
                "net_amount": {"type": "string"},
                "paid_amount": {"type": "string"},
                "amount_due": {"type": "string"},
                "reversal_reason": {"type": "string"},
                "reversed_at": {"type": "string", "format": "date-time"},
                "reversed_by": {"type": "string"},
                "version": {"type": "integer"},
                "lines": {"type": "array", "items": {"$ref": "#/definitions/invoice.InvoiceLine"}},
                "payment_allocations": {"type": "array", "items": {"$ref": "#/definitions/payment.Allocation"}},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"},
                "created_by": {"type": "string"},
                "updated_by": {"type": "string"}
            }
        },
        "invoice.InvoiceLine": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "invoice_id": {"type": "string"},
                "fee_line_id": {"type": "string"},
                "category": {"type": "string"},
                "description": {"type": "string"},
                "amount": {"type": "string"},
                "quantity": {"type": "string"},
                "line_item_discount": {"type": "string"},
                "ledger_account_ref": {"type": "string"},
                "sort_order": {"type": "integer"}
            }
        },
        "payment.Allocation": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "payment_id": {"type": "string"},
                "invoice_id": {"type": "string"},
                "amount": {"type": "string"},
                "allocated_at": {"type": "string", "format": "date-time"}
            }
        },
        "dto.ListInvoicesResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/dto.InvoiceResponse"}},
                "pagination": {"$ref": "#/definitions/types.PaginationResponse"}
            }
        },
        "types.PaginationResponse": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"}
            }
        },
        "dto.ListAuditEntriesResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/audit.Entry"}}
            }
        },
        "audit.Entry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "entity_type": {"type": "string"},
                "entity_id": {"type": "string"},
                "action": {"type": "string", "enum": ["CREATE", "UPDATE"]},
                "actor_id": {"type": "string"},
                "old_value": {"type": "object"},
                "new_value": {"type": "object"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"$ref": "#/definitions/errors.ErrorDetail"}
            }
        },
        "errors.ErrorDetail": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "internal_error": {"type": "string"},
                "details": {"type": "object"}
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
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Fee Ledger API",
	Description:      "Invoice generation, adjustment and reversal for institutional fee billing.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
