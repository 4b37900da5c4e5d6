// Package docs registers the OpenAPI description served at /docs/*.
// Keep it in sync with the godoc annotations on the HTTP handlers.
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
        "/api/track": {
            "post": {
                "description": "Stores a single event. The timestamp is assigned by the server and the\nUser-Agent header is used when the payload has no user_agent key.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Events"],
                "summary": "Track an interaction event",
                "parameters": [
                    {
                        "description": "Event payload",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/fiber.TrackEventRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/fiber.TrackEventResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/fiber.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/fiber.ErrorResponse"}}
                }
            }
        },
        "/api/track/bulk": {
            "post": {
                "description": "Validates every event first, then stores them individually",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Events"],
                "summary": "Bulk track events",
                "parameters": [
                    {
                        "description": "Bulk event payload",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/fiber.BulkTrackEventsRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/fiber.BulkTrackEventsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/fiber.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/fiber.ErrorResponse"}}
                }
            }
        },
        "/owner/analytics": {
            "get": {
                "security": [{"BasicAuth": []}],
                "description": "Recomputes every dashboard metric from the store. Clients should poll\nagain after refresh_interval_seconds; the Refresh header carries the same value.",
                "produces": ["application/json"],
                "tags": ["Analytics"],
                "summary": "Owner analytics dashboard",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/fiber.DashboardResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "string"}}
                }
            }
        },
        "/owner/analytics/average": {
            "get": {
                "security": [{"BasicAuth": []}],
                "description": "Mean over the newest sample events of a type, rounded to 2 decimals",
                "produces": ["application/json"],
                "tags": ["Analytics"],
                "summary": "Average of a numeric additional_data key",
                "parameters": [
                    {"type": "string", "description": "Event type (default scroll_depth)", "name": "event_type", "in": "query"},
                    {"type": "string", "description": "additional_data key (default depth)", "name": "key", "in": "query"},
                    {"type": "integer", "description": "Sample size (default 300)", "name": "sample", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/fiber.AverageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/fiber.ErrorResponse"}}
                }
            }
        },
        "/owner/analytics/count": {
            "get": {
                "security": [{"BasicAuth": []}],
                "description": "Counts events in the recency window matching the filter",
                "produces": ["application/json"],
                "tags": ["Analytics"],
                "summary": "Count events",
                "parameters": [
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Event type, repeatable for set membership", "name": "event_type", "in": "query"},
                    {"type": "boolean", "description": "Only events with an element", "name": "non_empty_element", "in": "query"},
                    {"type": "boolean", "description": "Only events with a page", "name": "non_empty_page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/fiber.CountResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/fiber.ErrorResponse"}}
                }
            }
        },
        "/owner/analytics/timeline": {
            "get": {
                "security": [{"BasicAuth": []}],
                "description": "Event counts per calendar date, oldest first. Days without events are omitted.",
                "produces": ["application/json"],
                "tags": ["Analytics"],
                "summary": "Events per day",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/fiber.TimelineResponse"}}
                }
            }
        },
        "/owner/analytics/top": {
            "get": {
                "security": [{"BasicAuth": []}],
                "description": "Most frequent values of element, page, event_type or session_id",
                "produces": ["application/json"],
                "tags": ["Analytics"],
                "summary": "Top values of a field",
                "parameters": [
                    {"type": "string", "description": "element | page | event_type | session_id", "name": "field", "in": "query", "required": true},
                    {"type": "integer", "description": "Number of entries (default 10)", "name": "n", "in": "query"},
                    {"type": "boolean", "description": "Count empty values as a group", "name": "include_empty", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/fiber.TopResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/fiber.ErrorResponse"}}
                }
            }
        },
        "/owner/analytics/unique": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["Analytics"],
                "summary": "Distinct values of a field",
                "parameters": [
                    {"type": "string", "description": "element | page | event_type | session_id", "name": "field", "in": "query", "required": true},
                    {"type": "boolean", "description": "Count the empty value as distinct", "name": "include_empty", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/fiber.UniqueResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/fiber.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "fiber.AverageResponse": {
            "type": "object",
            "properties": {
                "average": {"type": "number", "example": 0.4},
                "degraded": {"type": "boolean"},
                "event_type": {"type": "string", "example": "scroll_depth"},
                "key": {"type": "string", "example": "depth"},
                "sample": {"type": "integer", "example": 300}
            }
        },
        "fiber.BulkTrackEventsRequest": {
            "type": "object",
            "properties": {
                "events": {"type": "array", "items": {"$ref": "#/definitions/fiber.TrackEventRequest"}}
            }
        },
        "fiber.BulkTrackEventsResponse": {
            "type": "object",
            "properties": {
                "created": {"type": "integer", "example": 3}
            }
        },
        "fiber.CountResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "degraded": {"type": "boolean"}
            }
        },
        "fiber.DashboardResponse": {
            "description": "All dashboard metrics computed from one read of the event store",
            "type": "object",
            "properties": {
                "avg_scroll_depth": {"type": "number"},
                "contact_submits": {"type": "integer"},
                "degraded": {"type": "boolean"},
                "generated_at": {"type": "string"},
                "page_views": {"type": "integer"},
                "refresh_interval_seconds": {"type": "integer", "example": 60},
                "timeline": {"type": "array", "items": {"$ref": "#/definitions/fiber.DayCountResponse"}},
                "top_elements": {"type": "array", "items": {"$ref": "#/definitions/fiber.ValueCountResponse"}},
                "top_event_types": {"type": "array", "items": {"$ref": "#/definitions/fiber.ValueCountResponse"}},
                "top_pages": {"type": "array", "items": {"$ref": "#/definitions/fiber.ValueCountResponse"}},
                "total_events": {"type": "integer"},
                "unique_elements": {"type": "integer"},
                "unique_pages": {"type": "integer"}
            }
        },
        "fiber.DayCountResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer", "example": 42},
                "date": {"type": "string", "example": "2025-04-10"}
            }
        },
        "fiber.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid_event"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}},
                "message": {"type": "string"}
            }
        },
        "fiber.TimelineResponse": {
            "type": "object",
            "properties": {
                "degraded": {"type": "boolean"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/fiber.DayCountResponse"}}
            }
        },
        "fiber.TopResponse": {
            "type": "object",
            "properties": {
                "degraded": {"type": "boolean"},
                "field": {"type": "string", "example": "element"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/fiber.ValueCountResponse"}}
            }
        },
        "fiber.TrackEventRequest": {
            "description": "Event tracking payload. Timestamp is always assigned by the server.",
            "type": "object",
            "properties": {
                "additional_data": {"type": "object"},
                "element": {"type": "string", "example": "hero_contact"},
                "event_type": {"type": "string", "example": "cta_click"},
                "page": {"type": "string", "example": "/"},
                "session_id": {"type": "string", "example": "1712345678-k2j4h5"},
                "user_agent": {"description": "UserAgent overrides the request header when present, even if empty.", "type": "string"}
            }
        },
        "fiber.TrackEventResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "tracked"}
            }
        },
        "fiber.UniqueResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "degraded": {"type": "boolean"},
                "field": {"type": "string", "example": "page"}
            }
        },
        "fiber.ValueCountResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer", "example": 12},
                "value": {"type": "string", "example": "hero_contact"}
            }
        }
    },
    "securityDefinitions": {
        "BasicAuth": {
            "type": "basic"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Site Analytics API",
	Description:      "Event ingestion and owner analytics for the marketing site.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
