package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "PPDB Selection API",
        "description": "Student admissions selection and ranking service",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Periods", "description": "Admission period management"},
        {"name": "Paths", "description": "Admission path quotas and criteria"},
        {"name": "Registrations", "description": "Candidate registrations and verification"},
        {"name": "Selection", "description": "Selection runs, results and overrides"}
    ],
    "paths": {
        "/periods": {
            "get": {
                "tags": ["Periods"],
                "summary": "List admission periods",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Periods"],
                "summary": "Create admission period",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/periods/{id}": {
            "get": {
                "tags": ["Periods"],
                "summary": "Get admission period",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Periods"],
                "summary": "Update admission period",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/periods/{id}/close": {
            "post": {
                "tags": ["Periods"],
                "summary": "Close admission period",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/periods/{id}/announce": {
            "post": {
                "tags": ["Periods"],
                "summary": "Announce selection outcomes",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/periods/{id}/stats": {
            "get": {
                "tags": ["Periods"],
                "summary": "Per-path selection stats",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/paths": {
            "get": {
                "tags": ["Paths"],
                "summary": "List admission paths",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Paths"],
                "summary": "Create admission path",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/paths/{id}": {
            "get": {
                "tags": ["Paths"],
                "summary": "Get admission path",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Paths"],
                "summary": "Update admission path",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/paths/{id}/selection/run": {
            "post": {
                "tags": ["Selection"],
                "summary": "Run the selection for a path",
                "responses": {
                    "200": {"description": "Run counts"},
                    "404": {"description": "Not found"},
                    "409": {"description": "Selection already running"}
                }
            }
        },
        "/paths/{id}/selection/results": {
            "get": {
                "tags": ["Selection"],
                "summary": "Ranked selection results",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/paths/{id}/selection/export": {
            "get": {
                "tags": ["Selection"],
                "summary": "Download ranked results as CSV",
                "produces": ["text/csv"],
                "responses": {"200": {"description": "CSV payload"}}
            }
        },
        "/registrations": {
            "get": {
                "tags": ["Registrations"],
                "summary": "List registrations",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Registrations"],
                "summary": "Register a candidate",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/registrations/{id}": {
            "get": {
                "tags": ["Registrations"],
                "summary": "Get registration detail",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/registrations/{id}/verify": {
            "put": {
                "tags": ["Registrations"],
                "summary": "Apply verification decision",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}}
            }
        },
        "/selections/{id}": {
            "get": {
                "tags": ["Selection"],
                "summary": "Get a selection outcome",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/selections/{id}/status": {
            "put": {
                "tags": ["Selection"],
                "summary": "Manually override a selection status",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        }
    },
    "definitions": {
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
