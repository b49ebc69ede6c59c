package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EduFlow API",
        "description": "College administration back end: courses, students, fees, payments and financial reporting. Probes are served at /health, /ready and /metrics outside the base path.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Student registry"},
        {"name": "Courses", "description": "Course catalogue with room and faculty clash detection"},
        {"name": "Fees", "description": "Fee schedule"},
        {"name": "Payments", "description": "Payment ledger, refunds and receipts"},
        {"name": "Reports", "description": "Financial reports and asynchronous exports"},
        {"name": "Dashboard", "description": "Cached finance dashboard"},
        {"name": "Metrics", "description": "Process metrics"}
    ],
    "paths": {
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["Active", "Inactive", "Graduated", "Suspended"]},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "faculty", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/facets": {
            "get": {
                "tags": ["Courses"],
                "summary": "Distinct departments, faculties and semesters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/conflicts/check": {
            "post": {
                "tags": ["Courses"],
                "summary": "Check a slot for room and faculty clashes",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConflictCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Course detail with roster and projected revenue",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete course",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/fees": {
            "get": {
                "tags": ["Fees"],
                "summary": "List fees",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["name", "amount", "type", "department", "dueDate"]},
                    {"name": "order", "in": "query", "type": "string", "enum": ["asc", "desc"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Fees"],
                "summary": "Create fee",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FeeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/export": {
            "get": {
                "tags": ["Fees"],
                "summary": "Download the filtered fee list as JSON",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "fees_export_YYYY-MM-DD.json"}
                }
            }
        },
        "/fees/{id}": {
            "get": {
                "tags": ["Fees"],
                "summary": "Get fee",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Fees"],
                "summary": "Update fee",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FeeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Fees"],
                "summary": "Delete fee",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/fees/{id}/duplicate": {
            "post": {
                "tags": ["Fees"],
                "summary": "Copy a fee",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments": {
            "get": {
                "tags": ["Payments"],
                "summary": "List payments",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["Completed", "Pending", "Failed", "Refunded"]},
                    {"name": "method", "in": "query", "type": "string"},
                    {"name": "startDate", "in": "query", "type": "string", "format": "date"},
                    {"name": "endDate", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Payments"],
                "summary": "Record a payment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/stats": {
            "get": {
                "tags": ["Payments"],
                "summary": "Ledger totals",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/{id}": {
            "get": {
                "tags": ["Payments"],
                "summary": "Get payment",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Payments"],
                "summary": "Delete payment",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/payments/{id}/refund": {
            "post": {
                "tags": ["Payments"],
                "summary": "Refund a payment",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already refunded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/{id}/receipt": {
            "get": {
                "tags": ["Payments"],
                "summary": "Download a plain text receipt",
                "produces": ["text/plain"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "receipt_RCP....txt"}
                }
            }
        },
        "/reports/financial": {
            "get": {
                "tags": ["Reports"],
                "summary": "Generate a financial report",
                "parameters": [
                    {"name": "reportType", "in": "query", "type": "string", "enum": ["revenue", "payments", "outstanding", "department", "student"]},
                    {"name": "dateRange", "in": "query", "type": "string", "enum": ["last3months", "last6months", "last12months", "thisyear", "custom"]},
                    {"name": "startDate", "in": "query", "type": "string", "format": "date"},
                    {"name": "endDate", "in": "query", "type": "string", "format": "date"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "paymentMethod", "in": "query", "type": "string"},
                    {"name": "breakdown", "in": "query", "type": "string", "enum": ["daily", "weekly", "monthly", "quarterly"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/financial/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a financial report as JSON",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "financial_report_TYPE_YYYY-MM-DD.json"}
                }
            }
        },
        "/reports/exports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a report export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/exports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export job status",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished export through its signed token",
                "produces": ["text/csv", "application/pdf", "application/json"],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Export file"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/finance": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Finance dashboard",
                "parameters": [
                    {"name": "timeRange", "in": "query", "type": "string", "enum": ["3months", "6months", "12months"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Process metrics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "StudentRequest": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "dateOfBirth": {"type": "string", "format": "date"},
                "address": {"type": "string"},
                "department": {"type": "string"},
                "year": {"type": "string", "enum": ["Freshman", "Sophomore", "Junior", "Senior"]},
                "gpa": {"type": "number"},
                "enrollmentDate": {"type": "string", "format": "date"},
                "status": {"type": "string"},
                "financialStatus": {"type": "string"},
                "guardianName": {"type": "string"},
                "guardianPhone": {"type": "string"},
                "emergencyContact": {"type": "string"},
                "enrolledCourses": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["firstName", "lastName", "email", "phone", "dateOfBirth", "department", "year", "enrollmentDate"]
        },
        "Schedule": {
            "type": "object",
            "properties": {
                "days": {"type": "array", "items": {"type": "string"}},
                "startTime": {"type": "string", "example": "09:00"},
                "endTime": {"type": "string", "example": "10:30"},
                "room": {"type": "string"}
            },
            "required": ["days", "startTime", "endTime", "room"]
        },
        "CourseRequest": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "name": {"type": "string"},
                "department": {"type": "string"},
                "faculty": {"type": "string"},
                "credits": {"type": "integer", "minimum": 1, "maximum": 6},
                "semester": {"type": "string"},
                "capacity": {"type": "integer", "minimum": 1, "maximum": 100},
                "enrolled": {"type": "integer"},
                "fee": {"type": "number"},
                "description": {"type": "string"},
                "schedule": {"$ref": "#/definitions/Schedule"}
            },
            "required": ["code", "name", "department", "faculty", "semester", "schedule"]
        },
        "ConflictCheckRequest": {
            "type": "object",
            "properties": {
                "days": {"type": "array", "items": {"type": "string"}},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "room": {"type": "string"},
                "faculty": {"type": "string"},
                "excludeId": {"type": "string"}
            },
            "required": ["days", "startTime", "endTime"]
        },
        "FeeRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "type": {"type": "string"},
                "amount": {"type": "number"},
                "department": {"type": "string"},
                "description": {"type": "string"},
                "dueDate": {"type": "string", "format": "date"},
                "isRecurring": {"type": "boolean"},
                "recurringPeriod": {"type": "string", "enum": ["monthly", "quarterly", "semester", "annual"]}
            },
            "required": ["name", "type", "amount", "department"]
        },
        "PaymentRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "feeId": {"type": "string"},
                "amount": {"type": "number"},
                "method": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "transactionId": {"type": "string"},
                "notes": {"type": "string"}
            },
            "required": ["studentId", "method"]
        },
        "ReportExportRequest": {
            "type": "object",
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf", "json"]},
                "reportType": {"type": "string"},
                "dateRange": {"type": "string"},
                "startDate": {"type": "string", "format": "date"},
                "endDate": {"type": "string", "format": "date"},
                "department": {"type": "string"},
                "paymentMethod": {"type": "string"},
                "breakdown": {"type": "string"}
            },
            "required": ["format"]
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
