// Package http implements the HTTP request handlers of the dashboard API.
// It provides a thin layer between HTTP transport and business logic, keeping
// handlers focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all aggregation belongs in the service layer
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Dataset Store
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details specification:
//
//	{
//	    "type": "/errors/indicator/not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "indicator not found: Homicides",
//	    "instance": "/api/data/series"
//	}
//
// # Testing
//
// Handlers are tested using httptest with a mocked data service, verifying
// both success payloads and problem responses.
package http
