// Package http implements the HTTP request handlers of the FSN analytics
// backend. It provides a thin layer between HTTP transport and business
// logic, keeping handlers focused solely on HTTP concerns.
//
// # Architecture Principles
//
//  1. Thin handlers - minimal logic, delegate to services
//  2. HTTP-only concerns - request parsing, response formatting
//  3. Error transformation - service errors become RFC 7807 problems
//  4. Consistent patterns - chi sub-routers with per-handler Routes()
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service
//	                                              ↓
//	HTTP Response ← render.JSON / ProblemDetails ←┘
//
// Handlers depend on narrow service interfaces (service_interfaces.go) so
// tests can substitute fakes without touching the real services.
package http
