// Package services implements the business logic layer of the FSN analytics
// backend. It provides a clean separation between HTTP handlers and the
// dataset/feedback packages, ensuring that business rules are centralized and
// testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//  1. Interface-driven design for testability
//  2. Context propagation for cancellation and tracing
//  3. Dependency injection for loose coupling
//  4. Domain-focused methods that encapsulate business rules
//
// # Available Services
//
//   - DatasetService: loads, cleans, caches, and queries the child
//     nutrition snapshot
//   - FeedbackService: ingests and aggregates usability feedback
//   - HealthService: liveness and readiness over the service dependencies
//
// # Error Handling
//
// Services return the sentinel errors in errors.go; the HTTP layer maps them
// onto RFC 7807 problem responses by message. Wrapping with fmt.Errorf("%w: ...")
// preserves both the mapping and the detail.
//
// # Caching
//
// The dataset snapshot is cached with a TTL and rebuilt through a
// singleflight group, so concurrent expiry never triggers parallel source
// fetches.
package services
