// Package httpserver provides the reusable HTTP server shell for reviewnet
// components.
//
// BaseServer wires a chi router with standard middleware, structured request
// logging, health endpoints, an optional Prometheus metrics server, and
// graceful shutdown. Components plug their endpoints in through the
// RouteRegistrar interface.
//
// Every server built on BaseServer exposes:
//
//   - /livez: liveness check
//   - /readyz: readiness check
//   - /drain, /undrain: readiness control for load balancers
//   - optional pprof endpoints under /debug when enabled
package httpserver
