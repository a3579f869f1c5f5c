// Package middleware contains HTTP middleware for the Fiber application.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - Auth: API key validation (X-API-Key or Bearer) protecting the status API.
//   - RayID: tags every request with a ray id stored in the fiber locals and
//     echoed in the X-Ray-ID response header.
//
package middleware
