/*
Package ports defines the driven ports (interfaces) used by weft components.

These interfaces decouple the relay and client from concrete transports and
presentation, so a push can arrive over SSE, Redis or an in-memory channel and
results can be shown on a terminal, an HTTP surface or a test recorder.

# Key Interfaces

  - Dispatcher: performs one JSON request/response cycle against the backend.
  - EventSource: delivers server-pushed events.
  - Presenter: shows output or an error to the user.
*/
package ports
