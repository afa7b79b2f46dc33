/*
Package domain contains the core types shared by every weft component.

It is kept free of I/O: the dispatcher, relay and adapters translate between the
network and these values.

# Key Entities

  - Element / Node: a UI element that can carry the "selected" marker.
  - Response: the decoded outcome of a single dispatch.
  - DispatchError: the one error contract every call site handles.
  - PushEvent: a server-initiated notification delivered outside request/response.
  - LifecycleHooks: observability callbacks for dispatches, pushes, renders and selections.
*/
package domain
