/*
Package relay implements the Push Relay: every named push event is turned into
a compile-line dispatch whose outcome is surfaced through a Presenter.

# Ordering Policies

The relay numbers events as they arrive. What happens when responses overtake
each other depends on the Policy:

  - PolicyAll (default): dispatches run concurrently and every response is
    presented exactly once, in completion order.
  - PolicyLatest: dispatches run concurrently; a response older than one already
    presented is discarded, so the display never goes backwards.
  - PolicySerial: one dispatch in flight at a time, events handled in arrival order.

Presenter calls are always serialized.
*/
package relay
