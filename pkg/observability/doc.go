/*
Package observability turns weft lifecycle hooks into Prometheus metrics and
structured log records.

Both are plain domain.LifecycleHooks values and can be merged with
domain.ChainHooks before being handed to the dispatcher, relay and tracker.
*/
package observability
