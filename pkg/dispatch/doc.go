/*
Package dispatch implements the Request Dispatcher: one JSON POST per call,
resolved to either a decoded Response or a *domain.DispatchError.

Every dispatch carries a deadline (WithTimeout, 30s by default) and honours the
caller's context. There is no retry, deduplication or caching.
*/
package dispatch
