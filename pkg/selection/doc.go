/*
Package selection tracks which single UI element is active.

A Tracker owns the "currently selected" slot for one UI session. Selecting an
element removes the marker from the previous one before applying it to the new
one, so at most one element carries the marker at any time.

	tracker := selection.NewTracker()
	tracker.Select(a)
	tracker.Select(b) // a is unmarked, b is marked

The Registry holds the elements a session knows about, so transports that only
carry identifiers (HTTP, MCP) can resolve them.
*/
package selection
