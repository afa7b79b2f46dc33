/*
Package weft is the client side of a node-based code editor: it talks to a
compute backend over JSON/HTTP, keeps track of which node is selected, and
relays server-pushed lines of code to the compiler.

# Concept

A Session owns three things:

  - a Client that issues the four backend calls (process_node, compile-line,
    compile and execute) through a Dispatcher;
  - a Registry of nodes and a Tracker that keeps at most one of them marked
    as selected;
  - the hooks and logger shared by everything it creates.

Push events arrive from an EventSource (SSE, Redis pub/sub or in-memory). A
Relay forwards every compile-line event to the backend and hands the outcome
to a Presenter.

# Errors

Every call returns either a typed result or a *domain.DispatchError.
client.Surface is the single place that decides what a user sees: results and
application errors (a non-empty "error" field in the reply) go to the
Presenter, transport and decoding failures only reach the log.

# Usage

	s, err := weft.New("http://127.0.0.1:5000")
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	s.Register(domain.NewNode("n1", domain.NodeTypeML, map[string]any{"model": "linear"}))
	s.Select("n1")
	res, err := s.ProcessSelected(ctx)

To follow pushed lines:

	src, _ := sse.NewSource("http://127.0.0.1:5000/events")
	r := s.NewRelay(src, presenter, relay.WithPolicy(relay.PolicyLatest))
	err := r.Run(ctx)
*/
package weft
