package weft_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/domain"
)

// ExampleSession_NewRelay relays pushed lines to a backend and collects what
// would have been shown, without a terminal or a real push server.
func ExampleSession_NewRelay() {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"output": "hello"}`)
	}))
	defer backend.Close()

	s, err := weft.New(backend.URL)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	src := memory.NewSource(1)
	presenter := memory.NewPresenter()

	src.Emit(domain.PushEvent{Name: domain.EventCompileLine, Data: `print("hello")`})
	src.Close()

	if err := s.NewRelay(src, presenter).Run(context.Background()); err != nil {
		log.Fatal(err)
	}
	for _, out := range presenter.Outputs() {
		fmt.Println(out.Text)
	}
	// Output: hello
}

// ExampleSession_Select shows the selection marker moving between nodes.
func ExampleSession_Select() {
	s, err := weft.New("http://127.0.0.1:5000")
	if err != nil {
		log.Fatal(err)
	}

	a := domain.NewNode("a", domain.NodeTypeML, nil)
	b := domain.NewNode("b", domain.NodeTypeML, nil)
	s.Register(a)
	s.Register(b)

	s.Select("a")
	s.Select("b")
	fmt.Println(a.Classes(), b.Classes())
	// Output: [] [selected]
}
