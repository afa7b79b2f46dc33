// Package client provides the typed call sites over a Dispatcher:
// node processing, line compilation, full compilation and execution.
package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Endpoints names the backend routes. Any of them may be an absolute URL.
type Endpoints struct {
	ProcessNode string `yaml:"process_node" mapstructure:"process_node"`
	CompileLine string `yaml:"compile_line" mapstructure:"compile_line"`
	Compile     string `yaml:"compile" mapstructure:"compile"`
	Execute     string `yaml:"execute" mapstructure:"execute"`
}

// DefaultEndpoints returns the routes served by the reference backend.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		ProcessNode: "/process_node",
		CompileLine: "/compile-line",
		Compile:     "/compile",
		Execute:     "/execute",
	}
}

// withDefaults fills empty routes from DefaultEndpoints.
func (e Endpoints) withDefaults() Endpoints {
	def := DefaultEndpoints()
	if e.ProcessNode == "" {
		e.ProcessNode = def.ProcessNode
	}
	if e.CompileLine == "" {
		e.CompileLine = def.CompileLine
	}
	if e.Compile == "" {
		e.Compile = def.Compile
	}
	if e.Execute == "" {
		e.Execute = def.Execute
	}
	return e
}

// Client issues the backend calls. Every method returns either a typed
// result or a *domain.DispatchError.
type Client struct {
	dispatcher ports.Dispatcher
	endpoints  Endpoints
}

// New creates a Client. Empty endpoints fall back to the defaults.
func New(d ports.Dispatcher, endpoints Endpoints) *Client {
	return &Client{dispatcher: d, endpoints: endpoints.withDefaults()}
}

// Endpoints returns the effective routes.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// ProcessNode sends an arbitrary node object to the processing endpoint.
func (c *Client) ProcessNode(ctx context.Context, node any) (*domain.ProcessResult, error) {
	resp, err := c.dispatcher.Dispatch(ctx, c.endpoints.ProcessNode, node)
	if err != nil {
		return nil, err
	}
	var out domain.ProcessResult
	if err := decode(resp, &out, "result"); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompileLine compiles a single line of code.
func (c *Client) CompileLine(ctx context.Context, code string) (*domain.CompileResult, error) {
	resp, err := c.dispatcher.Dispatch(ctx, c.endpoints.CompileLine, map[string]string{"code": code})
	if err != nil {
		return nil, err
	}
	var out domain.CompileResult
	if err := decode(resp, &out, "output"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Compile translates a whole program to the target language.
func (c *Client) Compile(ctx context.Context, language, code string) (*domain.CompiledCode, error) {
	lang, err := NormalizeLanguage(language)
	if err != nil {
		return nil, err
	}
	payload := map[string]string{"language": lang, "code": code}
	resp, err := c.dispatcher.Dispatch(ctx, c.endpoints.Compile, payload)
	if err != nil {
		return nil, err
	}
	out := domain.CompiledCode{Language: lang}
	if err := decode(resp, &out, "compiled_code"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Execute posts the gathered input as {"data": ...} and hands back whatever JSON came back.
func (c *Client) Execute(ctx context.Context, data any) (*domain.ExecuteResult, error) {
	resp, err := c.dispatcher.Dispatch(ctx, c.endpoints.Execute, map[string]any{"data": data})
	if err != nil {
		return nil, err
	}
	return &domain.ExecuteResult{Data: resp.Body}, nil
}

// NormalizeLanguage maps aliases to the languages /compile understands.
func NormalizeLanguage(language string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "python", "py":
		return domain.LanguagePython, nil
	case "c":
		return domain.LanguageC, nil
	case "javascript", "js":
		return domain.LanguageJavaScript, nil
	case "":
		return "", fmt.Errorf("language required (python, c, javascript)")
	}
	return "", fmt.Errorf("unknown language %q (python, c, javascript)", language)
}

// decode maps the response object onto out. The success field must be present.
func decode(resp *domain.Response, out any, required string) error {
	fields := resp.Fields()
	if fields == nil {
		return &domain.DispatchError{
			Kind:     domain.KindDecode,
			Endpoint: resp.Endpoint,
			Status:   resp.Status,
			Err:      fmt.Errorf("expected a JSON object"),
		}
	}
	if _, ok := fields[required]; !ok {
		return &domain.DispatchError{
			Kind:     domain.KindDecode,
			Endpoint: resp.Endpoint,
			Status:   resp.Status,
			Err:      fmt.Errorf("missing %q field", required),
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(fields); err != nil {
		return &domain.DispatchError{
			Kind:     domain.KindDecode,
			Endpoint: resp.Endpoint,
			Status:   resp.Status,
			Err:      err,
		}
	}
	return nil
}
