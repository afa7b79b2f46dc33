package domain

import (
	"encoding/json"
	"fmt"
)

// Response is the decoded outcome of one dispatch.
type Response struct {
	Endpoint  string
	Status    int
	RequestID string
	// Body is the decoded JSON document; objects decode to map[string]any.
	Body any
	Raw  []byte
}

// Fields returns the body as an object, or nil if the body is not a JSON object.
func (r *Response) Fields() map[string]any {
	if r == nil {
		return nil
	}
	m, _ := r.Body.(map[string]any)
	return m
}

// ProcessResult is the /process_node success payload.
type ProcessResult struct {
	Result any `json:"result" mapstructure:"result"`
}

// CompileResult is the /compile-line success payload.
type CompileResult struct {
	Output string `json:"output" mapstructure:"output"`
}

// CompiledCode is the /compile success payload.
type CompiledCode struct {
	Language string `json:"language" mapstructure:"language"`
	Code     string `json:"compiled_code" mapstructure:"compiled_code"`
}

// ExecuteResult wraps whatever /execute returned.
type ExecuteResult struct {
	Data any `json:"data"`
}

// Languages accepted by the /compile endpoint.
const (
	LanguagePython     = "python"
	LanguageC          = "c"
	LanguageJavaScript = "javascript"
)

// Output is what a presenter shows on the success path.
type Output struct {
	// Source names the call site, e.g. "compile-line".
	Source string
	Text   string
}

// FormatValue renders a decoded JSON value as display text.
// Strings are shown verbatim, everything else as indented JSON.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
