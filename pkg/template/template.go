package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aymerick/raymond"
)

// Resolver renders Handlebars templates such as "{{user.name}}" or
// "{{json payload}}" against a Context. Helpers belong to the resolver, so
// every template it parses sees the same helper set.
type Resolver struct {
	helpers map[string]any
}

// NewResolver returns a resolver with the built-in helpers:
//
//	json  renders a value as unescaped, two-space indented JSON
//	now   renders the current UTC time in RFC 3339
func NewResolver() *Resolver {
	return &Resolver{
		helpers: map[string]any{
			"json": jsonHelper,
			"now":  nowHelper,
		},
	}
}

// WithHelper returns a copy of r with one more helper.
func (r *Resolver) WithHelper(name string, helper any) *Resolver {
	helpers := make(map[string]any, len(r.helpers)+1)
	for k, v := range r.helpers {
		helpers[k] = v
	}

	helpers[name] = helper

	return &Resolver{helpers: helpers}
}

// Resolve renders source with ctx as the template data. Undefined references
// render as an empty string and values are HTML-escaped, except the output of
// the json helper.
func (r *Resolver) Resolve(source string, ctx Context) (string, error) {
	if !strings.Contains(source, "{{") {
		return source, nil
	}

	tpl, err := raymond.Parse(source)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %q: %w", source, err)
	}

	tpl.RegisterHelpers(r.helpers)

	data := map[string]any(ctx)
	if data == nil {
		data = map[string]any{}
	}

	out, err := tpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", source, err)
	}

	return out, nil
}

// jsonHelper output must be followed by a space when the template closes a
// JSON object right after it: "{{json x}}}" lexes as a triple-stash close.
func jsonHelper(value any) raymond.SafeString {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(value); err != nil {
		return raymond.SafeString("null")
	}

	return raymond.SafeString(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

func nowHelper() string {
	return time.Now().UTC().Format(time.RFC3339)
}
