package sse

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
)

// Render renders a component to a string for use as event data
func Render(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WrapForOOBSwap wraps HTML in a div with hx-swap-oob for out-of-band swaps
func WrapForOOBSwap(id, html string) string {
	return `<div id="` + id + `" hx-swap-oob="true">` + html + `</div>`
}
