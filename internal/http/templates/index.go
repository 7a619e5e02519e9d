package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// IndexPageData contains the values rendered on the suggestion playground page.
type IndexPageData struct {
	Title       string
	Placeholder string
	ScriptURL   string
}

// IndexPage renders the text input page that drives the suggestion endpoints.
func IndexPage(data IndexPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		parts := []string{
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`, templ.EscapeString(data.Title), `</title></head><body>`,
			`<main><h1>`, templ.EscapeString(data.Title), `</h1>`,
			`<textarea id="typed-text" rows="4" cols="60" placeholder="`, templ.EscapeString(data.Placeholder), `"></textarea>`,
			`<ol id="suggestions"></ol></main>`,
			`<script src="`, templ.EscapeString(data.ScriptURL), `" defer></script>`,
			`</body></html>`,
		}

		for _, part := range parts {
			if _, err := io.WriteString(w, part); err != nil {
				return err
			}
		}
		return nil
	})
}
