// Package content converts post bodies between the stored and presented
// formats. Posts are stored as CommonMark Markdown; HTML is accepted on the way
// in (converted to Markdown) and produced on the way out, always sanitized.
package content

import (
	"fmt"
	"strings"
)

// Format is the markup a post body is submitted in.
type Format string

// Supported formats.
const (
	Markdown Format = "markdown"
	HTML     Format = "html"
)

// ErrUnknownFormat is returned by [ParseFormat] for unsupported formats.
var ErrUnknownFormat = fmt.Errorf("format must be %q or %q", Markdown, HTML)

// TransformerFunc modifies content, returning modified content or an error.
type TransformerFunc func(input []byte) ([]byte, error)

// Chain chains together a set of transformers, failing fast if any
// transformer in the chain errors.
func Chain(transformers ...TransformerFunc) TransformerFunc {
	return func(input []byte) (_ []byte, err error) {
		for _, transform := range transformers {
			if input, err = transform(input); err != nil {
				return nil, err
			}
		}
		return input, nil
	}
}

var (
	renderPipeline = Chain(MarkdownToHTML(), SanitizeHTML(), ScrubHTML())
	importPipeline = Chain(NormalizeNBSP(), ExtractHTMLBody(), SanitizeHTML(), ScrubHTML(), HTMLToMarkdown())
)

// ParseFormat resolves a client supplied format name. The empty string means
// [Markdown].
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", Markdown:
		return Markdown, nil
	case HTML:
		return HTML, nil
	default:
		return "", ErrUnknownFormat
	}
}

// Import converts body from format into the stored Markdown form.
func Import(format Format, body string) (string, error) {
	if format != HTML {
		return body, nil
	}
	out, err := importPipeline([]byte(body))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Render converts a stored Markdown body into sanitized HTML.
func Render(markdown string) ([]byte, error) {
	return renderPipeline([]byte(markdown))
}
