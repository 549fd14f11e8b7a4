package content

import (
	"bytes"
	"fmt"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// HTMLToMarkdown converts an HTML input into CommonMark-compatible Markdown.
func HTMLToMarkdown() TransformerFunc {
	conv := converter.NewConverter(
		converter.WithEscapeMode(converter.EscapeModeSmart),
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithEmDelimiter("_"),
				commonmark.WithHorizontalRule("---"),
				commonmark.WithLinkEmptyContentBehavior(commonmark.LinkBehaviorSkip),
				commonmark.WithLinkEmptyHrefBehavior(commonmark.LinkBehaviorSkip),
			),
			strikethrough.NewStrikethroughPlugin(),
			table.NewTablePlugin(),
		),
	)

	return func(input []byte) ([]byte, error) {
		out, err := conv.ConvertReader(bytes.NewReader(input))
		if err != nil {
			return nil, fmt.Errorf("failed to convert HTML to markdown: %w", err)
		}
		return out, nil
	}
}

// MarkdownToHTML converts a GitHub flavored Markdown input into HTML. Raw HTML
// in the input is dropped, but the produced HTML is still _not_ sanitized.
func MarkdownToHTML() TransformerFunc {
	markdown := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	return func(input []byte) ([]byte, error) {
		output := &bytes.Buffer{}
		if err := markdown.Convert(input, output); err != nil {
			return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
		}
		return output.Bytes(), nil
	}
}
