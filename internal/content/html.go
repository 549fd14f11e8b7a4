package content

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// maxConsecutiveBRs is the longest run of <br> elements kept by [ScrubHTML].
const maxConsecutiveBRs = 2

var (
	// nbspPattern matches both the HTML entity &nbsp; (case insensitive) and
	// the unicode non-breaking space character (U+00A0).
	nbspPattern = regexp.MustCompile("(?i)&nbsp;|\xc2\xa0")

	// codeLanguageClass matches the class goldmark puts on fenced code blocks.
	codeLanguageClass = regexp.MustCompile(`^language-[\w+#-]+$`)

	// checkboxType matches GFM task list items.
	checkboxType = regexp.MustCompile(`^checkbox$`)

	inlineSelector = strings.Join([]string{
		"a", "abbr", "b", "cite", "code", "em", "i", "mark", "q", "s",
		"small", "span", "strong", "sub", "sup", "u",
	}, ", ")
)

// NormalizeNBSP replaces non-breaking space entities and characters with
// regular spaces. Operates on raw input before HTML parsing.
func NormalizeNBSP() TransformerFunc {
	return func(input []byte) ([]byte, error) {
		return nbspPattern.ReplaceAll(input, []byte{' '}), nil
	}
}

// ExtractHTMLBody extracts just the body content from a full HTML document,
// as produced when pasting a saved page. Fragments pass through unchanged.
func ExtractHTMLBody() TransformerFunc {
	return func(input []byte) ([]byte, error) {
		if !bytes.Contains(bytes.ToLower(input), []byte("<body")) {
			return input, nil
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTML document: %w", err)
		}
		inner, err := doc.Find("body").Html()
		if err != nil {
			return nil, fmt.Errorf("failed to extract HTML body: %w", err)
		}
		return []byte(inner), nil
	}
}

// SanitizeHTML strips every tag and attribute not allowed in a post body.
func SanitizeHTML() TransformerFunc {
	policy := postPolicy()
	return func(input []byte) ([]byte, error) {
		return policy.SanitizeBytes(input), nil
	}
}

// postPolicy allows the markup goldmark produces for GitHub flavored
// Markdown. Differences from [bluemonday.UGCPolicy]:
//
//   - Links open in a new tab without a referrer
//   - No images (to avoid hot-linking and tracking pixels)
//   - Code blocks keep their language class for highlighting
func postPolicy() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()

	policy.AllowStandardAttributes()
	policy.AllowStandardURLs()
	policy.RequireNoReferrerOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	policy.AllowElements(
		"b", "blockquote", "br", "code", "del", "div", "em",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"hr", "i", "p", "pre", "s", "strong", "sub", "sup",
	)
	policy.AllowAttrs("href").OnElements("a")
	policy.AllowAttrs("class").Matching(codeLanguageClass).OnElements("code")
	policy.AllowAttrs("type").Matching(checkboxType).OnElements("input")
	policy.AllowAttrs("checked", "disabled").OnElements("input")
	policy.AllowLists()
	policy.AllowTables()

	return policy
}

// ScrubHTML removes empty inline elements and collapses runs of <br>
// elements. Should be applied after sanitization.
func ScrubHTML() TransformerFunc {
	return func(input []byte) ([]byte, error) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTML: %w", err)
		}
		body := doc.Find("body")
		removeEmptyInlineElements(body)
		collapseBRs(body)
		out, err := body.Html()
		if err != nil {
			return nil, fmt.Errorf("failed to render scrubbed HTML: %w", err)
		}
		return []byte(out), nil
	}
}

// removeEmptyInlineElements removes inline elements without text or child
// elements, repeating until nothing changes since a removal can empty the
// parent.
func removeEmptyInlineElements(sel *goquery.Selection) {
	for removed := true; removed; {
		removed = false
		sel.Find(inlineSelector).Each(func(_ int, el *goquery.Selection) {
			if strings.TrimSpace(el.Text()) == "" && el.Children().Length() == 0 {
				el.Remove()
				removed = true
			}
		})
	}
}

// collapseBRs keeps at most maxConsecutiveBRs <br> elements in a row,
// ignoring whitespace between them.
func collapseBRs(sel *goquery.Selection) {
	sel.Find("br").Each(func(_ int, br *goquery.Selection) {
		node := br.Get(0)
		if node.Parent == nil {
			return // removed as part of an earlier run
		}
		count := 1
		for sib := node.NextSibling; sib != nil; {
			next := sib.NextSibling
			switch {
			case sib.Type == html.TextNode && strings.TrimSpace(sib.Data) == "":
			case sib.Type == html.ElementNode && sib.Data == "br":
				if count++; count > maxConsecutiveBRs {
					sib.Parent.RemoveChild(sib)
				}
			default:
				return
			}
			sib = next
		}
	})
}
