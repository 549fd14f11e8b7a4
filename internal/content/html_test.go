package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractHTMLBody(t *testing.T) {
	t.Parallel()
	extract := ExtractHTMLBody()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "extracts body content",
			input: "<html><head><title>Test</title></head><body><p>Hello</p></body></html>",
			want:  "<p>Hello</p>",
		},
		{
			name:  "returns fragment unchanged",
			input: "<p>Just a paragraph</p>",
			want:  "<p>Just a paragraph</p>",
		},
		{
			name:  "extracts body discarding attributes",
			input: `<BODY class="main"><div>Content</div></BODY>`,
			want:  "<div>Content</div>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := extract([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestNormalizeNBSP(t *testing.T) {
	t.Parallel()
	normalize := NormalizeNBSP()

	got, err := normalize([]byte("a&nbsp;b&NBSP;c d"))
	require.NoError(t, err)
	assert.Equal(t, "a b c d", string(got))
}

func TestSanitizeHTML(t *testing.T) {
	t.Parallel()
	sanitize := SanitizeHTML()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips event handlers",
			input: `<p onclick="steal()">hi</p>`,
			want:  "<p>hi</p>",
		},
		{
			name:  "drops scripts with their content",
			input: "<p>hi</p><script>alert(1)</script>",
			want:  "<p>hi</p>",
		},
		{
			name:  "drops images",
			input: `<p><img src="https://example.com/pixel.png">text</p>`,
			want:  "<p>text</p>",
		},
		{
			name:  "keeps code language",
			input: `<pre><code class="language-go">x</code></pre>`,
			want:  `<pre><code class="language-go">x</code></pre>`,
		},
		{
			name:  "drops other classes",
			input: `<code class="evil">x</code>`,
			want:  `<code>x</code>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := sanitize([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}

	t.Run("external links", func(t *testing.T) {
		t.Parallel()
		got, err := sanitize([]byte(`<a href="https://example.com">x</a>`))
		require.NoError(t, err)
		assert.Contains(t, string(got), `href="https://example.com"`)
		assert.Contains(t, string(got), `target="_blank"`)
		assert.Contains(t, string(got), "noreferrer")
	})

	t.Run("javascript links", func(t *testing.T) {
		t.Parallel()
		got, err := sanitize([]byte(`<a href="javascript:alert(1)">x</a>`))
		require.NoError(t, err)
		assert.NotContains(t, string(got), "javascript")
	})
}

func TestScrubHTML(t *testing.T) {
	t.Parallel()
	scrub := ScrubHTML()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapses br runs",
			input: "<p>a<br><br><br><br>b</p>",
			want:  "<p>a<br/><br/>b</p>",
		},
		{
			name:  "collapses br runs separated by whitespace",
			input: "<p>a<br>\n<br>\n<br>\n<br>b</p>",
			want:  "<p>a<br/>\n<br/>\n\nb</p>",
		},
		{
			name:  "keeps two brs",
			input: "<p>a<br><br>b</p>",
			want:  "<p>a<br/><br/>b</p>",
		},
		{
			name:  "removes empty inline elements",
			input: "<p>a<em> </em>b</p>",
			want:  "<p>ab</p>",
		},
		{
			name:  "removes nested empty inline elements",
			input: "<p>a<strong><em></em></strong>b</p>",
			want:  "<p>ab</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := scrub([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
