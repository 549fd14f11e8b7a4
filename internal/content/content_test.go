package content

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Format
		wantErr error
	}{
		{input: "", want: Markdown},
		{input: "markdown", want: Markdown},
		{input: " HTML ", want: HTML},
		{input: "rtf", wantErr: ErrUnknownFormat},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(test.input)
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestImport(t *testing.T) {
	t.Parallel()

	t.Run("markdown passes through", func(t *testing.T) {
		t.Parallel()
		got, err := Import(Markdown, "  *as is*  ")
		require.NoError(t, err)
		assert.Equal(t, "  *as is*  ", got)
	})

	t.Run("html converts to markdown", func(t *testing.T) {
		t.Parallel()
		got, err := Import(HTML, "<p>Hello <strong>world</strong></p>")
		require.NoError(t, err)
		assert.Equal(t, "Hello **world**", got)
	})

	t.Run("html is sanitized first", func(t *testing.T) {
		t.Parallel()
		got, err := Import(HTML, "<html><body><p>hi</p><script>alert(1)</script></body></html>")
		require.NoError(t, err)
		assert.Equal(t, "hi", got)
	})
}

func TestRender(t *testing.T) {
	t.Parallel()

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()
		got, err := Render("# Title\n\nHello *world*")
		require.NoError(t, err)
		assert.Contains(t, string(got), `<h1 id="title">Title</h1>`)
		assert.Contains(t, string(got), "<em>world</em>")
	})

	t.Run("raw html is dropped", func(t *testing.T) {
		t.Parallel()
		got, err := Render("hi\n\n<script>alert(1)</script>\n\n<img src=x onerror=alert(1)>")
		require.NoError(t, err)
		assert.NotContains(t, string(got), "<script")
		assert.NotContains(t, string(got), "onerror")
		assert.Contains(t, string(got), "<p>hi</p>")
	})

	t.Run("dangerous links", func(t *testing.T) {
		t.Parallel()
		got, err := Render("[click](javascript:alert(1))")
		require.NoError(t, err)
		assert.NotContains(t, string(got), "javascript")
	})
}

func TestChain(t *testing.T) {
	t.Parallel()

	upper := func(in []byte) ([]byte, error) { return append(in, 'a'), nil }
	fail := func([]byte) ([]byte, error) { return nil, errors.New("boom") }

	got, err := Chain(upper, upper)([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "xaa", string(got))

	_, err = Chain(upper, fail, upper)([]byte("x"))
	require.EqualError(t, err, "boom")
}
