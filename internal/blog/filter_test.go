package blog

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/scribe/internal/storage/db"
)

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func TestCompileFilter(t *testing.T) {
	t.Parallel()

	env, err := newFilterEnv()
	require.NoError(t, err)

	tests := []struct {
		name    string
		filter  string
		wantErr string
	}{
		{
			name:   "valid boolean filter",
			filter: "true",
		},
		{
			name:   "valid field access filter",
			filter: "this.title != ''",
		},
		{
			name:   "valid string extension filter",
			filter: "this.content.trim().startsWith('#')",
		},
		{
			name:    "non-boolean filter",
			filter:  "this.id",
			wantErr: "must return bool",
		},
		{
			name:    "syntax error",
			filter:  "this.title ==",
			wantErr: "failed to compile filter",
		},
		{
			name:    "unknown variable",
			filter:  "that.id == 1",
			wantErr: "failed to compile filter",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			prog, err := compileFilter(env, test.filter)
			if test.wantErr != "" {
				require.ErrorContains(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, prog)
		})
	}
}

func TestApplyFilter(t *testing.T) {
	t.Parallel()

	env, err := newFilterEnv()
	require.NoError(t, err)

	posts := []db.Post{
		{ID: 1, Title: "one", Content: "# heading", UserID: 7},
		{ID: 2, Title: "two", Content: "plain", UserID: 8},
	}

	got, err := applyFilter(t.Context(), env, "", posts)
	require.NoError(t, err)
	assert.Equal(t, posts, got)

	got, err = applyFilter(t.Context(), env, "this.id > 1 && this.user_id == 8", posts)
	require.NoError(t, err)
	assert.Equal(t, posts[1:], got)

	got, err = applyFilter(t.Context(), env, "this.content.startsWith('#')", posts)
	require.NoError(t, err)
	assert.Equal(t, posts[:1], got)
}

func TestApplyFilter_Budget(t *testing.T) {
	t.Parallel()

	env, err := newFilterEnv()
	require.NoError(t, err)
	posts := []db.Post{{ID: 1, Title: "one", Content: "body", UserID: 1}}

	t.Run("too long", func(t *testing.T) {
		t.Parallel()
		filter := "this.title == '" + strings.Repeat("x", maxFilterLength) + "'"
		_, err := applyFilter(t.Context(), env, filter, posts)
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	})

	t.Run("too expensive", func(t *testing.T) {
		t.Parallel()
		list := "[" + strings.TrimSuffix(strings.Repeat("0,", 100), ",") + "]"
		filter := list + ".all(a, " + list + ".all(b, " + list + ".all(c, this.id > 0)))"
		require.Less(t, len(filter), maxFilterLength)

		start := time.Now()
		_, err := applyFilter(t.Context(), env, filter, posts)
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
		assert.ErrorContains(t, err, "cost limit exceeded")
		assert.Less(t, time.Since(start), filterTimeout)
	})
}
