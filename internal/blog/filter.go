package blog

import (
	"context"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"

	"github.com/stolasapp/scribe/internal/storage/db"
)

// thisVar is the CEL variable bound to each post while filtering.
const thisVar = "this"

// Filters come from anonymous callers. filterCostLimit bounds a single
// evaluation and filterTimeout bounds the whole listing.
const (
	maxFilterLength = 1024
	filterCostLimit = 1_000_000
	filterTimeout   = 2 * time.Second
	interruptEveryN = 100
)

func newFilterEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		ext.Strings(),
		cel.ParserExpressionSizeLimit(maxFilterLength),
		cel.Variable(thisVar, cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter CEL environment: %w", err)
	}
	return env, nil
}

func compileFilter(env *cel.Env, filter string) (cel.Program, error) {
	ast, issues := env.Compile(filter)
	if err := issues.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile filter: %w", err)
	}

	outType := ast.OutputType()
	if !outType.IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter expression must return %s but got %s", cel.BoolType, outType)
	}

	return env.Program(ast,
		cel.CostLimit(filterCostLimit),
		cel.InterruptCheckFrequency(interruptEveryN),
	)
}

// applyFilter keeps the posts for which filter evaluates to true. An empty
// filter keeps everything.
func applyFilter(ctx context.Context, env *cel.Env, filter string, posts []db.Post) ([]db.Post, error) {
	if filter == "" {
		return posts, nil
	}
	prog, err := compileFilter(env, filter)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	ctx, cancel := context.WithTimeout(ctx, filterTimeout)
	defer cancel()

	out := make([]db.Post, 0, len(posts))
	for _, post := range posts {
		val, _, err := prog.ContextEval(ctx, map[string]any{
			thisVar: postFields(post),
		})
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		keep, ok := val.Value().(bool)
		if !ok {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("expected bool, got %T", val.Value()))
		}
		if keep {
			out = append(out, post)
		}
	}
	return out, nil
}

func postFields(post db.Post) map[string]any {
	return map[string]any{
		"id":      post.ID,
		"title":   post.Title,
		"content": post.Content,
		"user_id": post.UserID,
	}
}
