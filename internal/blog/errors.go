package blog

import (
	"errors"

	"connectrpc.com/connect"
)

// Public messages carried by the errors returned from [Service]. They are
// safe to show to API clients verbatim.
const (
	MsgMissingCredentials = "Missing username or password"
	MsgUserExists         = "User already exists"
	MsgUnauthorized       = "Unauthorized"
	MsgMissingPost        = "Missing title or content"
	MsgPostNotFound       = "Post not found"
)

func publicError(code connect.Code, msg string) error {
	return connect.NewError(code, errors.New(msg))
}

func internalError(err error) error {
	return connect.NewError(connect.CodeInternal, err)
}

// PostNotFound returns the error reported for unknown or unparsable post IDs.
func PostNotFound() error {
	return publicError(connect.CodeNotFound, MsgPostNotFound)
}
