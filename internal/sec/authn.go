package sec

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/authn"
	"connectrpc.com/connect"
	"github.com/labstack/echo/v4"

	"github.com/stolasapp/scribe/internal/storage/db"
)

// Realm is advertised in the WWW-Authenticate header of rejected requests.
const Realm = "scribe"

// Authenticate resolves the logged in user from the Basic Auth header of req.
// If the information is missing or invalid, an Unauthenticated ConnectRPC
// error is returned.
func (c *Credentials) Authenticate(ctx context.Context, req *http.Request) (db.User, error) {
	username, password, ok := req.BasicAuth()
	if !ok {
		return db.User{}, authn.Errorf("invalid authorization header")
	}
	user, err := c.Verify(ctx, username, password)
	if errors.Is(err, ErrInvalidCredentials) {
		return user, authn.Errorf("invalid username or password")
	}
	return user, err
}

// RequireUser returns echo middleware that authenticates every request with
// creds. Authenticated users are bound to the request context (see
// [GetAuthenticatedUser]); everything else is rejected with a 401.
func RequireUser(creds *Credentials) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			user, err := creds.Authenticate(req.Context(), req)
			if connect.CodeOf(err) == connect.CodeUnauthenticated {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Basic realm="`+Realm+`"`)
				return echo.NewHTTPError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized)).
					SetInternal(err)
			} else if err != nil {
				return err
			}
			c.SetRequest(req.WithContext(SetAuthenticatedUser(req.Context(), user)))
			return next(c)
		}
	}
}

// GetAuthenticatedUser returns the user information for the authenticated user.
// Returns a zero-value User if the context has no authenticated user or if
// the stored value is not a User (should only happen if middleware is misconfigured).
func GetAuthenticatedUser(ctx context.Context) db.User {
	if user, ok := authn.GetInfo(ctx).(db.User); ok {
		return user
	}
	return db.User{}
}

// SetAuthenticatedUser sets the user information for an authenticated user.
// [RequireUser] injects this information; this function is also a
// convenience for testing.
func SetAuthenticatedUser(ctx context.Context, user db.User) context.Context {
	return authn.SetInfo(ctx, user)
}
