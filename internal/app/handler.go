package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/labstack/echo/v4"

	"github.com/stolasapp/scribe/internal/blog"
	"github.com/stolasapp/scribe/internal/sec"
	"github.com/stolasapp/scribe/internal/storage/db"
)

// Response messages.
const (
	msgWelcome        = "Welcome to the Simple Blogging Platform!"
	msgUserCreated    = "User created successfully"
	msgLoggedIn       = "Logged in successfully"
	msgPostCreated    = "Post created successfully"
	msgPostUpdated    = "Post updated successfully"
	msgPostDeleted    = "Post deleted successfully"
	msgInvalidRequest = "Invalid request body"
)

const (
	headerETag        = "ETag"
	headerIfNoneMatch = "If-None-Match"
)

type handler struct {
	svc *blog.Service
}

func (h handler) register(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/", h.welcome)
	e.POST("/signup", h.signup)
	e.POST("/login", h.login)

	posts := e.Group("/posts")
	posts.GET("", h.listPosts)
	posts.POST("", h.createPost, auth)
	posts.GET("/:id", h.getPost)
	posts.GET("/:id/html", h.renderPost)
	posts.PUT("/:id", h.updatePost, auth)
	posts.DELETE("/:id", h.deletePost, auth)
}

type messageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Format  string `json:"format"`
}

type updatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Format  string  `json:"format"`
}

type postResponse struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func newPostResponse(post db.Post) postResponse {
	return postResponse{
		ID:      post.ID,
		Title:   post.Title,
		Content: post.Content,
	}
}

func (h handler) welcome(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: msgWelcome})
}

func (h handler) signup(c echo.Context) error {
	var req credentialsRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	_, err := h.svc.Signup(c.Request().Context(), blog.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: msgUserCreated})
}

func (h handler) login(c echo.Context) error {
	var req credentialsRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	_, err := h.svc.Login(c.Request().Context(), blog.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msgLoggedIn})
}

func (h handler) listPosts(c echo.Context) error {
	posts, err := h.svc.ListPosts(c.Request().Context(), c.QueryParam("filter"))
	if err != nil {
		return toHTTPError(err)
	}
	out := make([]postResponse, len(posts))
	for i, post := range posts {
		out[i] = newPostResponse(post)
	}
	return jsonWithETag(c, out)
}

func (h handler) getPost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	post, err := h.svc.GetPost(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return jsonWithETag(c, newPostResponse(post))
}

func (h handler) renderPost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	out, err := h.svc.RenderPost(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return blobWithETag(c, echo.MIMETextHTMLCharsetUTF8, out)
}

func (h handler) createPost(c echo.Context) error {
	var req createPostRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	post, err := h.svc.CreatePost(ctx, sec.GetAuthenticatedUser(ctx), blog.PostInput{
		Title:   req.Title,
		Content: req.Content,
		Format:  req.Format,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: msgPostCreated, ID: post.ID})
}

func (h handler) updatePost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	user := sec.GetAuthenticatedUser(ctx)
	if _, err = h.svc.OwnedPost(ctx, id, user); err != nil {
		return toHTTPError(err)
	}
	var req updatePostRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}
	_, err = h.svc.UpdatePost(ctx, user, id, blog.PostPatch{
		Title:   req.Title,
		Content: req.Content,
		Format:  req.Format,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msgPostUpdated})
}

func (h handler) deletePost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err = h.svc.DeletePost(ctx, sec.GetAuthenticatedUser(ctx), id); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msgPostDeleted})
}

// bindBody decodes the JSON request body into dst. An empty body leaves dst
// untouched. Oversized bodies keep their 413 from the body limit.
func bindBody(c echo.Context, dst any) error {
	err := (&echo.DefaultBinder{}).BindBody(c, dst)
	if err == nil {
		return nil
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusRequestEntityTooLarge {
		return err
	}
	return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest).SetInternal(err)
}

// postID parses the :id path parameter. Anything that is not an integer
// cannot name a post.
func postID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, toHTTPError(blog.PostNotFound())
	}
	return id, nil
}

func jsonWithETag(c echo.Context, val any) error {
	body, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return blobWithETag(c, echo.MIMEApplicationJSON, body)
}

// blobWithETag writes body tagged with its hash, or an empty 304 if the
// client already holds it.
func blobWithETag(c echo.Context, contentType string, body []byte) error {
	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
	header := c.Response().Header()
	header.Set(headerETag, etag)
	header.Set(echo.HeaderCacheControl, "no-cache")
	if etagMatches(c.Request().Header.Get(headerIfNoneMatch), etag) {
		return c.NoContent(http.StatusNotModified)
	}
	return c.Blob(http.StatusOK, contentType, body)
}

// etagMatches implements the weak comparison used for If-None-Match.
func etagMatches(header, etag string) bool {
	for candidate := range strings.SplitSeq(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
