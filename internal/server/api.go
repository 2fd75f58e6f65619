package server

import (
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ministry-site/internal/auth"
	"ministry-site/internal/content"
	"ministry-site/internal/objstore"
	"ministry-site/internal/playback"
	"ministry-site/internal/source"
	"ministry-site/internal/store"
	"ministry-site/internal/view"
)

// Deps are the services the API is built from.
type Deps struct {
	DB      *store.DB
	Objects *objstore.Store
	Auth    *auth.Authenticator
	Player  *view.Player
	Handler *Handler
	Sources *source.Registry
	Logger  *slog.Logger
	// MaxUpload bounds the multipart request body; 0 means unlimited.
	MaxUpload int64
}

// API handles HTTP requests.
type API struct {
	db        *store.DB
	objects   *objstore.Store
	auth      *auth.Authenticator
	player    *view.Player
	handler   *Handler
	sources   *source.Registry
	log       *slog.Logger
	maxUpload int64
}

// NewAPI creates a new API handler.
func NewAPI(d Deps) *API {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	return &API{
		db:        d.DB,
		objects:   d.Objects,
		auth:      d.Auth,
		player:    d.Player,
		handler:   d.Handler,
		sources:   d.Sources,
		log:       log.With("component", "api"),
		maxUpload: d.MaxUpload,
	}
}

// HealthResponse is the health check reply.
type HealthResponse struct {
	Status        string `json:"status"`
	SchemaVersion uint   `json:"schema_version"`
}

// PostResponse is a post with its body rendered to HTML.
type PostResponse struct {
	store.Post
	HTML template.HTML `json:"html"`
}

// SubscribeRequest is the newsletter signup form.
type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"max=200"`
}

// UnsubscribeRequest is the newsletter opt-out form.
type UnsubscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ContactRequest is the contact form.
type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"max=300"`
	Message string `json:"message" binding:"required,max=10000"`
}

// Health handles GET /health.
func (a *API) Health(c *gin.Context) {
	v, err := a.db.Version(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", SchemaVersion: v})
}

// ListPosts handles GET /api/posts. Drafts are never listed.
func (a *API) ListPosts(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}
	published := true
	q.Published = &published
	if q.Sort == "" {
		q.Sort = "-published_at"
	}
	posts, err := a.db.ListPosts(c.Request.Context(), q)
	respondList(a, c, posts, err)
}

// GetPost handles GET /api/posts/:slug.
func (a *API) GetPost(c *gin.Context) {
	post, err := a.db.GetPostBySlug(c.Request.Context(), c.Param("slug"), true)
	if err != nil {
		a.fail(c, err)
		return
	}
	html, err := content.Render(content.Format(post.Format), post.Content)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, PostResponse{Post: post, HTML: template.HTML(html)})
}

// ListCategories handles GET /api/categories.
func (a *API) ListCategories(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}
	cats, err := a.db.ListCategories(c.Request.Context(), q)
	respondList(a, c, cats, err)
}

// ListResources handles GET /api/resources. Only published resources are listed.
func (a *API) ListResources(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}
	published := true
	q.Published = &published
	res, err := a.db.ListResources(c.Request.Context(), q)
	respondList(a, c, res, err)
}

// PlayResource handles POST /api/resources/:id/play. It selects a published
// audio resource in the floating player.
func (a *API) PlayResource(c *gin.Context) {
	res, err := a.db.GetResource(c.Request.Context(), c.Param("id"))
	if err == nil && !res.Published {
		err = store.ErrNotFound
	}
	if err != nil {
		a.fail(c, err)
		return
	}
	if res.Kind != store.KindAudio {
		badRequest(c, "resource is not audio")
		return
	}

	a.log.Info("play resource", "id", res.ID, "title", res.Title)
	model, err := a.handler.Handle(Command{Type: CommandPlay, Track: &playback.Track{
		ID:          res.ID,
		URL:         res.URL,
		Title:       res.Title,
		Description: res.Description,
		Thumbnail:   res.Thumbnail,
	}})
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, model)
}

// ListSocialLinks handles GET /api/social-links. Inactive links are hidden.
func (a *API) ListSocialLinks(c *gin.Context) {
	active := true
	links, err := a.db.ListSocialLinks(c.Request.Context(), store.Query{Active: &active})
	respondList(a, c, links, err)
}

// Subscribe handles POST /api/newsletter/subscribe.
func (a *API) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := a.db.Subscribe(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.log.Info("newsletter subscribe", "id", sub.ID)
	c.JSON(http.StatusOK, Response{Status: "subscribed"})
}

// Unsubscribe handles POST /api/newsletter/unsubscribe. Unknown addresses are
// accepted so the endpoint does not reveal who is subscribed.
func (a *API) Unsubscribe(c *gin.Context) {
	var req UnsubscribeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := a.db.Unsubscribe(c.Request.Context(), req.Email); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Status: "unsubscribed"})
}

// Contact handles POST /api/contact.
func (a *API) Contact(c *gin.Context) {
	var req ContactRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := a.db.CreateMessage(c.Request.Context(), store.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		a.fail(c, err)
		return
	}
	a.log.Info("contact message received", "id", msg.ID)
	c.JSON(http.StatusCreated, Response{Status: "received"})
}

// parseQuery reads the listing parameters shared by every collection.
func parseQuery(c *gin.Context) (store.Query, bool) {
	q := store.Query{
		Search:     c.Query("q"),
		CategoryID: c.Query("category"),
		Kind:       c.Query("kind"),
		Sort:       c.Query("sort"),
		Unread:     c.Query("unread") == "true",
	}

	ints := []struct {
		name string
		dst  *int
	}{{"limit", &q.Limit}, {"offset", &q.Offset}}
	for _, p := range ints {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "invalid "+p.name)
			return q, false
		}
		*p.dst = n
	}

	bools := []struct {
		name string
		dst  **bool
	}{{"published", &q.Published}, {"active", &q.Active}}
	for _, p := range bools {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "invalid "+p.name)
			return q, false
		}
		*p.dst = &b
	}
	return q, true
}

func respondList[T any](a *API, c *gin.Context, items []T, err error) {
	if err != nil {
		a.fail(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, ListResponse[T]{Count: len(items), Items: items})
}

func respondItem[T any](a *API, c *gin.Context, status int, item T, err error) {
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(status, item)
}

// bindJSON binds the body or writes a 400.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			badRequest(c, "empty request body")
		} else {
			badRequest(c, "invalid request: "+err.Error())
		}
		return false
	}
	return true
}
