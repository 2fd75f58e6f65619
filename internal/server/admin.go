package server

import (
	"context"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"ministry-site/internal/media"
	"ministry-site/internal/store"
)

// LoginRequest is the admin sign-in form.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// DashboardResponse summarizes the site for the admin landing page.
type DashboardResponse struct {
	Counts         store.Counts           `json:"counts"`
	RecentPosts    []store.Post           `json:"recent_posts"`
	UnreadMessages []store.ContactMessage `json:"unread_messages"`
}

// PostInput is the editable part of a post.
type PostInput struct {
	Title      string `json:"title" binding:"required,max=300"`
	Slug       string `json:"slug" binding:"max=300"`
	Excerpt    string `json:"excerpt"`
	Content    string `json:"content"`
	Format     string `json:"format" binding:"omitempty,oneof=markdown html"`
	CoverImage string `json:"cover_image"`
	CategoryID string `json:"category_id"`
	Author     string `json:"author"`
	Published  bool   `json:"published"`
}

func (in PostInput) post(id string) store.Post {
	return store.Post{
		ID:         id,
		Title:      in.Title,
		Slug:       in.Slug,
		Excerpt:    in.Excerpt,
		Content:    in.Content,
		Format:     in.Format,
		CoverImage: in.CoverImage,
		CategoryID: in.CategoryID,
		Author:     in.Author,
		Published:  in.Published,
	}
}

// CategoryInput is the editable part of a category.
type CategoryInput struct {
	Name        string `json:"name" binding:"required,max=200"`
	Slug        string `json:"slug" binding:"max=200"`
	Description string `json:"description"`
}

// ResourceInput is the editable part of a resource.
type ResourceInput struct {
	Title           string `json:"title" binding:"required,max=300"`
	Description     string `json:"description"`
	Kind            string `json:"kind" binding:"required,oneof=audio video document link"`
	URL             string `json:"url" binding:"required"`
	Thumbnail       string `json:"thumbnail"`
	CategoryID      string `json:"category_id"`
	DurationSeconds int    `json:"duration_seconds" binding:"min=0"`
	Published       bool   `json:"published"`
}

func (in ResourceInput) resource(id string) store.Resource {
	return store.Resource{
		ID:              id,
		Title:           in.Title,
		Description:     in.Description,
		Kind:            in.Kind,
		URL:             in.URL,
		Thumbnail:       in.Thumbnail,
		CategoryID:      in.CategoryID,
		DurationSeconds: in.DurationSeconds,
		Published:       in.Published,
	}
}

// SubscriberInput is what an admin may change on a subscriber.
type SubscriberInput struct {
	Name   string `json:"name" binding:"max=200"`
	Active *bool  `json:"active" binding:"required"`
}

// ReadInput marks a message read or unread.
type ReadInput struct {
	Read *bool `json:"read" binding:"required"`
}

// SocialInput is the editable part of a social link.
type SocialInput struct {
	Platform string `json:"platform" binding:"required,max=100"`
	URL      string `json:"url" binding:"required,url"`
	Icon     string `json:"icon"`
	Active   *bool  `json:"active"`
}

// MoveInput moves a social link one place up or down.
type MoveInput struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

// Login handles POST /api/admin/login.
func (a *API) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	sess, err := a.auth.Login(req.Username, req.Password)
	if err != nil {
		a.log.Warn("admin login failed", "username", req.Username, "ip", c.ClientIP())
		a.fail(c, err)
		return
	}
	a.log.Info("admin login", "username", sess.Username)
	c.JSON(http.StatusOK, sess)
}

// Dashboard handles GET /api/admin/dashboard.
func (a *API) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	counts, err := a.db.Counts(ctx)
	if err != nil {
		a.fail(c, err)
		return
	}
	posts, err := a.db.ListPosts(ctx, store.Query{Sort: "-updated_at", Limit: 5})
	if err != nil {
		a.fail(c, err)
		return
	}
	msgs, err := a.db.ListMessages(ctx, store.Query{Unread: true, Limit: 5})
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, DashboardResponse{
		Counts:         counts,
		RecentPosts:    nonNil(posts),
		UnreadMessages: nonNil(msgs),
	})
}

// Posts

func (a *API) AdminListPosts(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}
	if q.Sort == "" {
		q.Sort = "-updated_at"
	}
	posts, err := a.db.ListPosts(c.Request.Context(), q)
	respondList(a, c, posts, err)
}

func (a *API) AdminGetPost(c *gin.Context) {
	post, err := a.db.GetPost(c.Request.Context(), c.Param("id"))
	respondItem(a, c, http.StatusOK, post, err)
}

func (a *API) CreatePost(c *gin.Context) {
	var in PostInput
	if !bindJSON(c, &in) {
		return
	}
	post, err := a.db.CreatePost(c.Request.Context(), in.post(""))
	if err == nil {
		a.log.Info("post created", "id", post.ID, "slug", post.Slug)
	}
	respondItem(a, c, http.StatusCreated, post, err)
}

func (a *API) UpdatePost(c *gin.Context) {
	var in PostInput
	if !bindJSON(c, &in) {
		return
	}
	post, err := a.db.UpdatePost(c.Request.Context(), in.post(c.Param("id")))
	respondItem(a, c, http.StatusOK, post, err)
}

func (a *API) DeletePost(c *gin.Context) {
	a.respondDeleted(c, a.db.DeletePost(c.Request.Context(), c.Param("id")))
}

// Categories

func (a *API) AdminGetCategory(c *gin.Context) {
	cat, err := a.db.GetCategory(c.Request.Context(), c.Param("id"))
	respondItem(a, c, http.StatusOK, cat, err)
}

func (a *API) CreateCategory(c *gin.Context) {
	var in CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	cat, err := a.db.CreateCategory(c.Request.Context(), store.Category{
		Name: in.Name, Slug: in.Slug, Description: in.Description,
	})
	respondItem(a, c, http.StatusCreated, cat, err)
}

func (a *API) UpdateCategory(c *gin.Context) {
	var in CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	cat, err := a.db.UpdateCategory(c.Request.Context(), store.Category{
		ID: c.Param("id"), Name: in.Name, Slug: in.Slug, Description: in.Description,
	})
	respondItem(a, c, http.StatusOK, cat, err)
}

func (a *API) DeleteCategory(c *gin.Context) {
	a.respondDeleted(c, a.db.DeleteCategory(c.Request.Context(), c.Param("id")))
}

// Resources

func (a *API) AdminListResources(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}
	res, err := a.db.ListResources(c.Request.Context(), q)
	respondList(a, c, res, err)
}

func (a *API) AdminGetResource(c *gin.Context) {
	res, err := a.db.GetResource(c.Request.Context(), c.Param("id"))
	respondItem(a, c, http.StatusOK, res, err)
}

func (a *API) CreateResource(c *gin.Context) {
	var in ResourceInput
	if !bindJSON(c, &in) {
		return
	}
	res := in.resource("")
	a.fillDuration(c.Request.Context(), &res)
	res, err := a.db.CreateResource(c.Request.Context(), res)
	if err == nil {
		a.log.Info("resource created", "id", res.ID, "kind", res.Kind)
	}
	respondItem(a, c, http.StatusCreated, res, err)
}

func (a *API) UpdateResource(c *gin.Context) {
	var in ResourceInput
	if !bindJSON(c, &in) {
		return
	}
	res := in.resource(c.Param("id"))
	a.fillDuration(c.Request.Context(), &res)
	res, err := a.db.UpdateResource(c.Request.Context(), res)
	respondItem(a, c, http.StatusOK, res, err)
}

func (a *API) DeleteResource(c *gin.Context) {
	a.respondDeleted(c, a.db.DeleteResource(c.Request.Context(), c.Param("id")))
}

// fillDuration probes uploaded audio when no duration was given. Failures only
// leave the duration unset.
func (a *API) fillDuration(ctx context.Context, r *store.Resource) {
	if r.Kind != store.KindAudio || r.DurationSeconds > 0 {
		return
	}
	loc, err := a.sources.Resolve(r.URL)
	if err != nil || !loc.Local() {
		return
	}
	f, obj, err := a.objects.Open(ctx, loc.ObjectPath)
	if err != nil {
		a.log.Debug("duration probe skipped", "path", loc.ObjectPath, "error", err)
		return
	}
	d, err := media.Probe(obj.ContentType, f)
	if err != nil {
		a.log.Debug("duration probe failed", "path", loc.ObjectPath, "error", err)
		return
	}
	r.DurationSeconds = int(math.Round(d.Seconds()))
}

// Subscribers

func (a *API) AdminListSubscribers(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}
	subs, err := a.db.ListSubscribers(c.Request.Context(), q)
	respondList(a, c, subs, err)
}

func (a *API) AdminGetSubscriber(c *gin.Context) {
	sub, err := a.db.GetSubscriber(c.Request.Context(), c.Param("id"))
	respondItem(a, c, http.StatusOK, sub, err)
}

func (a *API) UpdateSubscriber(c *gin.Context) {
	var in SubscriberInput
	if !bindJSON(c, &in) {
		return
	}
	sub, err := a.db.UpdateSubscriber(c.Request.Context(), store.Subscriber{
		ID: c.Param("id"), Name: in.Name, Active: *in.Active,
	})
	respondItem(a, c, http.StatusOK, sub, err)
}

func (a *API) DeleteSubscriber(c *gin.Context) {
	a.respondDeleted(c, a.db.DeleteSubscriber(c.Request.Context(), c.Param("id")))
}

// Messages

func (a *API) AdminListMessages(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}
	msgs, err := a.db.ListMessages(c.Request.Context(), q)
	respondList(a, c, msgs, err)
}

func (a *API) AdminGetMessage(c *gin.Context) {
	msg, err := a.db.GetMessage(c.Request.Context(), c.Param("id"))
	respondItem(a, c, http.StatusOK, msg, err)
}

func (a *API) MarkMessageRead(c *gin.Context) {
	var in ReadInput
	if !bindJSON(c, &in) {
		return
	}
	msg, err := a.db.MarkMessageRead(c.Request.Context(), c.Param("id"), *in.Read)
	respondItem(a, c, http.StatusOK, msg, err)
}

func (a *API) DeleteMessage(c *gin.Context) {
	a.respondDeleted(c, a.db.DeleteMessage(c.Request.Context(), c.Param("id")))
}

// Social links

func (a *API) AdminListSocialLinks(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}
	links, err := a.db.ListSocialLinks(c.Request.Context(), q)
	respondList(a, c, links, err)
}

func (a *API) CreateSocialLink(c *gin.Context) {
	var in SocialInput
	if !bindJSON(c, &in) {
		return
	}
	link, err := a.db.CreateSocialLink(c.Request.Context(), store.SocialLink{
		Platform: in.Platform, URL: in.URL, Icon: in.Icon, Active: in.Active == nil || *in.Active,
	})
	respondItem(a, c, http.StatusCreated, link, err)
}

func (a *API) UpdateSocialLink(c *gin.Context) {
	var in SocialInput
	if !bindJSON(c, &in) {
		return
	}
	link, err := a.db.UpdateSocialLink(c.Request.Context(), store.SocialLink{
		ID: c.Param("id"), Platform: in.Platform, URL: in.URL, Icon: in.Icon, Active: in.Active == nil || *in.Active,
	})
	respondItem(a, c, http.StatusOK, link, err)
}

func (a *API) MoveSocialLink(c *gin.Context) {
	var in MoveInput
	if !bindJSON(c, &in) {
		return
	}
	delta := 1
	if in.Direction == "up" {
		delta = -1
	}
	links, err := a.db.MoveSocialLink(c.Request.Context(), c.Param("id"), delta)
	respondList(a, c, links, err)
}

func (a *API) DeleteSocialLink(c *gin.Context) {
	a.respondDeleted(c, a.db.DeleteSocialLink(c.Request.Context(), c.Param("id")))
}

func (a *API) respondDeleted(c *gin.Context, err error) {
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Status: "deleted"})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
