package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(context.Background(), t.TempDir())
	require.NoError(t, err, "Failed to open database")
	t.Cleanup(func() { d.Close() })

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	d.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return d
}

func ptr[T any](v T) *T { return &v }

func TestOpen_MigratesOnce(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	d, err := Open(ctx, dir)
	require.NoError(t, err)
	v, err := d.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, uint(1), v)
	require.NoError(t, d.Close())

	d, err = Open(ctx, dir)
	require.NoError(t, err, "Reopening an up-to-date database should not fail")
	defer d.Close()
	require.NoError(t, d.Migrate())
}

func TestCategories(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	c, err := d.CreateCategory(ctx, Category{Name: "  Sermones Dominicales ", Description: "Sunday"})
	require.NoError(t, err)
	require.Equal(t, "Sermones Dominicales", c.Name)
	require.Equal(t, "sermones-dominicales", c.Slug)
	require.NotEmpty(t, c.ID)

	_, err = d.CreateCategory(ctx, Category{Name: "Sermones Dominicales"})
	require.ErrorIs(t, err, ErrConflict, "Category names are unique")

	_, err = d.CreateCategory(ctx, Category{Name: "   "})
	require.ErrorIs(t, err, ErrInvalid)

	b, err := d.CreateCategory(ctx, Category{Name: "Bible Study"})
	require.NoError(t, err)

	list, err := d.ListCategories(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Bible Study", list[0].Name, "Categories are listed by name")

	b.Name = "Bible Study Notes"
	b.Slug = ""
	b, err = d.UpdateCategory(ctx, b)
	require.NoError(t, err)
	require.Equal(t, "bible-study-notes", b.Slug)

	got, err := d.GetCategory(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, b, got)

	require.NoError(t, d.DeleteCategory(ctx, b.ID))
	require.ErrorIs(t, d.DeleteCategory(ctx, b.ID), ErrNotFound)
	_, err = d.GetCategory(ctx, b.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPosts_CreateDerivesFields(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	p, err := d.CreatePost(ctx, Post{
		Title:     "Walking in Faith",
		Content:   "Faith is the **substance** of things hoped for.",
		Published: true,
	})
	require.NoError(t, err)
	require.Equal(t, "walking-in-faith", p.Slug)
	require.Equal(t, "markdown", p.Format)
	require.Equal(t, "Faith is the substance of things hoped for.", p.Excerpt)
	require.NotNil(t, p.PublishedAt)

	dup, err := d.CreatePost(ctx, Post{Title: "Walking in Faith"})
	require.NoError(t, err)
	require.Equal(t, "walking-in-faith-2", dup.Slug, "Duplicate titles get a numbered slug")
	require.Nil(t, dup.PublishedAt)

	_, err = d.CreatePost(ctx, Post{Title: "x", Format: "rtf"})
	require.ErrorIs(t, err, ErrInvalid)
	_, err = d.CreatePost(ctx, Post{Title: ""})
	require.ErrorIs(t, err, ErrInvalid)

	got, err := d.GetPostBySlug(ctx, "walking-in-faith", true)
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)

	_, err = d.GetPostBySlug(ctx, "walking-in-faith-2", true)
	require.ErrorIs(t, err, ErrNotFound, "Drafts are hidden from the public lookup")
	_, err = d.GetPostBySlug(ctx, "walking-in-faith-2", false)
	require.NoError(t, err)
}

func TestPosts_ListFilters(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	cat, err := d.CreateCategory(ctx, Category{Name: "Devotionals"})
	require.NoError(t, err)

	first, err := d.CreatePost(ctx, Post{Title: "Morning Prayer", Published: true, CategoryID: cat.ID})
	require.NoError(t, err)
	second, err := d.CreatePost(ctx, Post{Title: "Evening Psalm", Published: true})
	require.NoError(t, err)
	_, err = d.CreatePost(ctx, Post{Title: "Draft Notes"})
	require.NoError(t, err)

	published, err := d.ListPosts(ctx, Query{Published: ptr(true)})
	require.NoError(t, err)
	require.Len(t, published, 2)
	require.Equal(t, second.ID, published[0].ID, "Newest published first")
	require.Equal(t, first.ID, published[1].ID)

	byCat, err := d.ListPosts(ctx, Query{CategoryID: cat.ID})
	require.NoError(t, err)
	require.Len(t, byCat, 1)

	search, err := d.ListPosts(ctx, Query{Search: "psalm"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	require.Equal(t, "Evening Psalm", search[0].Title)

	sorted, err := d.ListPosts(ctx, Query{Sort: "title"})
	require.NoError(t, err)
	require.Equal(t, []string{"Draft Notes", "Evening Psalm", "Morning Prayer"},
		[]string{sorted[0].Title, sorted[1].Title, sorted[2].Title})

	paged, err := d.ListPosts(ctx, Query{Sort: "title", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	require.Equal(t, "Evening Psalm", paged[0].Title)

	_, err = d.ListPosts(ctx, Query{Sort: "title; DROP TABLE posts"})
	require.NoError(t, err, "Unknown sort columns fall back to the default order")

	require.NoError(t, d.DeleteCategory(ctx, cat.ID))
	orphan, err := d.GetPost(ctx, first.ID)
	require.NoError(t, err)
	require.Empty(t, orphan.CategoryID, "Deleting a category detaches its posts")
}

func TestPosts_Update(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	p, err := d.CreatePost(ctx, Post{Title: "Draft", Content: "one"})
	require.NoError(t, err)
	require.Nil(t, p.PublishedAt)

	p.Title = "Final Title"
	p.Published = true
	p.Excerpt = ""
	p.Content = "two"
	updated, err := d.UpdatePost(ctx, p)
	require.NoError(t, err)
	require.Equal(t, "draft", updated.Slug, "Existing slug is kept")
	require.Equal(t, "two", updated.Excerpt)
	require.NotNil(t, updated.PublishedAt)
	require.Equal(t, p.CreatedAt, updated.CreatedAt)
	require.True(t, updated.UpdatedAt.After(p.CreatedAt))

	firstPublished := *updated.PublishedAt
	updated.Published = false
	updated.PublishedAt = nil
	updated, err = d.UpdatePost(ctx, updated)
	require.NoError(t, err)
	require.Equal(t, firstPublished, *updated.PublishedAt)

	stored, err := d.GetPost(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, updated, stored)

	_, err = d.UpdatePost(ctx, Post{ID: "missing", Title: "x"})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, d.DeletePost(ctx, p.ID))
	require.ErrorIs(t, d.DeletePost(ctx, p.ID), ErrNotFound)
}

func TestResources(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	_, err := d.CreateResource(ctx, Resource{Title: "Bad", Kind: "podcast", URL: "http://x"})
	require.ErrorIs(t, err, ErrInvalid)
	_, err = d.CreateResource(ctx, Resource{Title: "No URL", Kind: KindAudio})
	require.ErrorIs(t, err, ErrInvalid)

	audio, err := d.CreateResource(ctx, Resource{
		Title: "Psalm 23", Kind: KindAudio, URL: "http://localhost:8180/objects/audio/psalm23.mp3",
		DurationSeconds: 312, Published: true,
	})
	require.NoError(t, err)
	_, err = d.CreateResource(ctx, Resource{Title: "Study Guide", Kind: KindDocument, URL: "http://x/guide.pdf"})
	require.NoError(t, err)

	onlyAudio, err := d.ListResources(ctx, Query{Kind: KindAudio})
	require.NoError(t, err)
	require.Len(t, onlyAudio, 1)
	require.Equal(t, audio.ID, onlyAudio[0].ID)

	published, err := d.ListResources(ctx, Query{Published: ptr(true)})
	require.NoError(t, err)
	require.Len(t, published, 1)

	audio.Description = "Read aloud"
	audio.DurationSeconds = 315
	updated, err := d.UpdateResource(ctx, audio)
	require.NoError(t, err)
	got, err := d.GetResource(ctx, audio.ID)
	require.NoError(t, err)
	require.Equal(t, updated, got)
	require.Equal(t, 315, got.DurationSeconds)

	require.NoError(t, d.DeleteResource(ctx, audio.ID))
	_, err = d.GetResource(ctx, audio.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSubscribers_Idempotent(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	s, err := d.Subscribe(ctx, " Maria@Example.org ", "Maria")
	require.NoError(t, err)
	require.Equal(t, "maria@example.org", s.Email)
	require.True(t, s.Active)

	again, err := d.Subscribe(ctx, "MARIA@example.org", "")
	require.NoError(t, err)
	require.Equal(t, s.ID, again.ID, "Subscribing twice keeps a single row")
	require.Equal(t, "Maria", again.Name)

	all, err := d.ListSubscribers(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, d.Unsubscribe(ctx, "maria@example.org"))
	require.NoError(t, d.Unsubscribe(ctx, "maria@example.org"), "Unsubscribing twice is not an error")
	require.NoError(t, d.Unsubscribe(ctx, "nobody@example.org"))

	gone, err := d.GetSubscriber(ctx, s.ID)
	require.NoError(t, err)
	require.False(t, gone.Active)
	require.NotNil(t, gone.UnsubscribedAt)

	active, err := d.ListSubscribers(ctx, Query{Active: ptr(true)})
	require.NoError(t, err)
	require.Empty(t, active)

	back, err := d.Subscribe(ctx, "maria@example.org", "Maria G.")
	require.NoError(t, err)
	require.Equal(t, s.ID, back.ID)
	require.True(t, back.Active)
	require.Nil(t, back.UnsubscribedAt)
	require.Equal(t, "Maria G.", back.Name)

	_, err = d.Subscribe(ctx, "not-an-email", "")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestSubscribers_AdminEdit(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	s, err := d.Subscribe(ctx, "juan@example.org", "")
	require.NoError(t, err)

	s.Name = "Juan"
	s.Active = false
	s, err = d.UpdateSubscriber(ctx, s)
	require.NoError(t, err)
	require.False(t, s.Active)
	require.NotNil(t, s.UnsubscribedAt)

	require.NoError(t, d.DeleteSubscriber(ctx, s.ID))
	require.ErrorIs(t, d.DeleteSubscriber(ctx, s.ID), ErrNotFound)
}

func TestMessages(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	_, err := d.CreateMessage(ctx, ContactMessage{Name: "Ana", Email: "ana@example.org"})
	require.ErrorIs(t, err, ErrInvalid, "Message body is required")

	m, err := d.CreateMessage(ctx, ContactMessage{
		Name: "Ana", Email: "Ana@Example.org", Subject: "Prayer request", Message: "Please pray for my family.",
	})
	require.NoError(t, err)
	require.False(t, m.Read)
	require.Equal(t, "ana@example.org", m.Email)

	_, err = d.CreateMessage(ctx, ContactMessage{Name: "Luis", Email: "luis@example.org", Message: "Hello"})
	require.NoError(t, err)

	read, err := d.MarkMessageRead(ctx, m.ID, true)
	require.NoError(t, err)
	require.True(t, read.Read)

	unread, err := d.ListMessages(ctx, Query{Unread: true})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	require.Equal(t, "Luis", unread[0].Name)

	_, err = d.MarkMessageRead(ctx, "missing", true)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, d.DeleteMessage(ctx, m.ID))
	all, err := d.ListMessages(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestSocialLinks_Order(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	var ids []string
	for _, platform := range []string{"facebook", "youtube", "instagram"} {
		s, err := d.CreateSocialLink(ctx, SocialLink{Platform: platform, URL: "https://" + platform + ".com/ministry", Active: true})
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}

	links, err := d.ListSocialLinks(ctx, Query{})
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, []int{links[0].Position, links[1].Position, links[2].Position})

	links, err = d.MoveSocialLink(ctx, ids[2], -1)
	require.NoError(t, err)
	require.Equal(t, []string{ids[0], ids[2], ids[1]}, []string{links[0].ID, links[1].ID, links[2].ID})

	links, err = d.MoveSocialLink(ctx, ids[0], -1)
	require.NoError(t, err)
	require.Equal(t, ids[0], links[0].ID, "Moving the first link up is a no-op")

	_, err = d.MoveSocialLink(ctx, "missing", 1)
	require.ErrorIs(t, err, ErrNotFound)

	yt, err := d.GetSocialLink(ctx, ids[1])
	require.NoError(t, err)
	yt.Active = false
	yt.Position = 99
	yt, err = d.UpdateSocialLink(ctx, yt)
	require.NoError(t, err)
	require.Equal(t, 2, yt.Position, "Updates never change the position")

	active, err := d.ListSocialLinks(ctx, Query{Active: ptr(true)})
	require.NoError(t, err)
	require.Len(t, active, 2)

	_, err = d.CreateSocialLink(ctx, SocialLink{Platform: "x"})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestCounts(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	_, err := d.CreatePost(ctx, Post{Title: "A", Published: true})
	require.NoError(t, err)
	_, err = d.CreatePost(ctx, Post{Title: "B"})
	require.NoError(t, err)
	_, err = d.Subscribe(ctx, "a@example.org", "")
	require.NoError(t, err)
	_, err = d.CreateMessage(ctx, ContactMessage{Name: "A", Email: "a@example.org", Message: "hi"})
	require.NoError(t, err)

	c, err := d.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, Counts{Posts: 2, PublishedPosts: 1, ActiveSubscribers: 1, Messages: 1, UnreadMessages: 1}, c)
}

func TestOrderBy(t *testing.T) {
	allowed := []string{"title", "created_at"}
	require.Equal(t, " ORDER BY title ASC, rowid ASC", orderBy("title", allowed, "created_at DESC"))
	require.Equal(t, " ORDER BY created_at DESC, rowid DESC", orderBy("-created_at", allowed, "x"))
	require.Equal(t, " ORDER BY created_at DESC", orderBy("password", allowed, "created_at DESC"))
}
