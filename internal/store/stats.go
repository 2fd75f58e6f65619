package store

import (
	"context"
	"fmt"
)

// Counts returns the dashboard totals in one round trip.
func (d *DB) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := d.db.QueryRowContext(ctx, `
		SELECT
		  (SELECT COUNT(*) FROM posts),
		  (SELECT COUNT(*) FROM posts WHERE published = 1),
		  (SELECT COUNT(*) FROM categories),
		  (SELECT COUNT(*) FROM resources),
		  (SELECT COUNT(*) FROM subscribers WHERE active = 1),
		  (SELECT COUNT(*) FROM contact_messages),
		  (SELECT COUNT(*) FROM contact_messages WHERE read = 0),
		  (SELECT COUNT(*) FROM social_links WHERE active = 1)`,
	).Scan(&c.Posts, &c.PublishedPosts, &c.Categories, &c.Resources,
		&c.ActiveSubscribers, &c.Messages, &c.UnreadMessages, &c.ActiveSocialLinks)
	if err != nil {
		return Counts{}, fmt.Errorf("dashboard counts: %w", err)
	}
	return c, nil
}
