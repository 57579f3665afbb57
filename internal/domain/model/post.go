package model

import "time"

const (
	PostDateLayout = "02-01-2006"
	PostTimeLayout = "15:04"
)

// Post is a blog entry. Title and Body are stored HTML-escaped.
type Post struct {
	ID         int64     `db:"id"`
	Title      string    `db:"title"`
	Slug       string    `db:"slug"`
	Body       string    `db:"body"`
	UserID     int64     `db:"user_id"`
	AuthorName string    `db:"author_name"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (p Post) CreationDate() string {
	return p.CreatedAt.Local().Format(PostDateLayout)
}

func (p Post) CreationTime() string {
	return p.CreatedAt.Local().Format(PostTimeLayout)
}
