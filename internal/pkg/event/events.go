package event

import (
	"Inkstone/internal/pkg/consts"
	"time"
)

const (
	TypePostCreated   = "post_created"
	TypePostPublished = "post_published"
	TypePostViewed    = "post_viewed"
	TypePostDeleted   = "post_deleted"
)

// Event 出站领域事件，Key 用作按帖子分区的路由键
type Event interface {
	Type() string
	Key() string
}

// Meta 所有事件共有的元信息
type Meta struct {
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
}

func (m Meta) Type() string {
	return m.EventType
}

func newMeta(eventType string) Meta {
	return Meta{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Service:   consts.ServiceName,
	}
}

type PostCreated struct {
	Meta
	PostID         string `json:"post_id"`
	AuthorID       string `json:"author_id"`
	AuthorUsername string `json:"author_username"`
	Title          string `json:"title"`
}

func (e PostCreated) Key() string { return e.PostID }

func NewPostCreated(postID, authorID, authorUsername, title string) PostCreated {
	return PostCreated{
		Meta:           newMeta(TypePostCreated),
		PostID:         postID,
		AuthorID:       authorID,
		AuthorUsername: authorUsername,
		Title:          title,
	}
}

type PostPublished struct {
	Meta
	PostID         string `json:"post_id"`
	AuthorID       string `json:"author_id"`
	AuthorUsername string `json:"author_username"`
	Title          string `json:"title"`
	PublishedAt    string `json:"published_at"`
}

func (e PostPublished) Key() string { return e.PostID }

func NewPostPublished(postID, authorID, authorUsername, title string, publishedAt time.Time) PostPublished {
	return PostPublished{
		Meta:           newMeta(TypePostPublished),
		PostID:         postID,
		AuthorID:       authorID,
		AuthorUsername: authorUsername,
		Title:          title,
		PublishedAt:    publishedAt.Format(time.RFC3339),
	}
}

type PostViewed struct {
	Meta
	PostID   string `json:"post_id"`
	AuthorID string `json:"author_id"`
}

func (e PostViewed) Key() string { return e.PostID }

func NewPostViewed(postID, authorID string) PostViewed {
	return PostViewed{
		Meta:     newMeta(TypePostViewed),
		PostID:   postID,
		AuthorID: authorID,
	}
}

type PostDeleted struct {
	Meta
	PostID   string `json:"post_id"`
	AuthorID string `json:"author_id"`
}

func (e PostDeleted) Key() string { return e.PostID }

func NewPostDeleted(postID, authorID string) PostDeleted {
	return PostDeleted{
		Meta:     newMeta(TypePostDeleted),
		PostID:   postID,
		AuthorID: authorID,
	}
}
