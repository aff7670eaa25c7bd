package model

import (
	"Inkstone/internal/pkg/consts"
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID             string     `gorm:"type:char(36);primaryKey" json:"id"`
	Title          string     `gorm:"type:varchar(255);not null" json:"title"`
	Description    string     `gorm:"type:varchar(1024)" json:"description"`
	Page           PageData   `gorm:"type:json" json:"page"`
	AuthorID       string     `gorm:"type:char(36);not null;index:idx_author_id" json:"author_id"`
	AuthorUsername string     `gorm:"type:varchar(64)" json:"author_username"`
	Game           string     `gorm:"type:varchar(128)" json:"game"`
	Tags           TagList    `gorm:"type:json" json:"tags"`
	Status         string     `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	ViewCount      int        `gorm:"not null;default:0" json:"view_count"`
	LikeCount      int        `gorm:"not null;default:0" json:"like_count"`
	CommentCount   int        `gorm:"not null;default:0" json:"comment_count"`
	IsDeleted      bool       `gorm:"type:tinyint(1);not null;default:0" json:"is_deleted"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	PublishedAt    *time.Time `json:"published_at"`
}

func (Post) TableName() string {
	return "posts"
}

// NewPost 构造 draft 状态的新帖子，ID 在创建时生成且不可变
func NewPost(title, description string, page PageData, authorID, authorUsername, game string, tags []string) *Post {
	if tags == nil {
		tags = []string{}
	}
	return &Post{
		ID:             uuid.NewString(),
		Title:          title,
		Description:    description,
		Page:           page,
		AuthorID:       authorID,
		AuthorUsername: authorUsername,
		Game:           game,
		Tags:           tags,
		Status:         consts.PostStatusDraft,
	}
}

// Publish draft -> published，PublishedAt 只写一次，重复调用不回退
func (p *Post) Publish() {
	p.Status = consts.PostStatusPublished
	if p.PublishedAt == nil {
		now := time.Now().UTC()
		p.PublishedAt = &now
	}
}

func (p *Post) IsPublished() bool {
	return p.Status == consts.PostStatusPublished
}

func (p *Post) UpdateLikeCount(count int) {
	p.LikeCount = count
}

func (p *Post) UpdateCommentCount(count int) {
	p.CommentCount = count
}
