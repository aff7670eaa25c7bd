package dto

import (
	"github.com/goccy/go-json"
)

// PostDTO 帖子
type PostDTO struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Page           json.RawMessage `json:"page"`
	AuthorID       string          `json:"author_id"`
	AuthorUsername string          `json:"author_username"`
	Game           string          `json:"game,omitempty"`
	Tags           []string        `json:"tags"`
	Status         string          `json:"status"`
	ViewCount      int             `json:"view_count"`
	LikeCount      int             `json:"like_count"`
	CommentCount   int             `json:"comment_count"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
	PublishedAt    *string         `json:"published_at"`
}

// PostCreateDTO 帖子 - 新增
type PostCreateDTO struct {
	Title       string          `json:"title" binding:"required" validate:"min=1,max=255"`
	Description string          `json:"description" validate:"max=1024"`
	Page        json.RawMessage `json:"page" binding:"required"`
	Game        string          `json:"game" validate:"max=128"`
	Tags        []string        `json:"tags" validate:"max=16"`
}

// PostListDTO 帖子列表查询参数
type PostListDTO struct {
	Skip     int      `form:"skip,default=0" binding:"omitempty,min=0"`
	Limit    int      `form:"limit,default=100" binding:"omitempty,min=1,max=1000"`
	AuthorID string   `form:"author_id"`
	Tags     []string `form:"tags"`
	Game     string   `form:"game"`
}

// PostSearchDTO 帖子搜索参数
type PostSearchDTO struct {
	Query string `form:"q" binding:"required,min=1"`
	Skip  int    `form:"skip,default=0" binding:"omitempty,min=0"`
	Limit int    `form:"limit,default=100" binding:"omitempty,min=1,max=1000"`
}

// PostListResponse 帖子列表
type PostListResponse struct {
	Posts []*PostDTO `json:"posts"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
}

// PostStatsDTO 帖子计数
type PostStatsDTO struct {
	PostID       string `json:"post_id"`
	ViewCount    int    `json:"view_count"`
	LikeCount    int    `json:"like_count"`
	CommentCount int    `json:"comment_count"`
}
