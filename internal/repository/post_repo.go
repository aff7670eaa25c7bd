package repository

import (
	"Inkstone/internal/model"
	"Inkstone/internal/pkg/consts"
	"context"
	"errors"

	"gorm.io/gorm"
)

type PostRepo interface {
	Create(ctx context.Context, post *model.Post) error
	Update(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id string) (*model.Post, error)
	FindByAuthor(ctx context.Context, authorID string, skip, limit int) ([]*model.Post, error)
	FindPublished(ctx context.Context, skip, limit int, tags []string) ([]*model.Post, error)
	FindPopular(ctx context.Context, limit int) ([]*model.Post, error)
	Search(ctx context.Context, query string, skip, limit int) ([]*model.Post, error)
	SoftDelete(ctx context.Context, id string) error
	IncrementViewCount(ctx context.Context, id string) error
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepo {
	return &PostRepoImpl{
		db: db,
	}
}

func (s PostRepoImpl) Create(ctx context.Context, post *model.Post) error {
	return wrapPersist(s.db.WithContext(ctx).Create(post).Error, "create post")
}

func (s PostRepoImpl) Update(ctx context.Context, post *model.Post) error {
	return wrapPersist(s.db.WithContext(ctx).Save(post).Error, "update post")
}

func (s PostRepoImpl) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapPersist(err, "find post")
	}
	return &post, nil
}

// FindByAuthor 作者自查列表，不过滤 is_deleted，与发布流的可见性策略不同
func (s PostRepoImpl) FindByAuthor(ctx context.Context, authorID string, skip, limit int) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, wrapPersist(err, "find posts by author")
	}
	return posts, nil
}

func (s PostRepoImpl) FindPublished(ctx context.Context, skip, limit int, tags []string) ([]*model.Post, error) {
	query := s.db.WithContext(ctx).
		Where("status = ?", consts.PostStatusPublished).
		Where("is_deleted = ?", false)

	for _, tag := range tags {
		query = query.Where("JSON_CONTAINS(tags, JSON_QUOTE(?))", tag)
	}

	var posts []*model.Post
	err := query.
		Order("published_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, wrapPersist(err, "find published posts")
	}
	return posts, nil
}

func (s PostRepoImpl) FindPopular(ctx context.Context, limit int) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.WithContext(ctx).
		Where("status = ?", consts.PostStatusPublished).
		Where("is_deleted = ?", false).
		Order("view_count DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, wrapPersist(err, "find popular posts")
	}
	return posts, nil
}

func (s PostRepoImpl) Search(ctx context.Context, query string, skip, limit int) ([]*model.Post, error) {
	pattern := "%" + query + "%"

	var posts []*model.Post
	err := s.db.WithContext(ctx).
		Where("title LIKE ? OR description LIKE ?", pattern, pattern).
		Where("status = ?", consts.PostStatusPublished).
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, wrapPersist(err, "search posts")
	}
	return posts, nil
}

func (s PostRepoImpl) SoftDelete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
	return wrapPersist(err, "delete post")
}

// IncrementViewCount 数据库侧自增，并发浏览下不丢计数
func (s PostRepoImpl) IncrementViewCount(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + ?", 1)).Error
	return wrapPersist(err, "increment view count")
}
