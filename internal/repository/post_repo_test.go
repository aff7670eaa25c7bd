package repository

import (
	"Inkstone/internal/model"
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestPostRepo_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := model.NewPost("测试帖", "desc", model.PageData(`{}`), "author-1", "alice", "", nil)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `posts`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Create(ctx, post)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepo_CreateWrapsDriverError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	post := model.NewPost("测试帖", "", model.PageData(`{}`), "author-1", "alice", "", nil)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `posts`").
		WillReturnError(errors.New("connection refused"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), post)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepo_FindByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT \\* FROM `posts` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "view_count"}).
			AddRow("p-1", "测试帖", "published", 3))

	post, err := repo.FindByID(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "p-1", post.ID)
	assert.Equal(t, 3, post.ViewCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 未命中返回 nil, nil，调用方据此决定 404 语义
func TestPostRepo_FindByIDNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `posts` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	post, err := repo.FindByID(context.Background(), "no-such-id")
	assert.NoError(t, err)
	assert.Nil(t, post)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepo_FindPublishedFilters(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `posts` WHERE status = \\? AND is_deleted = \\? AND JSON_CONTAINS\\(tags, JSON_QUOTE\\(\\?\\)\\) ORDER BY published_at DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status"}).
			AddRow("p-1", "上榜帖", "published"))

	posts, err := repo.FindPublished(context.Background(), 0, 10, []string{"rpg"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "p-1", posts[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepo_SearchFilters(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `posts` WHERE \\(title LIKE \\? OR description LIKE \\?\\) AND status = \\? AND is_deleted = \\? ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p-1"))

	posts, err := repo.Search(context.Background(), "攻略", 0, 10)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepo_SoftDelete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `posts` SET `is_deleted`=\\?,`updated_at`=\\? WHERE id = \\?").
		WithArgs(true, sqlmock.AnyArg(), "p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SoftDelete(context.Background(), "p-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 浏览计数在 SQL 侧自增，并发写不丢更新
func TestPostRepo_IncrementViewCount(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `posts` SET `view_count`=view_count \\+ \\?,`updated_at`=\\? WHERE id = \\?").
		WithArgs(1, sqlmock.AnyArg(), "p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.IncrementViewCount(context.Background(), "p-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepo_FindPopularOrder(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `posts` WHERE status = \\? AND is_deleted = \\? ORDER BY view_count DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "view_count"}).
			AddRow("p-hot", 100).
			AddRow("p-warm", 10))

	posts, err := repo.FindPopular(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "p-hot", posts[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
