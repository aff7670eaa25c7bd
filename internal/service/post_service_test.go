package service

import (
	"Inkstone/internal/api/dto"
	"Inkstone/internal/model"
	"Inkstone/internal/pkg/consts"
	"Inkstone/internal/pkg/event"
	redispkg "Inkstone/internal/pkg/redis"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	redispkg.Rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redispkg.Rdb = nil })
	return mr
}

type fakePostRepo struct {
	posts       map[string]*model.Post
	incremented []string
}

func newFakePostRepo(posts ...*model.Post) *fakePostRepo {
	m := make(map[string]*model.Post)
	for _, p := range posts {
		m[p.ID] = p
	}
	return &fakePostRepo{posts: m}
}

func (s *fakePostRepo) Create(_ context.Context, post *model.Post) error {
	post.CreatedAt = time.Now().UTC()
	post.UpdatedAt = post.CreatedAt
	s.posts[post.ID] = post
	return nil
}

func (s *fakePostRepo) Update(_ context.Context, post *model.Post) error {
	post.UpdatedAt = time.Now().UTC()
	s.posts[post.ID] = post
	return nil
}

func (s *fakePostRepo) FindByID(_ context.Context, id string) (*model.Post, error) {
	post, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	clone := *post
	return &clone, nil
}

func (s *fakePostRepo) FindByAuthor(_ context.Context, authorID string, _, _ int) ([]*model.Post, error) {
	var out []*model.Post
	for _, p := range s.posts {
		if p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePostRepo) FindPublished(_ context.Context, _, _ int, _ []string) ([]*model.Post, error) {
	var out []*model.Post
	for _, p := range s.posts {
		if p.IsPublished() && !p.IsDeleted {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePostRepo) FindPopular(_ context.Context, _ int) ([]*model.Post, error) {
	return s.FindPublished(context.Background(), 0, 0, nil)
}

func (s *fakePostRepo) Search(_ context.Context, _ string, _, _ int) ([]*model.Post, error) {
	return s.FindPublished(context.Background(), 0, 0, nil)
}

func (s *fakePostRepo) SoftDelete(_ context.Context, id string) error {
	if p, ok := s.posts[id]; ok {
		p.IsDeleted = true
	}
	return nil
}

func (s *fakePostRepo) IncrementViewCount(_ context.Context, id string) error {
	s.incremented = append(s.incremented, id)
	if p, ok := s.posts[id]; ok {
		p.ViewCount++
	}
	return nil
}

type recordingPublisher struct {
	events []event.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev event.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func publishedPost(id, authorID string) *model.Post {
	post := model.NewPost("冒险日志", "desc", model.PageData(`{"blocks":[]}`), authorID, "alice", "elden-ring", []string{"rpg"})
	post.ID = id
	post.Publish()
	return post
}

func TestCreatePostEmitsCreatedEvent(t *testing.T) {
	repo := newFakePostRepo()
	pub := &recordingPublisher{}
	svc := NewPostService(repo, pub)

	got, err := svc.CreatePost(context.Background(), "author-1", "alice", &dto.PostCreateDTO{
		Title: "新帖",
		Page:  []byte(`{"blocks":[1,2]}`),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, consts.PostStatusDraft, got.Status)
	assert.NotNil(t, got.Tags)
	assert.Nil(t, got.PublishedAt)
	assert.JSONEq(t, `{"blocks":[1,2]}`, string(got.Page))

	require.Len(t, pub.events, 1)
	assert.Equal(t, event.TypePostCreated, pub.events[0].Type())
	assert.Equal(t, got.ID, pub.events[0].Key())
}

// 事件发送失败不影响业务结果
func TestCreatePostPublishFailureIgnored(t *testing.T) {
	repo := newFakePostRepo()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewPostService(repo, pub)

	got, err := svc.CreatePost(context.Background(), "author-1", "alice", &dto.PostCreateDTO{
		Title: "新帖",
		Page:  []byte(`{}`),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	_, ok := repo.posts[got.ID]
	assert.True(t, ok)
}

func TestPublishPost(t *testing.T) {
	post := model.NewPost("草稿", "", model.PageData(`{}`), "author-1", "alice", "", nil)
	repo := newFakePostRepo(post)
	pub := &recordingPublisher{}
	svc := NewPostService(repo, pub)

	got, err := svc.PublishPost(context.Background(), post.ID, "author-1")
	require.NoError(t, err)
	assert.Equal(t, consts.PostStatusPublished, got.Status)
	require.NotNil(t, got.PublishedAt)

	require.Len(t, pub.events, 1)
	assert.Equal(t, event.TypePostPublished, pub.events[0].Type())

	// 重复发布：时间戳不回退，事件照常再发
	again, err := svc.PublishPost(context.Background(), post.ID, "author-1")
	require.NoError(t, err)
	assert.Equal(t, *got.PublishedAt, *again.PublishedAt)
	assert.Len(t, pub.events, 2)
}

func TestPublishPostNotAuthor(t *testing.T) {
	post := model.NewPost("草稿", "", model.PageData(`{}`), "author-1", "alice", "", nil)
	repo := newFakePostRepo(post)
	pub := &recordingPublisher{}
	svc := NewPostService(repo, pub)

	_, err := svc.PublishPost(context.Background(), post.ID, "intruder")
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Empty(t, pub.events)
	assert.Equal(t, consts.PostStatusDraft, repo.posts[post.ID].Status)
}

func TestPublishPostMissing(t *testing.T) {
	svc := NewPostService(newFakePostRepo(), &recordingPublisher{})

	_, err := svc.PublishPost(context.Background(), "no-such-id", "author-1")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

// 浏览计数在库侧自增，返回的是自增前的快照
func TestViewPostSnapshotAndIncrement(t *testing.T) {
	post := publishedPost("p-1", "author-1")
	post.ViewCount = 5
	repo := newFakePostRepo(post)
	pub := &recordingPublisher{}
	svc := NewPostService(repo, pub)

	got, err := svc.ViewPost(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.ViewCount)
	assert.Equal(t, []string{"p-1"}, repo.incremented)

	require.Len(t, pub.events, 1)
	assert.Equal(t, event.TypePostViewed, pub.events[0].Type())
}

func TestViewPostHidesUnpublishedAndDeleted(t *testing.T) {
	draft := model.NewPost("草稿", "", model.PageData(`{}`), "author-1", "alice", "", nil)
	deleted := publishedPost("p-del", "author-1")
	deleted.IsDeleted = true
	repo := newFakePostRepo(draft, deleted)
	pub := &recordingPublisher{}
	svc := NewPostService(repo, pub)

	_, err := svc.ViewPost(context.Background(), draft.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = svc.ViewPost(context.Background(), "p-del")
	assert.ErrorIs(t, err, ErrPostNotFound)

	assert.Empty(t, repo.incremented)
	assert.Empty(t, pub.events)
}

// 直查路径同样对已删除的帖子返回 404，拿着 ID 也读不到
func TestGetPostHidesDeleted(t *testing.T) {
	deleted := publishedPost("p-del", "author-1")
	deleted.IsDeleted = true
	svc := NewPostService(newFakePostRepo(deleted), &recordingPublisher{})

	_, err := svc.GetPost(context.Background(), "p-del")
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = svc.GetPostStats(context.Background(), "p-del")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

// 入站计数同步只更新给到的字段，并且绝不向外发事件
func TestUpdatePostStatsPartial(t *testing.T) {
	post := publishedPost("p-1", "author-1")
	post.LikeCount = 1
	post.CommentCount = 4
	repo := newFakePostRepo(post)
	pub := &recordingPublisher{}
	svc := NewPostService(repo, pub)

	likes := 9
	got, err := svc.UpdatePostStats(context.Background(), "p-1", &likes, nil)
	require.NoError(t, err)
	assert.Equal(t, 9, got.LikeCount)
	assert.Equal(t, 4, got.CommentCount)

	comments := 0
	got, err = svc.UpdatePostStats(context.Background(), "p-1", nil, &comments)
	require.NoError(t, err)
	assert.Equal(t, 9, got.LikeCount)
	assert.Equal(t, 0, got.CommentCount)

	assert.Empty(t, pub.events)
}

func TestUpdatePostStatsMissingPost(t *testing.T) {
	svc := NewPostService(newFakePostRepo(), &recordingPublisher{})

	likes := 3
	_, err := svc.UpdatePostStats(context.Background(), "no-such-id", &likes, nil)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestDeletePost(t *testing.T) {
	setupTestRedis(t)
	post := publishedPost("p-1", "author-1")
	repo := newFakePostRepo(post)
	pub := &recordingPublisher{}
	svc := NewPostService(repo, pub)

	require.NoError(t, svc.DeletePost(context.Background(), "p-1", "author-1"))
	assert.True(t, repo.posts["p-1"].IsDeleted)

	require.Len(t, pub.events, 1)
	assert.Equal(t, event.TypePostDeleted, pub.events[0].Type())
}

// 删除成功后热门榜缓存被清掉，避免已删帖子留在榜上
func TestDeletePostEvictsPopularCache(t *testing.T) {
	mr := setupTestRedis(t)
	require.NoError(t, mr.Set(consts.PostPopularKey, `[{"id":"p-1"}]`))

	post := publishedPost("p-1", "author-1")
	svc := NewPostService(newFakePostRepo(post), &recordingPublisher{})

	require.NoError(t, svc.DeletePost(context.Background(), "p-1", "author-1"))
	assert.False(t, mr.Exists(consts.PostPopularKey))
}

func TestDeletePostNotAuthor(t *testing.T) {
	post := publishedPost("p-1", "author-1")
	repo := newFakePostRepo(post)
	pub := &recordingPublisher{}
	svc := NewPostService(repo, pub)

	err := svc.DeletePost(context.Background(), "p-1", "intruder")
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.False(t, repo.posts["p-1"].IsDeleted)
	assert.Empty(t, pub.events)
}

func TestListPostsGameFilter(t *testing.T) {
	p1 := publishedPost("p-1", "author-1")
	p2 := publishedPost("p-2", "author-2")
	p2.Game = "stardew"
	repo := newFakePostRepo(p1, p2)
	svc := NewPostService(repo, &recordingPublisher{})

	got, err := svc.ListPosts(context.Background(), &dto.PostListDTO{Limit: 100, Game: "stardew"})
	require.NoError(t, err)
	require.Len(t, got.Posts, 1)
	assert.Equal(t, "p-2", got.Posts[0].ID)
}

func TestListPostsPagination(t *testing.T) {
	svc := NewPostService(newFakePostRepo(), &recordingPublisher{})

	got, err := svc.ListPosts(context.Background(), &dto.PostListDTO{Skip: 40, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Page)
	assert.Equal(t, 20, got.Size)
	assert.NotNil(t, got.Posts)
}

func TestGetPostStats(t *testing.T) {
	post := publishedPost("p-1", "author-1")
	post.ViewCount = 10
	post.LikeCount = 2
	post.CommentCount = 7
	svc := NewPostService(newFakePostRepo(post), &recordingPublisher{})

	got, err := svc.GetPostStats(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, &dto.PostStatsDTO{PostID: "p-1", ViewCount: 10, LikeCount: 2, CommentCount: 7}, got)
}

// 强制回源重建缓存，之后的读取直接命中缓存
func TestRefreshPopularPosts(t *testing.T) {
	mr := setupTestRedis(t)
	post := publishedPost("p-hot", "author-1")
	post.ViewCount = 100
	repo := newFakePostRepo(post)
	svc := NewPostService(repo, &recordingPublisher{})

	require.NoError(t, svc.RefreshPopularPosts(context.Background(), 10))
	assert.True(t, mr.Exists(consts.PostPopularKey))

	got, err := svc.PopularPosts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got.Posts, 1)
	assert.Equal(t, "p-hot", got.Posts[0].ID)
	assert.Equal(t, 100, got.Posts[0].ViewCount)
}
