package service

import (
	"Inkstone/internal/api/dto"
	"Inkstone/internal/model"
	"Inkstone/internal/pkg/consts"
	"Inkstone/internal/pkg/event"
	"Inkstone/internal/pkg/redis"
	"Inkstone/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
)

// PopularCacheTTL 热门榜缓存有效期，略长于定时刷新间隔
const PopularCacheTTL = 2 * time.Hour

type PostService interface {
	CreatePost(ctx context.Context, authorID, authorUsername string, req *dto.PostCreateDTO) (*dto.PostDTO, error)
	PublishPost(ctx context.Context, postID, authorID string) (*dto.PostDTO, error)
	ViewPost(ctx context.Context, postID string) (*dto.PostDTO, error)
	GetPost(ctx context.Context, postID string) (*dto.PostDTO, error)
	ListPosts(ctx context.Context, query *dto.PostListDTO) (*dto.PostListResponse, error)
	SearchPosts(ctx context.Context, keyword string, skip, limit int) (*dto.PostListResponse, error)
	PopularPosts(ctx context.Context, limit int) (*dto.PostListResponse, error)
	RefreshPopularPosts(ctx context.Context, limit int) error
	GetPostStats(ctx context.Context, postID string) (*dto.PostStatsDTO, error)
	DeletePost(ctx context.Context, postID, authorID string) error
	UpdatePostStats(ctx context.Context, postID string, likeCount, commentCount *int) (*dto.PostDTO, error)
}

type postServiceImpl struct {
	postRepo  repository.PostRepo
	publisher event.Publisher
}

// NewPostService 构造帖子服务。消费侧传入 NoopPublisher 以切断事件环路
func NewPostService(postRepo repository.PostRepo, publisher event.Publisher) PostService {
	return &postServiceImpl{
		postRepo:  postRepo,
		publisher: publisher,
	}
}

// CreatePost 创建帖子，落库成功后事件尽力发出，发布失败不回滚
func (s *postServiceImpl) CreatePost(ctx context.Context, authorID, authorUsername string, req *dto.PostCreateDTO) (*dto.PostDTO, error) {
	post := model.NewPost(req.Title, req.Description, model.PageData(req.Page), authorID, authorUsername, req.Game, req.Tags)

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.emit(ctx, event.NewPostCreated(post.ID, post.AuthorID, post.AuthorUsername, post.Title))

	return toPostDTO(post)
}

// PublishPost 发布帖子，仅作者本人可操作。
// 帖子不存在与非本人统一返回 ErrPostNotFound，避免向调用方泄露存在性
func (s *postServiceImpl) PublishPost(ctx context.Context, postID, authorID string) (*dto.PostDTO, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.AuthorID != authorID {
		log.WarnContext(ctx, "publish denied: not the author", "postID", postID, "callerID", authorID)
		return nil, ErrPostNotFound
	}

	post.Publish()

	if err = s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	s.emit(ctx, event.NewPostPublished(post.ID, post.AuthorID, post.AuthorUsername, post.Title, *post.PublishedAt))

	return toPostDTO(post)
}

// ViewPost 浏览帖子。计数在数据库侧原子自增，返回的是自增前的快照
func (s *postServiceImpl) ViewPost(ctx context.Context, postID string) (*dto.PostDTO, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.IsDeleted || !post.IsPublished() {
		return nil, ErrPostNotFound
	}

	if err = s.postRepo.IncrementViewCount(ctx, postID); err != nil {
		return nil, err
	}

	s.emit(ctx, event.NewPostViewed(post.ID, post.AuthorID))

	return toPostDTO(post)
}

// GetPost 按 ID 直查，不增加浏览量。已删除的帖子对直查不可见
func (s *postServiceImpl) GetPost(ctx context.Context, postID string) (*dto.PostDTO, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.IsDeleted {
		return nil, ErrPostNotFound
	}
	return toPostDTO(post)
}

// ListPosts author_id 非空走作者自查，否则走已发布流。game 过滤在取回后做
func (s *postServiceImpl) ListPosts(ctx context.Context, query *dto.PostListDTO) (*dto.PostListResponse, error) {
	var posts []*model.Post
	var err error

	if query.AuthorID != "" {
		posts, err = s.postRepo.FindByAuthor(ctx, query.AuthorID, query.Skip, query.Limit)
	} else {
		posts, err = s.postRepo.FindPublished(ctx, query.Skip, query.Limit, query.Tags)
	}
	if err != nil {
		return nil, err
	}

	if query.Game != "" {
		filtered := make([]*model.Post, 0, len(posts))
		for _, p := range posts {
			if p.Game == query.Game {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}

	return toPostListResponse(posts, query.Skip, query.Limit)
}

func (s *postServiceImpl) SearchPosts(ctx context.Context, keyword string, skip, limit int) (*dto.PostListResponse, error) {
	posts, err := s.postRepo.Search(ctx, keyword, skip, limit)
	if err != nil {
		return nil, err
	}
	return toPostListResponse(posts, skip, limit)
}

// PopularPosts 热门榜，优先读 Redis 缓存，未命中回源并回填
func (s *postServiceImpl) PopularPosts(ctx context.Context, limit int) (*dto.PostListResponse, error) {
	cached, err := redis.GetValue(ctx, consts.PostPopularKey)
	if err == nil && cached != "" {
		var items []*dto.PostDTO
		if err = json.Unmarshal([]byte(cached), &items); err == nil {
			if len(items) > limit {
				items = items[:limit]
			}
			return &dto.PostListResponse{
				Posts: items,
				Total: len(items),
				Page:  1,
				Size:  limit,
			}, nil
		}
		log.WarnContext(ctx, "unmarshal popular cache failed", "err", err)
	}

	posts, err := s.postRepo.FindPopular(ctx, limit)
	if err != nil {
		return nil, err
	}

	resp, err := toPostListResponse(posts, 0, limit)
	if err != nil {
		return nil, err
	}

	if payload, mErr := json.Marshal(resp.Posts); mErr == nil {
		if cErr := redis.SetWithExpiration(ctx, consts.PostPopularKey, payload, PopularCacheTTL); cErr != nil {
			log.WarnContext(ctx, "set popular cache failed", "err", cErr)
		}
	}

	return resp, nil
}

// RefreshPopularPosts 强制回源重建热门榜缓存，定时任务调用
func (s *postServiceImpl) RefreshPopularPosts(ctx context.Context, limit int) error {
	posts, err := s.postRepo.FindPopular(ctx, limit)
	if err != nil {
		return err
	}

	resp, err := toPostListResponse(posts, 0, limit)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(resp.Posts)
	if err != nil {
		return err
	}

	return redis.SetWithExpiration(ctx, consts.PostPopularKey, payload, PopularCacheTTL)
}

func (s *postServiceImpl) GetPostStats(ctx context.Context, postID string) (*dto.PostStatsDTO, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.IsDeleted {
		return nil, ErrPostNotFound
	}
	return &dto.PostStatsDTO{
		PostID:       post.ID,
		ViewCount:    post.ViewCount,
		LikeCount:    post.LikeCount,
		CommentCount: post.CommentCount,
	}, nil
}

// DeletePost 软删除，仅作者本人可操作，404 语义与 PublishPost 一致
func (s *postServiceImpl) DeletePost(ctx context.Context, postID, authorID string) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.AuthorID != authorID {
		log.WarnContext(ctx, "delete denied: not the author", "postID", postID, "callerID", authorID)
		return ErrPostNotFound
	}

	if err = s.postRepo.SoftDelete(ctx, postID); err != nil {
		return err
	}

	// 删除的帖子不能留在热门榜缓存里等下一轮刷新
	if cErr := redis.DeleteKey(ctx, consts.PostPopularKey); cErr != nil {
		log.WarnContext(ctx, "evict popular cache failed", "err", cErr)
	}

	s.emit(ctx, event.NewPostDeleted(post.ID, post.AuthorID))

	return nil
}

// UpdatePostStats 应用外部服务同步过来的计数，两个计数各自可选。
// 本操作由入站事件触发，绝不向外发事件
func (s *postServiceImpl) UpdatePostStats(ctx context.Context, postID string, likeCount, commentCount *int) (*dto.PostDTO, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	if likeCount != nil {
		post.UpdateLikeCount(*likeCount)
	}
	if commentCount != nil {
		post.UpdateCommentCount(*commentCount)
	}

	if err = s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return toPostDTO(post)
}

// emit 尽力发布事件，失败只记日志，不影响业务结果
func (s *postServiceImpl) emit(ctx context.Context, ev event.Event) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.ErrorContext(ctx, "publish event failed", "event", ev.Type(), "key", ev.Key(), "err", err)
	}
}

func toPostDTO(post *model.Post) (*dto.PostDTO, error) {
	item := &dto.PostDTO{}
	if err := copier.Copy(item, post); err != nil {
		return nil, err
	}

	item.Page = json.RawMessage(post.Page)
	item.Tags = []string(post.Tags)
	if item.Tags == nil {
		item.Tags = []string{}
	}
	item.CreatedAt = post.CreatedAt.Format(time.RFC3339)
	item.UpdatedAt = post.UpdatedAt.Format(time.RFC3339)
	if post.PublishedAt != nil {
		publishedAt := post.PublishedAt.Format(time.RFC3339)
		item.PublishedAt = &publishedAt
	}

	return item, nil
}

func toPostListResponse(posts []*model.Post, skip, limit int) (*dto.PostListResponse, error) {
	items := make([]*dto.PostDTO, 0, len(posts))
	for _, post := range posts {
		item, err := toPostDTO(post)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	page := 1
	if limit > 0 {
		page = skip/limit + 1
	}

	return &dto.PostListResponse{
		Posts: items,
		Total: len(items),
		Page:  page,
		Size:  limit,
	}, nil
}
