package handler

import (
	"Inkstone/internal/api/dto"
	"Inkstone/internal/pkg/response"
	"Inkstone/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postSvc service.PostService
}

func NewPostHandler(postSvc service.PostService) *PostHandler {
	return &PostHandler{
		postSvc: postSvc,
	}
}

func (s *PostHandler) CreatePost(c *gin.Context) {
	authorID := c.GetString("user_id")
	authorUsername := c.GetString("username")

	var req dto.PostCreateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	post, err := s.postSvc.CreatePost(c.Request.Context(), authorID, authorUsername, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessCreated(c, post)
}

// GetPost 获取帖子详情，默认增加浏览量，increment_views=false 时直查
func (s *PostHandler) GetPost(c *gin.Context) {
	postID := c.Param("post_id")

	incrementViews, err := strconv.ParseBool(c.DefaultQuery("increment_views", "true"))
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var post *dto.PostDTO
	if incrementViews {
		post, err = s.postSvc.ViewPost(c.Request.Context(), postID)
	} else {
		post, err = s.postSvc.GetPost(c.Request.Context(), postID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, post)
}

func (s *PostHandler) PublishPost(c *gin.Context) {
	authorID := c.GetString("user_id")
	postID := c.Param("post_id")

	post, err := s.postSvc.PublishPost(c.Request.Context(), postID, authorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, post)
}

func (s *PostHandler) ListPosts(c *gin.Context) {
	var query dto.PostListDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	posts, err := s.postSvc.ListPosts(c.Request.Context(), &query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, posts)
}

func (s *PostHandler) SearchPosts(c *gin.Context) {
	var query dto.PostSearchDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	posts, err := s.postSvc.SearchPosts(c.Request.Context(), query.Query, query.Skip, query.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, posts)
}

func (s *PostHandler) PopularPosts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	posts, err := s.postSvc.PopularPosts(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, posts)
}

func (s *PostHandler) GetPostStats(c *gin.Context) {
	postID := c.Param("post_id")

	stats, err := s.postSvc.GetPostStats(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

func (s *PostHandler) DeletePost(c *gin.Context) {
	authorID := c.GetString("user_id")
	postID := c.Param("post_id")

	if err := s.postSvc.DeletePost(c.Request.Context(), postID, authorID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}
