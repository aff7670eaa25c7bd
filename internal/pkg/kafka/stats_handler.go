package kafka

import (
	"Inkstone/internal/service"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
)

const statsHandleTimeout = 5 * time.Second

// StatsHandler 消费外部服务的计数更新事件，回写本地冗余计数
// 点赞和评论两类事件共用同一套处理流程，只是计数字段别名不同
type StatsHandler struct {
	kind       string
	countKeys  []string
	postSvc    service.PostService
	deadLetter DeadLetterFunc
}

func NewLikesStatsHandler(postSvc service.PostService, deadLetter DeadLetterFunc) *StatsHandler {
	return &StatsHandler{
		kind:       "likes",
		countKeys:  likeCountKeys,
		postSvc:    postSvc,
		deadLetter: deadLetter,
	}
}

func NewCommentsStatsHandler(postSvc service.PostService, deadLetter DeadLetterFunc) *StatsHandler {
	return &StatsHandler{
		kind:       "comments",
		countKeys:  commentCountKeys,
		postSvc:    postSvc,
		deadLetter: deadLetter,
	}
}

func (s *StatsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("stats consumer setup", "kind", s.kind)
	return nil
}

func (s *StatsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("stats consumer cleanup", "kind", s.kind)
	return nil
}

func (s *StatsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("stats consume claim", "kind", s.kind, "topic", claim.Topic())
	err := pullMessageBatch(session, claim, s.logic, s.deadLetter)
	if err != nil {
		log.Error("stats process batch error", "kind", s.kind, "err", err)
		return err
	}
	return nil
}

func (s *StatsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	// 结构不合法的消息直接丢弃，重试也不可能成功
	payload, err := normalizeStatsPayload(msg.Value, s.countKeys)
	if err != nil {
		log.WarnContext(ctx, "drop malformed stats message",
			"kind", s.kind, "topic", msg.Topic, "offset", msg.Offset, "err", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, statsHandleTimeout)
	defer cancel()

	var likeCount, commentCount *int
	if s.kind == "likes" {
		likeCount = &payload.Count
	} else {
		commentCount = &payload.Count
	}

	_, err = s.postSvc.UpdatePostStats(ctx, payload.PostID, likeCount, commentCount)
	if err != nil {
		// 帖子不存在：可能是跨服务乱序或已删除，丢弃即可
		if errors.Is(err, service.ErrPostNotFound) {
			log.WarnContext(ctx, "stats update for unknown post",
				"kind", s.kind, "postID", payload.PostID)
			return nil
		}
		return err
	}

	log.InfoContext(ctx, "post stats updated",
		"kind", s.kind, "postID", payload.PostID, "count", payload.Count)
	return nil
}
