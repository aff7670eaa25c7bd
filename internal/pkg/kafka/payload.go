package kafka

import (
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ErrMalformedPayload 结构不合法的消息，只丢弃不重试
var ErrMalformedPayload = errors.New("消息结构不合法")

// StatsPayload 统计更新消息归一化后的结果
type StatsPayload struct {
	PostID string
	Count  int
}

// 上游各服务字段命名不统一，这里集中登记所有已知别名
var (
	postIDKeys       = []string{"post_id", "postId", "id"}
	likeCountKeys    = []string{"like_count", "likes_count", "likeCount", "count"}
	commentCountKeys = []string{"comment_count", "comments_count", "commentCount", "count"}
)

// normalizeStatsPayload 将别名字段映射为统一结构
// post_id 缺失、计数字段缺失或为负值都视为结构不合法
func normalizeStatsPayload(raw []byte, countKeys []string) (*StatsPayload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Wrap(ErrMalformedPayload, err.Error())
	}

	postID, ok := lookupString(fields, postIDKeys)
	if !ok || postID == "" {
		return nil, errors.Wrap(ErrMalformedPayload, "缺少 post_id 字段")
	}

	count, ok := lookupInt(fields, countKeys)
	if !ok {
		return nil, errors.Wrap(ErrMalformedPayload, "缺少计数字段")
	}
	if count < 0 {
		return nil, errors.Wrap(ErrMalformedPayload, "计数不能为负")
	}

	return &StatsPayload{PostID: postID, Count: count}, nil
}

func lookupString(fields map[string]json.RawMessage, keys []string) (string, bool) {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		return s, true
	}
	return "", false
}

func lookupInt(fields map[string]json.RawMessage, keys []string) (int, bool) {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}
