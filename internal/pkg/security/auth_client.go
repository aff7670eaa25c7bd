package security

import (
	"Inkstone/internal/api/config"
	"Inkstone/internal/pkg/consts"
	"Inkstone/internal/pkg/redis"
	"context"
	log "log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Identity auth-service 返回的用户身份
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// AuthClient 调用 auth-service 补全用户信息，结果短期缓存在 Redis
type AuthClient struct {
	httpClient *resty.Client
	cacheTTL   time.Duration
}

func NewAuthClient(cfg config.AuthConfig) *AuthClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout) * time.Second)

	cacheTTL := time.Duration(cfg.CacheSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &AuthClient{
		httpClient: client,
		cacheTTL:   cacheTTL,
	}
}

// GetProfile 按用户 ID 查询用户资料，携带原始 Token 透传鉴权
func (s *AuthClient) GetProfile(ctx context.Context, userID, token string) (*Identity, error) {
	cacheKey := consts.AuthTokenKey + userID

	if cached, err := redis.GetValue(ctx, cacheKey); err == nil && cached != "" {
		var identity Identity
		if err = json.Unmarshal([]byte(cached), &identity); err == nil {
			return &identity, nil
		}
		log.WarnContext(ctx, "unmarshal cached identity failed", "err", err)
	}

	var identity Identity
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&identity).
		Get("/api/v1/users/" + userID + "/profile")
	if err != nil {
		return nil, errors.Wrap(err, "auth service request failed")
	}
	if resp.IsError() {
		return nil, errors.Errorf("auth service returned %d", resp.StatusCode())
	}

	if payload, mErr := json.Marshal(&identity); mErr == nil {
		if cErr := redis.SetWithExpiration(ctx, cacheKey, payload, s.cacheTTL); cErr != nil {
			log.WarnContext(ctx, "cache identity failed", "err", cErr)
		}
	}

	return &identity, nil
}
