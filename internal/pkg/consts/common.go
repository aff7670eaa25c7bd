package consts

// 帖子状态，只存在 draft -> published 单向流转，archived 为保留值
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

const (
	ServiceName = "posts-service"
)
