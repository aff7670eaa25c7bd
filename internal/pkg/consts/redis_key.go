package consts

const (
	AuthTokenKey   = "auth:token:"
	PostPopularKey = "post:popular"
)

const (
	PopularRefreshLock = "lock:popular:refresh"
)
