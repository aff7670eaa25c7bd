package service

import (
	"Inkstone/internal/repository"
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid   = errors.New("参数错误")
	ErrPostNotFound   = errors.New("帖子不存在")
	UnauthorizedError = errors.New("权限不足")
	UnExpectedError   = errors.New("系统异常，请稍后重试")
)

// ErrorMap 错误到 HTTP 业务码的映射，response 层用 errors.Is 解析
var ErrorMap = map[error]int{
	ErrParamInvalid:           BadRequest,
	ErrPostNotFound:           NotFound,
	UnauthorizedError:         Unauthorized,
	repository.ErrPersistence: InternalServerError,
	UnExpectedError:           InternalServerError,
}
