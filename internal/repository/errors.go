package repository

import (
	"github.com/pkg/errors"
)

// ErrPersistence 持久层失败的统一错误种类，底层驱动错误在此收拢后再向上传播
var ErrPersistence = errors.New("persistence failure")

func wrapPersist(err error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(ErrPersistence, op+": "+err.Error())
}
