package services

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// notFoundAs maps gorm.ErrRecordNotFound to the given domain error
func notFoundAs(err error, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func ptr[T any](v T) *T {
	return &v
}
