package handler

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-thoughts/errors"
)

// BucketInspector reports the state of the transcript bucket
type BucketInspector interface {
	GetBucketInfo(ctx context.Context) (map[string]interface{}, error)
}

// Storage handles transcript storage endpoints
type Storage struct {
	bucket BucketInspector
	logger *zap.Logger
}

// NewStorageHandler creates a new storage handler
func NewStorageHandler(bucket BucketInspector, logger *zap.Logger) *Storage {
	return &Storage{
		bucket: bucket,
		logger: logger,
	}
}

// GetInfo handles GET /v1/storage/info
func (h *Storage) GetInfo(c echo.Context) error {
	info, err := h.bucket.GetBucketInfo(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, errors.ErrStorageFailed("bucket info", err))
	}
	return HandleSuccess(h.logger, c, info)
}
