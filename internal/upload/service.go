package upload

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
	"github.com/wichananm65/tabdil-hub-backend/internal/validation"
)

const keyPrefix = "uploads/"

type Result struct {
	URL string `json:"url"`
}

type Service struct {
	host         ImageHost
	maxDimension int
	log          *slog.Logger
	newID        func() string
}

func NewService(host ImageHost, maxDimension int, log *slog.Logger) *Service {
	return &Service{
		host:         host,
		maxDimension: maxDimension,
		log:          log,
		newID:        uuid.NewString,
	}
}

func (s *Service) Upload(ctx context.Context, data []byte) (Result, error) {
	img, err := Normalise(data, s.maxDimension)
	if errors.Is(err, errUnsupported) {
		return Result{}, apperror.Validation("Only image files are allowed",
			[]validation.FieldError{{Field: "file", Rule: "image"}})
	}
	if err != nil {
		return Result{}, apperror.Validation("Image could not be decoded",
			[]validation.FieldError{{Field: "file", Rule: "image"}})
	}

	key := keyPrefix + s.newID() + "." + img.Ext
	url, err := s.host.Put(ctx, key, img.ContentType, img.Data)
	if err != nil {
		s.log.ErrorContext(ctx, "upload image", "key", key, "error", err)
		return Result{}, apperror.Internal(apperror.CodeUploadFailed, "Image upload failed", err)
	}
	s.log.DebugContext(ctx, "image uploaded", "key", key, "bytes", len(img.Data))
	return Result{URL: url}, nil
}
