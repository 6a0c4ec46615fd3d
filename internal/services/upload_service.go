package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"mahberhub/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

type uploadService struct {
	cfg    *config.UploadConfig
	logger *zap.Logger
}

// NewUploadService creates the local disk upload service and ensures
// the upload directory exists.
func NewUploadService(cfg *config.UploadConfig, logger *zap.Logger) (UploadService, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &uploadService{cfg: cfg, logger: logger}, nil
}

// SaveImage stores an uploaded image under a random name and returns
// its public URL path. Only jpeg, png and webp are accepted.
func (s *uploadService) SaveImage(ctx context.Context, filename string, size int64, content io.Reader) (string, error) {
	if size > s.cfg.MaxSizeBytes {
		return "", NewBadRequestError(fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxSizeBytes))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExtensions[ext] {
		return "", NewBadRequestError("only jpeg, png and webp images are allowed")
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(s.cfg.Dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return "", NewInternalError("failed to store upload", err)
	}
	defer f.Close()

	// Copy one byte past the limit so oversized streams with a lying
	// size header are caught too.
	written, err := io.Copy(f, io.LimitReader(content, s.cfg.MaxSizeBytes+1))
	if err != nil {
		os.Remove(dst)
		return "", NewInternalError("failed to write upload", err)
	}
	if written > s.cfg.MaxSizeBytes {
		os.Remove(dst)
		return "", NewBadRequestError(fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxSizeBytes))
	}

	s.logger.Info("image stored",
		zap.String("file", name),
		zap.Int64("bytes", written),
	)
	return path.Join(s.cfg.PublicPath, name), nil
}
