package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/cybrella/cybrella-api/pkg/errors"
	"github.com/cybrella/cybrella-api/pkg/storage"
)

// UploadService stores asset files (posters, payment proofs, ID cards) and
// returns their public URLs. Unknown folders are coerced to the default
// rather than rejected, so a misconfigured client still lands its file
// somewhere retrievable.
type UploadService struct {
	store          storage.ObjectStore
	allowedFolders map[string]struct{}
	defaultFolder  string
	maxSizeBytes   int64
	logger         *zap.Logger
}

// NewUploadService constructs an UploadService.
func NewUploadService(store storage.ObjectStore, allowedFolders []string, defaultFolder string, maxSizeBytes int64, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]struct{}, len(allowedFolders))
	for _, f := range allowedFolders {
		allowed[f] = struct{}{}
	}
	return &UploadService{
		store:          store,
		allowedFolders: allowed,
		defaultFolder:  defaultFolder,
		maxSizeBytes:   maxSizeBytes,
		logger:         logger,
	}
}

// Upload validates the file size, normalises the target folder, and writes
// the file under a collision-free generated name. Returns the public URL.
func (s *UploadService) Upload(ctx context.Context, folder string, header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "no file provided")
	}
	if s.maxSizeBytes > 0 && header.Size > s.maxSizeBytes {
		return "", appErrors.Clone(appErrors.ErrFileTooLarge, fmt.Sprintf("file exceeds %d bytes", s.maxSizeBytes))
	}

	folder = s.normaliseFolder(folder)

	file, err := header.Open()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open uploaded file")
	}
	defer file.Close()

	filename := s.generateName(header.Filename)
	contentType := header.Header.Get("Content-Type")

	url, err := s.store.Upload(ctx, folder, filename, file, header.Size, contentType)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	s.logger.Info("file stored",
		zap.String("folder", folder),
		zap.String("filename", filename),
		zap.Int64("size_bytes", header.Size))
	return url, nil
}

// UploadStream stores raw bytes under the given folder. Used by callers
// that do not go through multipart parsing.
func (s *UploadService) UploadStream(ctx context.Context, folder, originalName string, r io.Reader, size int64, contentType string) (string, error) {
	if s.maxSizeBytes > 0 && size > s.maxSizeBytes {
		return "", appErrors.Clone(appErrors.ErrFileTooLarge, fmt.Sprintf("file exceeds %d bytes", s.maxSizeBytes))
	}
	folder = s.normaliseFolder(folder)
	url, err := s.store.Upload(ctx, folder, s.generateName(originalName), r, size, contentType)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}
	return url, nil
}

// List returns the public URLs of every file in the folder.
func (s *UploadService) List(ctx context.Context, folder string) ([]string, error) {
	folder = s.normaliseFolder(folder)
	urls, err := s.store.List(ctx, folder)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list files")
	}
	return urls, nil
}

// normaliseFolder coerces anything outside the allow-list to the default.
func (s *UploadService) normaliseFolder(folder string) string {
	folder = strings.TrimSpace(strings.ToLower(folder))
	if _, ok := s.allowedFolders[folder]; !ok {
		return s.defaultFolder
	}
	return folder
}

func (s *UploadService) generateName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
}
