package services

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/diewo77/go-orcamentos/internal/metrics"
	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/diewo77/go-orcamentos/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// ImageService stages pictures attached to quote items until the quote is converted.
type ImageService struct {
	DB      *gorm.DB
	Files   storage.FileStore
	Log     *zap.Logger
	Metrics *metrics.Metrics
	TTL     time.Duration
	Now     func() time.Time
}

func NewImageService(db *gorm.DB, files storage.FileStore, log *zap.Logger, m *metrics.Metrics) *ImageService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageService{DB: db, Files: files, Log: log, Metrics: m, TTL: models.DefaultImageTTL, Now: time.Now}
}

// Stage stores the upload under tmp/quotes/<number>/items/<item>/ and records it.
func (s *ImageService) Stage(ctx context.Context, quoteID, itemID uint, fileName, caption string, r io.Reader) (*models.QuoteItemImage, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedImageExt[ext] {
		return nil, fieldError(ErrValidation, "file")
	}
	var q models.Quote
	if err := s.DB.WithContext(ctx).Select("id", "number", "status").First(&q, quoteID).Error; err != nil {
		return nil, translateDBError(err)
	}
	if !q.CanEdit() {
		return nil, ErrInvalidTransition
	}
	var item models.QuoteItem
	if err := s.DB.WithContext(ctx).Where("id = ? AND quote_id = ?", itemID, quoteID).Take(&item).Error; err != nil {
		return nil, translateDBError(err)
	}
	key := models.ImagePath(q.Number, item.ID, uuid.NewString()+ext)
	if err := s.Files.Save(ctx, key, r); err != nil {
		return nil, err
	}
	now := s.Now()
	img := models.QuoteItemImage{QuoteItemID: item.ID, Path: key, Caption: caption, UploadedAt: now, ExpiresAt: now.Add(s.TTL)}
	if err := s.DB.WithContext(ctx).Create(&img).Error; err != nil {
		_ = s.Files.Delete(ctx, key)
		return nil, translateDBError(err)
	}
	return &img, nil
}

// PurgeExpired removes images whose expiry has passed and returns how many rows were deleted.
func (s *ImageService) PurgeExpired(ctx context.Context) (int, error) {
	var expired []models.QuoteItemImage
	if err := s.DB.WithContext(ctx).Where("expires_at <= ?", s.Now()).Find(&expired).Error; err != nil {
		return 0, translateDBError(err)
	}
	if len(expired) == 0 {
		return 0, nil
	}
	ids := make([]uint, len(expired))
	for i := range expired {
		ids[i] = expired[i].ID
	}
	removeStagedFiles(ctx, s.Files, s.Log, s.Metrics, expired)
	if err := s.DB.WithContext(ctx).Delete(&models.QuoteItemImage{}, ids).Error; err != nil {
		return 0, translateDBError(err)
	}
	return len(expired), nil
}

// removeStagedFiles deletes image binaries. A missing file is expected and logged at debug;
// any other failure is logged as a warning and counted. Neither is returned.
func removeStagedFiles(ctx context.Context, files storage.FileStore, log *zap.Logger, m *metrics.Metrics, imgs []models.QuoteItemImage) {
	if files == nil {
		return
	}
	for _, img := range imgs {
		err := files.Delete(ctx, img.Path)
		switch {
		case err == nil:
		case storage.IsNotExist(err):
			log.Debug("staged image already gone", zap.String("path", img.Path))
		default:
			m.ImageCleanupFailure("unexpected")
			log.Warn("could not remove staged image", zap.String("path", img.Path), zap.Error(err))
		}
	}
}
