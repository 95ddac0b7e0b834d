package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/bitfantasy/partslib/internal/parts/entity"
	"github.com/bitfantasy/partslib/internal/parts/events"
	"github.com/bitfantasy/partslib/internal/parts/metrics"
	"github.com/bitfantasy/partslib/internal/parts/repository"
	"github.com/bitfantasy/partslib/internal/parts/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileService 文件服务：存储区写入 + 文件记录
//
// The stored object is written (and synced) before the database row is
// committed, so a crash in between leaves at most an orphan object, never a
// row pointing at nothing.
type FileService struct {
	repos  *repository.Repositories
	store  storage.Store
	notify *notifier
	logger *zap.Logger
}

func NewFileService(repos *repository.Repositories, store storage.Store, notify *notifier, logger *zap.Logger) *FileService {
	return &FileService{repos: repos, store: store, notify: notify, logger: logger}
}

// UploadInput 上传参数
type UploadInput struct {
	OriginalName string `validate:"required,max=256"`
	Description  string `validate:"max=1000"`
	ContentType  string
	Size         int64
}

// Upload 保存上传文件并登记
func (s *FileService) Upload(ctx context.Context, r io.Reader, input *UploadInput) (*entity.File, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	id := uuid.New().String()
	key := storage.ObjectKey(id, input.OriginalName)
	contentType := input.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(input.OriginalName)); byExt != "" {
			contentType = byExt
		}
	}

	counter := &countingReader{r: r}
	if err := s.store.Put(ctx, key, counter, input.Size, contentType); err != nil {
		metrics.StoredFiles.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("store %s: %v: %w", key, err, ErrStorageIO)
	}
	metrics.StoredFiles.WithLabelValues("ok").Inc()

	now := time.Now()
	f := &entity.File{
		ID:           id,
		StoredName:   key,
		OriginalName: filepath.Base(input.OriginalName),
		Description:  input.Description,
		ContentType:  contentType,
		Size:         counter.n,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos.File.Create(ctx, f); err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.logger.Warn("Remove orphan object failed", zap.String("key", key), zap.Error(derr))
		}
		return nil, fmt.Errorf("register file: %w", err)
	}
	s.notify.emit(ctx, events.FileRegistered, map[string]string{"id": f.ID, "original_name": f.OriginalName})
	return f, nil
}

// Register 登记已存在于存储区的文件
// storedName is the object key; when its base name is a UUID it becomes the file id.
func (s *FileService) Register(ctx context.Context, storedName, originalName, description string) (*entity.File, error) {
	if strings.TrimSpace(storedName) == "" {
		return nil, fieldError("stored_name", "is required")
	}
	rc, err := s.store.Open(ctx, storedName)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, notFound("stored object", storedName)
		}
		return nil, fmt.Errorf("open %s: %v: %w", storedName, err, ErrStorageIO)
	}
	size, err := io.Copy(io.Discard, rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", storedName, err, ErrStorageIO)
	}

	id := strings.TrimSuffix(storedName, filepath.Ext(storedName))
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.New().String()
	}
	if originalName == "" {
		originalName = storedName
	}
	now := time.Now()
	f := &entity.File{
		ID:           id,
		StoredName:   storedName,
		OriginalName: originalName,
		Description:  description,
		ContentType:  mime.TypeByExtension(filepath.Ext(storedName)),
		Size:         size,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos.File.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("register file: %w", err)
	}
	s.notify.emit(ctx, events.FileRegistered, map[string]string{"id": f.ID, "original_name": f.OriginalName})
	return f, nil
}

func (s *FileService) Get(ctx context.Context, id string) (*entity.File, error) {
	f, err := s.repos.File.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("file", id)
		}
		return nil, err
	}
	return f, nil
}

func (s *FileService) List(ctx context.Context, filter repository.ListFilter) ([]entity.File, int64, error) {
	return s.repos.File.FindAll(ctx, filter)
}

// UpdateDescription 修改文件描述
func (s *FileService) UpdateDescription(ctx context.Context, id, description string) (*entity.File, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Description = description
	f.UpdatedAt = time.Now()
	if err := s.repos.File.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FileService) SetArchived(ctx context.Context, id string, archived bool) error {
	if err := s.repos.File.SetArchived(ctx, id, archived); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("file", id)
		}
		return err
	}
	return nil
}

// Open 打开文件内容用于下载，调用方负责关闭
func (s *FileService) Open(ctx context.Context, id string) (*entity.File, io.ReadCloser, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(ctx, f.StoredName)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %v: %w", f.StoredName, err, ErrStorageIO)
	}
	return f, rc, nil
}

// Delete 删除文件记录、组件关联与存储对象
func (s *FileService) Delete(ctx context.Context, id string) error {
	var stored string
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		f, err := tx.File.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("file", id)
			}
			return err
		}
		stored = f.StoredName
		if err := tx.Component.DeleteFileLinksByFile(ctx, id); err != nil {
			return err
		}
		if err := tx.Component.ClearCADFile(ctx, id); err != nil {
			return err
		}
		return tx.File.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, stored); err != nil {
		s.logger.Warn("Remove stored object failed", zap.String("key", stored), zap.Error(err))
	}
	s.notify.emit(ctx, events.FileDeleted, map[string]string{"id": id})
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
