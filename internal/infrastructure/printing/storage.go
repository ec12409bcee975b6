package printing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrArtifactNotFound is returned by Get for a missing key
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactStorage stores generated PDFs
type ArtifactStorage interface {
	// Store saves a PDF and returns its key
	Store(ctx context.Context, req *StoreRequest) (*StoreResult, error)
	// Get retrieves a PDF by key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes a PDF; a missing key is not an error
	Delete(ctx context.Context, key string) error
	// URL returns a download location for key
	URL(ctx context.Context, key string) (string, error)
}

// StoreRequest contains the parameters for storing a PDF
type StoreRequest struct {
	// DocType groups artifacts by document variant
	DocType string
	// JobID is the generation job identifier
	JobID uuid.UUID
	// Filename is the download name, kept as metadata where supported
	Filename string
	// PDFData is the raw PDF content
	PDFData []byte
}

// StoreResult contains the result of storing a PDF
type StoreResult struct {
	// Key is the storage key (relative to the storage root)
	Key string
	// Size is the file size in bytes
	Size int64
}

// ArtifactKey builds {type}/{yyyy}/{mm}/{job}.pdf
func ArtifactKey(docType string, jobID uuid.UUID, at time.Time) string {
	return path.Join(docType, fmt.Sprintf("%d", at.Year()), fmt.Sprintf("%02d", at.Month()), jobID.String()+".pdf")
}

// ValidateStoreRequest checks the fields every backend needs
func ValidateStoreRequest(req *StoreRequest) error {
	if req == nil {
		return NewRenderError(ErrCodeStorageFailed, "store request is nil", nil)
	}
	if req.DocType == "" || containsDotDot(req.DocType) || strings.ContainsAny(req.DocType, `/\`) {
		return NewRenderError(ErrCodeStorageFailed, "invalid document type", nil)
	}
	if req.JobID == uuid.Nil {
		return NewRenderError(ErrCodeStorageFailed, "job ID is required", nil)
	}
	if len(req.PDFData) == 0 {
		return NewRenderError(ErrCodeStorageFailed, "PDF data is empty", nil)
	}
	return nil
}

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the root directory for PDF storage
	// Default: ./data/artifacts
	BasePath string
	// BaseURL is the URL prefix for downloading PDFs
	BaseURL string
	// Logger for operations
	Logger *zap.Logger
}

// FileSystemStorage stores PDFs on the local file system
type FileSystemStorage struct {
	config *FileSystemStorageConfig
	logger *zap.Logger
}

// NewFileSystemStorage creates a new file system based artifact storage
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config == nil {
		config = &FileSystemStorageConfig{}
	}

	if config.BasePath == "" {
		config.BasePath = "./data/artifacts"
	}
	if config.BaseURL == "" {
		config.BaseURL = "/api/v1/artifacts"
	}

	if err := os.MkdirAll(config.BasePath, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create storage directory: %s", config.BasePath), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileSystemStorage{
		config: config,
		logger: logger,
	}, nil
}

// Store saves a PDF file under {base}/{type}/{yyyy}/{mm}/{job}.pdf
func (s *FileSystemStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	if err := ValidateStoreRequest(req); err != nil {
		return nil, err
	}

	key := ArtifactKey(req.DocType, req.JobID, time.Now())
	fullPath := filepath.Join(s.config.BasePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create directory", err)
	}

	// Write to a temp file first so readers never see a partial PDF
	tmp := fullPath + ".tmp"
	if err := os.WriteFile(tmp, req.PDFData, 0o644); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		os.Remove(tmp)
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to move PDF file into place", err)
	}

	s.logger.Info("PDF stored",
		zap.String("key", key),
		zap.Int("size", len(req.PDFData)))

	return &StoreResult{
		Key:  key,
		Size: int64(len(req.PDFData)),
	}, nil
}

// Get retrieves a PDF file by its key
func (s *FileSystemStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrArtifactNotFound
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to open PDF file", err)
	}

	return file, nil
}

// Delete removes a PDF file
func (s *FileSystemStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return NewRenderError(ErrCodeStorageFailed, "failed to delete PDF file", err)
	}

	s.logger.Info("PDF deleted", zap.String("key", key))
	return nil
}

// CleanupOlderThan removes files older than the specified duration
func (s *FileSystemStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	deletedCount := 0

	err := filepath.WalkDir(s.config.BasePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".pdf" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(p); err == nil {
				deletedCount++
				s.logger.Debug("deleted old PDF", zap.String("path", p))
			}
		}
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return deletedCount, NewRenderError(ErrCodeStorageFailed, "cleanup walk failed", err)
	}

	s.logger.Info("cleanup completed",
		zap.Int("deleted", deletedCount),
		zap.Duration("age", age))

	return deletedCount, nil
}

// URL returns the download URL for a stored PDF
func (s *FileSystemStorage) URL(_ context.Context, key string) (string, error) {
	if _, err := s.resolve(key); err != nil {
		return "", err
	}
	return s.config.BaseURL + "/" + filepath.ToSlash(filepath.Clean(key)), nil
}

// resolve maps a key to a path under BasePath, rejecting traversal
func (s *FileSystemStorage) resolve(key string) (string, error) {
	cleanPath := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(cleanPath) || containsDotDot(key) {
		s.logger.Warn("blocked potentially malicious path",
			zap.String("key", key),
			zap.String("cleanPath", cleanPath))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}

	fullPath := filepath.Join(s.config.BasePath, cleanPath)

	absBase, err := filepath.Abs(s.config.BasePath)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve base path", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve file path", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		s.logger.Warn("path escape attempt blocked",
			zap.String("key", key),
			zap.String("absPath", absPath),
			zap.String("absBase", absBase))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}
	return fullPath, nil
}

// containsDotDot checks if a path contains ".." components
func containsDotDot(p string) bool {
	parts := strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	return slices.Contains(parts, "..")
}

// Ensure FileSystemStorage implements ArtifactStorage
var _ ArtifactStorage = (*FileSystemStorage)(nil)

// ValidKey reports whether key is a relative key without ".." segments
func ValidKey(key string) bool {
	return key != "" && !strings.HasPrefix(key, "/") && !strings.HasPrefix(key, `\`) && !containsDotDot(key)
}
