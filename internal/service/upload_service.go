package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/stemsi/bezem-backend/internal/config"
)

// Sentinel errors for workbook uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

const workbookExt = ".xlsx"

// Content types browsers send for .xlsx files.
var allowedMIMETypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/octet-stream": true,
	"application/zip":          true,
	"":                         true,
}

// UploadService stores uploaded workbooks until the import worker picks
// them up.
type UploadService struct {
	cfg *config.Config
}

// NewUploadService creates a new UploadService.
func NewUploadService(cfg *config.Config) *UploadService {
	return &UploadService{cfg: cfg}
}

// Validate checks the name, content type and size of an upload.
func (s *UploadService) Validate(header *multipart.FileHeader) error {
	if !strings.EqualFold(filepath.Ext(header.Filename), workbookExt) {
		return fmt.Errorf("%w: %s (allowed: %s)", ErrUnsupportedFileType, header.Filename, workbookExt)
	}
	contentType := header.Header.Get("Content-Type")
	if !allowedMIMETypes[contentType] {
		return fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}
	if header.Size > s.cfg.MaxUploadBytes {
		return fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}
	return nil
}

// SaveWorkbook validates an upload and saves it under a UUID filename.
// Returns the path of the saved file.
func (s *UploadService) SaveWorkbook(file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := s.Validate(header); err != nil {
		return "", err
	}

	dir := filepath.Join(s.cfg.UploadDir, "imports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	destPath := filepath.Join(dir, uuid.New().String()+workbookExt)
	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	// The header size is client supplied; bound the copy as well.
	n, err := io.Copy(dst, io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		_ = os.Remove(destPath)
		return "", fmt.Errorf("write file: %w", err)
	}
	if n > s.cfg.MaxUploadBytes {
		_ = os.Remove(destPath)
		return "", fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.cfg.MaxUploadBytes)
	}

	return destPath, nil
}
