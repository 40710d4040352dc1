package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/model"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileRequired        = errors.New("file required")
)

// Allowed resume extensions.
var allowedResumeExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// MediaService handles resume storage on local disk.
type MediaService struct {
	cfg *config.Config
	now func() time.Time
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{cfg: cfg, now: time.Now}
}

// CheckResume validates extension and size without touching disk.
func (s *MediaService) CheckResume(file *model.ResumeFile) error {
	if file == nil || file.Filename == "" {
		return ErrFileRequired
	}
	if !allowedResumeExts[file.Ext()] {
		return fmt.Errorf("%w: %q (allowed: .pdf, .doc, .docx)", ErrUnsupportedFileType, file.Ext())
	}
	if file.Size() > s.cfg.MaxUploadBytes {
		return fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, file.Size(), s.cfg.MaxUploadBytes)
	}
	return nil
}

// SaveResume writes the resume under the upload dir as
// YYYYmmdd_HHMMSS_<name> and returns the file path.
func (s *MediaService) SaveResume(file *model.ResumeFile) (string, error) {
	if err := s.CheckResume(file); err != nil {
		return "", err
	}

	// Ensure upload directory exists.
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := s.now().Format("20060102_150405") + "_" + sanitizeFilename(file.Filename)
	destPath := filepath.Join(s.cfg.UploadDir, filename)

	if err := os.WriteFile(destPath, file.Data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return destPath, nil
}

// RemoveResume deletes a stored resume. Missing files are ignored.
func (s *MediaService) RemoveResume(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// sanitizeFilename strips directories and path separators from a client name.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == 0:
			return -1
		case r == ' ':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "resume"
	}
	return name
}
