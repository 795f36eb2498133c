package store

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Kind selects the public sub-directory an artifact is written to.
type Kind string

const (
	KindPreview  Kind = "previews"
	KindDownload Kind = "downloads"
)

// FileSink writes generated artifacts under a public directory that is served statically.
type FileSink struct {
	root string
	dirs map[Kind]string
}

// NewFileSink roots previews and downloads under publicDir. Empty sub-directory names fall back
// to the kind name.
func NewFileSink(publicDir, previewsDir, downloadsDir string) *FileSink {
	dirs := map[Kind]string{
		KindPreview:  previewsDir,
		KindDownload: downloadsDir,
	}
	for k, v := range dirs {
		if strings.TrimSpace(v) == "" {
			dirs[k] = string(k)
		}
	}
	return &FileSink{root: publicDir, dirs: dirs}
}

// NewPresentationID returns the millisecond timestamp id used in artifact names.
func NewPresentationID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// FileName is the artifact name for a presentation id, e.g. presentation_1700000000000.pptx.
func FileName(presentationID, ext string) string {
	return fmt.Sprintf("presentation_%s.%s", presentationID, strings.TrimPrefix(ext, "."))
}

// Dir is the directory artifacts of kind are written to.
func (s *FileSink) Dir(kind Kind) string {
	return filepath.Join(s.root, s.dirs[kind])
}

// URL is the public URL of a file written by Save.
func (s *FileSink) URL(kind Kind, name string) string {
	return path.Join("/", filepath.ToSlash(s.dirs[kind]), name)
}

// Save writes data as presentation_<id>.<ext> and returns its path and public URL.
func (s *FileSink) Save(kind Kind, presentationID, ext string, data []byte) (string, string, error) {
	if _, ok := s.dirs[kind]; !ok {
		return "", "", fmt.Errorf("unknown artifact kind %q", kind)
	}
	if presentationID == "" || strings.ContainsAny(presentationID, `/\`) || strings.Contains(presentationID, "..") {
		return "", "", fmt.Errorf("invalid presentation id %q", presentationID)
	}

	dir := s.Dir(kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	name := FileName(presentationID, ext)
	filePath := filepath.Join(dir, name)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write file %s: %w", filePath, err)
	}
	return filePath, s.URL(kind, name), nil
}
