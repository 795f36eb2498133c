package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileSink_Save(t *testing.T) {
	root := t.TempDir()
	sink := NewFileSink(root, "previews", "")

	path, url, err := sink.Save(KindPreview, "1700000000000", "html", []byte("<html></html>"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if want := filepath.Join(root, "previews", "presentation_1700000000000.html"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if url != "/previews/presentation_1700000000000.html" {
		t.Errorf("url = %q", url)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "<html></html>" {
		t.Errorf("file content = %q, %v", data, err)
	}

	_, url, err = sink.Save(KindDownload, "7", ".pptx", []byte("PK"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if url != "/downloads/presentation_7.pptx" {
		t.Errorf("download url = %q", url)
	}
}

func TestFileSink_Rejects(t *testing.T) {
	sink := NewFileSink(t.TempDir(), "", "")
	for _, id := range []string{"", "../etc", "a/b", `a\b`} {
		if _, _, err := sink.Save(KindPreview, id, "html", nil); err == nil {
			t.Errorf("Save(%q) should fail", id)
		}
	}
	if _, _, err := sink.Save(Kind("secrets"), "1", "html", nil); err == nil {
		t.Error("unknown kind should fail")
	}
}

func TestFileSink_UnwritableRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	_ = os.WriteFile(root, []byte("x"), 0644)
	sink := NewFileSink(root, "previews", "downloads")
	if _, _, err := sink.Save(KindPreview, "1", "html", nil); err == nil {
		t.Error("expected error when public dir is a file")
	}
}

func TestNewPresentationID(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	if got := NewPresentationID(now); got != "1700000000123" {
		t.Errorf("NewPresentationID() = %q", got)
	}
	if got := FileName("5", "pptx"); got != "presentation_5.pptx" {
		t.Errorf("FileName() = %q", got)
	}
}
