package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type Kind int

const (
	KindImage Kind = iota
	KindVideo
)

func (k Kind) String() string {
	if k == KindVideo {
		return "video"
	}
	return "image"
}

// extensions maps each accepted content type to the extension the staged
// copy gets. The image encoder picks its format from that extension.
var extensions = map[Kind]map[string]string{
	KindImage: {
		"image/png":  ".png",
		"image/jpeg": ".jpg",
		"image/jpg":  ".jpg",
		"image/gif":  ".gif",
	},
	KindVideo: {
		"video/mp4":        ".mp4",
		"video/webm":       ".webm",
		"video/quicktime":  ".mov",
		"video/x-matroska": ".mkv",
	},
}

// StagedFile is a multipart upload copied to local disk.
type StagedFile struct {
	Path        string
	ContentType string
	Kind        Kind
}

func (f *StagedFile) Remove() {
	if f != nil && f.Path != "" {
		_ = os.Remove(f.Path)
	}
}

type Stager struct {
	dir      string
	maxBytes map[Kind]int64
}

func NewStager(dir string, maxImageMB, maxVideoMB int) (*Stager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Stager{
		dir: dir,
		maxBytes: map[Kind]int64{
			KindImage: int64(maxImageMB) << 20,
			KindVideo: int64(maxVideoMB) << 20,
		},
	}, nil
}

func (s *Stager) Validate(h *multipart.FileHeader, kind Kind) error {
	if h.Size == 0 {
		return fmt.Errorf("%w: empty %s", ErrInvalidFile, kind)
	}
	if h.Size > s.maxBytes[kind] {
		return fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, kind, s.maxBytes[kind])
	}
	if _, ok := extensions[kind][h.Header.Get("Content-Type")]; !ok {
		return fmt.Errorf("%w: unsupported %s content type %q", ErrInvalidFile, kind, h.Header.Get("Content-Type"))
	}
	return nil
}

// Stage validates h and copies it under a fresh name in the staging dir.
// The caller removes the copy once it has been forwarded.
func (s *Stager) Stage(h *multipart.FileHeader, kind Kind) (*StagedFile, error) {
	if err := s.Validate(h, kind); err != nil {
		return nil, err
	}
	contentType := h.Header.Get("Content-Type")
	src, err := h.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	defer src.Close()

	path := filepath.Join(s.dir, uuid.NewString()+extensions[kind][contentType])
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", kind, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("stage %s: %w", kind, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("stage %s: %w", kind, err)
	}
	return &StagedFile{Path: path, ContentType: contentType, Kind: kind}, nil
}
