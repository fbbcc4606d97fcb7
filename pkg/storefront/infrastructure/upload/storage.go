package upload

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	MaxImageSize = 5 << 20
	// URLPrefix is where the upload directory is served from.
	URLPrefix = "/uploads/"

	productDir = "products"
)

var (
	ErrTooLarge = errors.New("file is larger than 5MB")
	ErrNotImage = errors.New("only image files are allowed")
	ErrEmpty    = errors.New("file is empty")
)

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

type Storage struct {
	dir string
}

func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Join(dir, productDir), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create upload directory")
	}
	return &Storage{dir: dir}, nil
}

func (s *Storage) Dir() string {
	return s.dir
}

// SaveProductImage stores the content under a collision-free name and returns its public URL.
// The type is sniffed from the bytes; the client supplied name only contributes a readable prefix.
func (s *Storage) SaveProductImage(r io.Reader, originalName string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return "", errors.Wrap(err, "failed to read upload")
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if len(data) > MaxImageSize {
		return "", ErrTooLarge
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", ErrNotImage
	}

	name := baseName(originalName) + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12] + mime.Extension()
	target := filepath.Join(s.dir, productDir, name)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", errors.Wrap(err, "failed to store upload")
	}
	return path.Join(URLPrefix, productDir, name), nil
}

func baseName(originalName string) string {
	name := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	name = strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if name == "" || name == "." {
		return "product"
	}
	if len(name) > 40 {
		name = name[:40]
	}
	return name
}
