// Package filesvc stores uploaded files on a local filesystem tree that is
// served back as static media.
package filesvc

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/walimu/core"
)

// Kind scopes an upload: it decides the destination directory, the size
// ceiling and the accepted content types.
type Kind string

const (
	KindAvatar  Kind = "avatar"
	KindHero    Kind = "hero"
	KindGeneral Kind = "general"
	KindFiles   Kind = "files"
)

// KindFromString maps an upload "type" form value to its Kind.
func KindFromString(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindAvatar, KindHero, KindGeneral, KindFiles:
		return k, true
	}
	return "", false
}

var imageContentTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func (k Kind) isImage() bool { return k != KindFiles }

func (k Kind) maxSize(conf *core.Config) int64 {
	if k.isImage() {
		return conf.Media.ImageMaxSize
	}
	return conf.Media.FileMaxSize
}

type SavedFile struct {
	Name         string // stored filename, unique
	OriginalName string
	ContentType  string
	Size         int64
	URL          string // public URL the file is served at
}

type Service interface {
	Save(kind Kind, fh *multipart.FileHeader) (SavedFile, error)
	Remove(kind Kind, name string) error
}

type localService struct {
	conf *core.Config
}

var _ Service = (*localService)(nil)

func NewLocalService(conf *core.Config) *localService {
	return &localService{conf: conf}
}

func fileTooBigErr(max int64) error {
	err := errors.New("file too big")
	return core.NewValidationError(err, core.FieldError{
		Field: "file",
		Error: "the file exceeds the maximum allowed size of " + humanSize(max),
	})
}

func unsupportedTypeErr(ct string) error {
	err := errors.New("unsupported file type")
	return core.NewValidationError(err, core.FieldError{
		Field: "file",
		Error: "unsupported file type " + ct,
	})
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return itoa(n>>20) + " MiB"
	case n >= 1<<10:
		return itoa(n>>10) + " KiB"
	}
	return itoa(n) + " B"
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Save validates the upload against its Kind and writes it under the media
// root with a fresh unique name. Size is checked before any byte hits disk.
func (svc *localService) Save(kind Kind, fh *multipart.FileHeader) (SavedFile, error) {
	if max := kind.maxSize(svc.conf); fh.Size > max {
		return SavedFile{}, fileTooBigErr(max)
	}

	src, err := fh.Open()
	if err != nil {
		return SavedFile{}, errors.Wrap(err, "opening upload")
	}
	defer src.Close()

	// sniff the real content type instead of trusting the request header
	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return SavedFile{}, errors.Wrap(err, "reading upload")
	}
	head = head[:n]
	ct := http.DetectContentType(head)
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = ct[:idx]
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if kind.isImage() {
		imgExt, ok := imageContentTypes[ct]
		if !ok {
			return SavedFile{}, unsupportedTypeErr(ct)
		}
		ext = imgExt
	}

	name := uuid.New().String() + ext
	dir := filepath.Join(svc.conf.Media.Root, string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return SavedFile{}, errors.Wrap(err, "creating media dir")
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return SavedFile{}, errors.Wrap(err, "creating media file")
	}
	defer dst.Close()

	written := int64(len(head))
	if _, err := dst.Write(head); err != nil {
		return SavedFile{}, errors.Wrap(err, "writing media file")
	}
	cnt, err := io.Copy(dst, src)
	if err != nil {
		return SavedFile{}, errors.Wrap(err, "writing media file")
	}
	written += cnt

	return SavedFile{
		Name:         name,
		OriginalName: fh.Filename,
		ContentType:  ct,
		Size:         written,
		URL:          svc.conf.Media.BaseURL + path.Join("/", string(kind), name),
	}, nil
}

func (svc *localService) Remove(kind Kind, name string) error {
	// name comes from our own records but never trust it blindly
	if name == "" || name != filepath.Base(name) {
		return errors.New("invalid file name")
	}
	err := os.Remove(filepath.Join(svc.conf.Media.Root, string(kind), name))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing media file")
	}
	return nil
}
