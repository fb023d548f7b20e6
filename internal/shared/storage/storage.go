// Package storage keeps uploaded leave proof files on local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/apperror"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	ProofDir     = "leave_proofs"
	MaxProofSize = 5 << 20
)

var allowedProofTypes = []string{"application/pdf", "image/png", "image/jpeg"}

var (
	ErrFileTooLarge = apperror.New(
		apperror.CodeValidation,
		"Proof file must not be larger than 5 MB",
		http.StatusUnprocessableEntity,
	)
	ErrUnsupportedType = apperror.New(
		apperror.CodeUnsupportedMedia,
		"Proof file must be a pdf, png, jpg or jpeg",
		http.StatusUnsupportedMediaType,
	)
	ErrFileNotFound = apperror.New(
		apperror.CodeNotFound,
		"Proof file not found",
		http.StatusNotFound,
	)
)

type Upload struct {
	Filename string
	Content  io.Reader
}

type File struct {
	io.ReadCloser
	ContentType string
	Name        string
}

//go:generate mockgen -source=storage.go -destination=mock/storage_mock.go -package=mock
type Storage interface {
	Save(ctx context.Context, upload Upload) (string, error)
	Delete(ctx context.Context, ref string) error
	Open(ctx context.Context, ref string) (*File, error)
}

type localStorage struct {
	root string
}

func NewLocalStorage(root string) (Storage, error) {
	if err := os.MkdirAll(filepath.Join(root, ProofDir), 0o755); err != nil {
		return nil, err
	}
	return &localStorage{root: root}, nil
}

// Save validates the upload by content, not by the client's filename, and
// returns a reference relative to the storage root.
func (s *localStorage) Save(ctx context.Context, upload Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(upload.Content, MaxProofSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxProofSize {
		return "", ErrFileTooLarge
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedProofTypes...) {
		return "", ErrUnsupportedType
	}

	ref := path.Join(ProofDir, uuid.NewString()+mtype.Extension())
	if err := os.WriteFile(s.resolve(ref), data, 0o644); err != nil {
		return "", err
	}

	return ref, nil
}

// Delete is a no-op for a missing file.
func (s *localStorage) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(s.resolve(ref))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *localStorage) Open(ctx context.Context, ref string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ref == "" {
		return nil, ErrFileNotFound
	}

	f, err := os.Open(s.resolve(ref))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	head := make([]byte, 3072)
	n, _ := io.ReadFull(f, head)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}

	return &File{
		ReadCloser:  f,
		ContentType: mimetype.Detect(head[:n]).String(),
		Name:        path.Base(ref),
	}, nil
}

// resolve keeps refs inside the storage root.
func (s *localStorage) resolve(ref string) string {
	clean := path.Clean("/" + strings.ReplaceAll(ref, "\\", "/"))
	return filepath.Join(s.root, filepath.FromSlash(clean))
}
