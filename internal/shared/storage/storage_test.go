package storage_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Save(ctx, storage.Upload{Filename: "note.pdf", Content: bytes.NewReader(pdfBytes)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, storage.ProofDir+"/"))
	assert.True(t, strings.HasSuffix(ref, ".pdf"))

	f, err := store.Open(ctx, ref)
	require.NoError(t, err)
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, pdfBytes, got)
	assert.Equal(t, "application/pdf", f.ContentType)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = store.Open(ctx, ref)
	assert.ErrorIs(t, err, storage.ErrFileNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, ref))
}

func TestLocalStorage_RejectsUnsupportedType(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), storage.Upload{
		Filename: "fake.pdf",
		Content:  strings.NewReader("plain text pretending to be a pdf"),
	})

	assert.ErrorIs(t, err, storage.ErrUnsupportedType)
}

func TestLocalStorage_RejectsLargeFile(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	big := append(append([]byte{}, pdfBytes...), make([]byte, storage.MaxProofSize)...)
	_, err = store.Save(context.Background(), storage.Upload{Filename: "big.pdf", Content: bytes.NewReader(big)})

	assert.ErrorIs(t, err, storage.ErrFileTooLarge)
}

func TestLocalStorage_OpenRefusesTraversal(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, storage.ErrFileNotFound)
}
