package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skillswap/skillswap-api/internal/models"
	"github.com/skillswap/skillswap-api/internal/repository"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type storageStub struct {
	names []string
	url   string
	err   error
}

func (s *storageStub) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	s.names = append(s.names, name)
	return s.url, nil
}

func newUploadFixture(t *testing.T, storage *storageStub, maxSizeMB int) UploadService {
	t.Helper()
	db := newServiceDB(t, &models.UploadRecord{})
	return NewUploadService(storage, repository.NewUploadRepository(db), maxSizeMB, testLogger())
}

func makeFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(int64(len(content)) + 10240)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestUploadStoresImageWithChecksum(t *testing.T) {
	storage := &storageStub{url: "https://cdn.example.com/avatar.png"}
	svc := newUploadFixture(t, storage, 5)

	response, err := svc.Upload(context.Background(), makeFileHeader(t, "My Avatar!.PNG", pngMagic), nil)
	require.NoError(t, err)
	require.Equal(t, storage.url, response.URL)
	require.Equal(t, "image", response.MimeType)
	require.Equal(t, int64(len(pngMagic)), response.SizeBytes)
	require.Len(t, response.Checksum, 64)

	// Uploaded name is sanitized but keeps its extension.
	require.Equal(t, []string{"my-avatar.png"}, storage.names)
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	storage := &storageStub{url: "https://cdn.example.com/x"}
	svc := newUploadFixture(t, storage, 5)

	_, err := svc.Upload(context.Background(), makeFileHeader(t, "notes.txt", []byte("plain text, not an image")), nil)
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)
	require.Empty(t, storage.names)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	storage := &storageStub{url: "https://cdn.example.com/x"}
	svc := newUploadFixture(t, storage, 1)

	oversized := make([]byte, 1<<20+1)
	copy(oversized, pngMagic)

	_, err := svc.Upload(context.Background(), makeFileHeader(t, "big.png", oversized), nil)
	require.ErrorIs(t, err, ErrUploadTooLarge)
	require.Empty(t, storage.names)
}

func TestUploadPropagatesStorageFailure(t *testing.T) {
	storage := &storageStub{err: errors.New("bucket unavailable")}
	svc := newUploadFixture(t, storage, 5)

	_, err := svc.Upload(context.Background(), makeFileHeader(t, "avatar.png", pngMagic), nil)
	require.Error(t, err)
}
