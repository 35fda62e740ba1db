package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/orghub/internal/pkg/apperrors"
)

func multipartFile(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}

func TestLocalStorage_SaveResolveDelete(t *testing.T) {
	root := t.TempDir()
	ls, err := NewLocalStorage("uploads", root)
	require.NoError(t, err)

	stored, err := ls.SaveFileWithPath(multipartFile(t, "logo", "Logo.PNG", []byte("png-bytes")), "logos/7")
	require.NoError(t, err)
	assert.Regexp(t, `^uploads/logos/7/[0-9a-f-]{36}\.png$`, stored)

	resolved := ls.ResolveAssetPath(stored)
	assert.Equal(t, filepath.Join(root, filepath.FromSlash(stored)), resolved)
	data, err := os.ReadFile(resolved)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, ls.DeleteFile(stored, "logos/7"))
	assert.Equal(t, stored, ls.ResolveAssetPath(stored), "missing files resolve to the raw path")
}

func TestLocalStorage_RejectsNonImages(t *testing.T) {
	ls, err := NewLocalStorage("uploads", t.TempDir())
	require.NoError(t, err)

	_, err = ls.SaveFileWithPath(multipartFile(t, "logo", "notes.pdf", []byte("pdf")), "logos")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = ls.SaveFileWithPath(nil, "logos")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestLocalStorage_ResolveAssetPath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "assets", "cs.png"), []byte("x"), 0o644))

	ls, err := NewLocalStorage("uploads", root)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "assets", "cs.png"), ls.ResolveAssetPath("assets/cs.png"))
	assert.Equal(t, "assets/missing.png", ls.ResolveAssetPath("assets/missing.png"))
	assert.Equal(t, NoPhoto, ls.ResolveAssetPath(NoPhoto))
}

func TestLocalStorage_DeleteIgnoresBundledAssets(t *testing.T) {
	root := t.TempDir()
	bundled := filepath.Join(root, "assets", "cs.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(bundled), 0o755))
	require.NoError(t, os.WriteFile(bundled, []byte("x"), 0o644))

	ls, err := NewLocalStorage("uploads", root)
	require.NoError(t, err)

	require.NoError(t, ls.DeleteFile("assets/cs.png", ""))
	assert.FileExists(t, bundled)
}

func TestLocalStorage_DeleteStaysInsideSubPath(t *testing.T) {
	root := t.TempDir()
	ls, err := NewLocalStorage("uploads", root)
	require.NoError(t, err)

	other, err := ls.SaveFileWithPath(multipartFile(t, "logo", "two.png", []byte("png")), "logos/2")
	require.NoError(t, err)
	sibling, err := ls.SaveFileWithPath(multipartFile(t, "logo", "ten.png", []byte("png")), "logos/10")
	require.NoError(t, err)

	assert.True(t, ls.InScope(other, "logos/2"))
	assert.True(t, ls.InScope(other, ""))
	assert.False(t, ls.InScope(other, "logos/1"))
	assert.False(t, ls.InScope(sibling, "logos/1"))
	assert.False(t, ls.InScope("uploads/logos/1/../2/x.png", "logos/1"))
	assert.False(t, ls.InScope("assets/cs.png", ""))
	assert.False(t, ls.InScope(NoPhoto, ""))

	require.NoError(t, ls.DeleteFile(other, "logos/1"))
	require.NoError(t, ls.DeleteFile(sibling, "logos/1"))
	assert.FileExists(t, filepath.Join(root, filepath.FromSlash(other)))
	assert.FileExists(t, filepath.Join(root, filepath.FromSlash(sibling)))

	require.NoError(t, ls.DeleteFile(other, "logos/2"))
	assert.NoFileExists(t, filepath.Join(root, filepath.FromSlash(other)))
}
