package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yigit/orghub/internal/pkg/apperrors"
	"github.com/yigit/orghub/internal/pkg/logger"
	"github.com/yigit/orghub/internal/pkg/validation"
)

// MaxImageSize caps uploaded logos and photos
const MaxImageSize = 5 << 20

// LocalStorage saves uploads to the local filesystem and resolves stored asset paths.
type LocalStorage struct {
	// basePath is the upload directory, relative to assetRoot when not absolute
	basePath string
	// assetRoot is the directory stored logo and photo paths are relative to
	assetRoot string
}

// NewLocalStorage creates a LocalStorage, making sure the upload directory exists.
func NewLocalStorage(basePath, assetRoot string) (*LocalStorage, error) {
	if assetRoot == "" {
		assetRoot = "."
	}

	absRoot, err := filepath.Abs(assetRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve asset root %s: %w", assetRoot, err)
	}

	if err := os.MkdirAll(joinRoot(absRoot, basePath), os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Str("assetRoot", absRoot).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath:  basePath,
		assetRoot: absRoot,
	}, nil
}

func joinRoot(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// SaveFileWithPath saves an image upload under subPath with a generated name and
// returns the stored path (upload dir + subPath + name) to write into the data file.
func (ls *LocalStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", apperrors.NewBadRequestError("no file uploaded")
	}
	if !validation.IsImagePath(fileHeader.Filename) {
		return "", apperrors.NewBadRequestError("only .png, .jpg, .jpeg and .bmp images are accepted")
	}
	if fileHeader.Size > MaxImageSize {
		return "", apperrors.NewBadRequestError("image exceeds the 5 MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	storedDir := ls.storedDir(subPath)
	fullDirPath := joinRoot(ls.assetRoot, storedDir)
	if err := os.MkdirAll(fullDirPath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	uniqueFilename := uuid.New().String() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	storedPath := filepath.ToSlash(filepath.Join(storedDir, uniqueFilename))
	logger.Info().Str("filename", fileHeader.Filename).Str("storedPath", storedPath).Msg("File saved successfully")
	return storedPath, nil
}

// storedDir is the upload directory of subPath, relative to the asset root
func (ls *LocalStorage) storedDir(subPath string) string {
	return filepath.Join(ls.basePath, filepath.Clean("/" + subPath)[1:])
}

// InScope reports whether storedPath lies inside the upload directory of subPath
func (ls *LocalStorage) InScope(storedPath, subPath string) bool {
	if storedPath == "" || storedPath == NoPhoto {
		return false
	}
	scopeDir := joinRoot(ls.assetRoot, ls.storedDir(subPath))
	physicalPath := joinRoot(ls.assetRoot, filepath.FromSlash(storedPath))
	rel, err := filepath.Rel(scopeDir, physicalPath)
	return err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// DeleteFile removes an upload stored under subPath. Paths outside that directory,
// placeholders and missing files are ignored, so replacing a seeded logo never deletes
// a bundled asset and one organization never deletes another organization's upload.
func (ls *LocalStorage) DeleteFile(storedPath, subPath string) error {
	if !ls.InScope(storedPath, subPath) {
		logger.Debug().Str("path", storedPath).Str("scope", subPath).Msg("Skipping delete of file outside its upload directory")
		return nil
	}

	physicalPath := joinRoot(ls.assetRoot, filepath.FromSlash(storedPath))
	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// ResolveAssetPath returns the absolute path of a stored asset when the file exists,
// and the raw stored value otherwise (including the NoPhoto placeholder).
func (ls *LocalStorage) ResolveAssetPath(storedPath string) string {
	if storedPath == "" || storedPath == NoPhoto {
		return storedPath
	}

	absPath := joinRoot(ls.assetRoot, filepath.FromSlash(storedPath))
	if _, err := os.Stat(absPath); err != nil {
		return storedPath
	}
	return absPath
}
