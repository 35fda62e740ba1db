package filestorage

import (
	"mime/multipart"
)

// NoPhoto is the placeholder stored when an organization or officer has no image
const NoPhoto = "No Photo"

// FileStorage defines the storage operations the services need for logos and photos
type FileStorage interface {
	// SaveFileWithPath stores an upload under subPath and returns the path to persist
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a previously stored upload, but only when it lives under
	// the same subPath it would have been saved to
	DeleteFile(storedPath, subPath string) error

	// InScope reports whether storedPath lies inside the upload directory of subPath.
	// An empty subPath stands for the whole upload directory.
	InScope(storedPath, subPath string) bool

	// ResolveAssetPath maps a stored path onto the filesystem, or returns it unchanged
	// when nothing exists there
	ResolveAssetPath(storedPath string) string
}
