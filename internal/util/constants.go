package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const MimeAudio = "audio/"

// http.DetectContentType reports ogg, webm and m4a audio under their container types
var AllowedAudioMimeTypes = []string{MimeAudio, "application/ogg", "video/webm", "video/mp4"}

var AllowedAudioExtensions = []string{".mp3", ".wav", ".ogg", ".m4a", ".aac", ".webm"}

const (
	// ContextUserKey is where AuthMiddleware stores *Claims
	ContextUserKey   = "user"
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)
