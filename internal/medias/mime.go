package medias

import (
	"path/filepath"
	"strings"
)

var mimeTypes = map[string]string{
	// Common MIME types
	// See https://developer.mozilla.org/en-US/docs/Web/HTTP/Basics_of_HTTP/MIME_types/Common_types
	".md":         "text/markdown",
	".aac":        "audio/aac",
	".avif":       "image/avif",
	".avi":        "video/x-msvideo",
	".bmp":        "image/bmp",
	".csv":        "text/csv",
	".docx":       "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".epub":       "application/epub+zip",
	".excalidraw": "application/vnd.excalidraw+json",
	".flac":       "audio/flac",
	".gif":        "image/gif",
	".jpeg":       "image/jpeg",
	".jpg":        "image/jpeg",
	".json":       "application/json",
	".m4a":        "audio/mp4",
	".mkv":        "video/x-matroska",
	".mov":        "video/quicktime",
	".mp3":        "audio/mpeg",
	".mp4":        "video/mp4",
	".mpeg":       "video/mpeg",
	".oga":        "audio/ogg",
	".ogg":        "audio/ogg",
	".ogv":        "video/ogg",
	".opus":       "audio/opus",
	".pdf":        "application/pdf",
	".png":        "image/png",
	".pptx":       "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".svg":        "image/svg+xml",
	".tif":        "image/tiff",
	".tiff":       "image/tiff",
	".txt":        "text/plain",
	".wav":        "audio/wav",
	".weba":       "audio/webm",
	".webm":       "video/webm",
	".webp":       "image/webp",
	".xlsx":       "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".zip":        "application/zip",
	".3gp":        "video/3gpp",

	// Check the full list when adding missing types
	// https://www.iana.org/assignments/media-types/media-types.xhtml
}

// MimeType returns the mime type for common file extensions.
func MimeType(extension string) string {
	mime, ok := mimeTypes[strings.ToLower(extension)]
	if !ok {
		// RFC 2046 declares:
		// The "octet-stream" subtype is used to indicate that a body contains arbitrary binary data.
		return "application/octet-stream"
	}
	return mime
}

// Kind classifies the target of a link.
type Kind int

const (
	KindUnknown Kind = iota
	KindPicture
	KindVideo
	KindAudio
	KindNote
	KindDiagram
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindPicture:
		return "picture"
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindNote:
		return "note"
	case KindDiagram:
		return "diagram"
	case KindDocument:
		return "document"
	}
	return "unknown"
}

// DetectKind returns the kind of file based on its extension.
func DetectKind(filename string) Kind {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return KindUnknown
	}
	mime := MimeType(ext)
	switch {
	case ext == ".md":
		return KindNote
	case ext == ".excalidraw":
		return KindDiagram
	case strings.HasPrefix(mime, "image/"):
		return KindPicture
	case strings.HasPrefix(mime, "video/"):
		return KindVideo
	case strings.HasPrefix(mime, "audio/"):
		return KindAudio
	case mime != "application/octet-stream":
		return KindDocument
	}
	return KindUnknown
}
