package constants

import "strings"

// MimeTypes maps file extensions to their corresponding MIME types
var MimeTypes = map[string]string{
	// Image formats
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",

	// Video formats
	".mp4": "video/mp4",
	".3gp": "video/3gpp",
	".mov": "video/quicktime",
	".mkv": "video/x-matroska",

	// Audio formats
	".aac":  "audio/aac",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".amr":  "audio/amr",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".wav":  "audio/wav",

	// Document formats
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// mimePrefixToMediaType maps a MIME type family to the stored media_type value
var mimePrefixToMediaType = []struct {
	prefix    string
	mediaType string
}{
	{"image/", "image"},
	{"video/", "video"},
	{"audio/", "audio"},
	{"application/", "document"},
	{"text/", "document"},
}

// MimeTypeForExtension returns the MIME type of a lower-cased extension such as ".png"
func MimeTypeForExtension(ext string) (string, bool) {
	mime, ok := MimeTypes[strings.ToLower(ext)]
	return mime, ok
}

// MediaTypeForMime returns the media_type family of a MIME type
func MediaTypeForMime(mime string) (string, bool) {
	for _, entry := range mimePrefixToMediaType {
		if strings.HasPrefix(mime, entry.prefix) {
			return entry.mediaType, true
		}
	}
	return "", false
}
