package service

import (
	"os"
	"path/filepath"
	"strings"

	"wasim/internal/constants"
	"wasim/internal/errors"
	"wasim/internal/models"
)

const octetStream = "application/octet-stream"

// describeMedia derives media metadata from a path. Only the extension and, when the
// file exists, its size are used; no bytes are read.
func describeMedia(mediaPath string) (*models.MediaInfo, error) {
	ext := strings.ToLower(filepath.Ext(mediaPath))
	mime, ok := constants.MimeTypeForExtension(ext)
	if !ok {
		return nil, errors.NewUnsupportedMediaTypeError(mediaPath)
	}
	mediaType, ok := constants.MediaTypeForMime(mime)
	if !ok {
		return nil, errors.NewUnsupportedMediaTypeError(mediaPath)
	}

	return &models.MediaInfo{
		MediaType:              models.MediaType(mediaType),
		FileName:               filepath.Base(mediaPath),
		MimeType:               mime,
		SimulatedLocalPath:     mediaPath,
		SimulatedFileSizeBytes: fileSize(mediaPath),
	}, nil
}

// describeAudio always records an audio message; the MIME type falls back to octet-stream
func describeAudio(mediaPath string) *models.MediaInfo {
	mime, ok := constants.MimeTypeForExtension(filepath.Ext(mediaPath))
	if !ok {
		mime = octetStream
	}
	return &models.MediaInfo{
		MediaType:              models.MediaTypeAudio,
		FileName:               filepath.Base(mediaPath),
		MimeType:               mime,
		SimulatedLocalPath:     mediaPath,
		SimulatedFileSizeBytes: fileSize(mediaPath),
	}
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0
	}
	return info.Size()
}
