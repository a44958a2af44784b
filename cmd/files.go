package cmd

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"kyccheck/internal/ocr"
	"kyccheck/internal/textextract"
)

// validateDocumentFile checks that path is a readable, non-empty regular file
// within the synchronous processing size limit.
func validateDocumentFile(path string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", path).
				Msg("Document file not found")
			return nil, fmt.Errorf("document file not found: %s", path)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", path).
				Msg("Permission denied accessing document file")
			return nil, fmt.Errorf("permission denied accessing document file: %s", path)
		}
		return nil, fmt.Errorf("error accessing document file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().
			Str("file", path).
			Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", path)
	}

	if fileInfo.Size() == 0 {
		log.Error().
			Str("file", path).
			Msg("Document file is empty")
		return nil, fmt.Errorf("document file is empty: %s", path)
	}

	if fileInfo.Size() > ocr.MaxFileSizeBytes {
		log.Error().
			Str("file", path).
			Int64("size", fileInfo.Size()).
			Int64("max_size", ocr.MaxFileSizeBytes).
			Msg("Document file exceeds maximum size limit")
		return nil, fmt.Errorf("document file too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), ocr.MaxFileSizeBytes)
	}

	return fileInfo, nil
}

// detectMediaType sniffs the media type of f from its content, falling back
// to the file extension. f is rewound afterwards.
func detectMediaType(f io.ReadSeeker, name string) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read file header: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind file: %w", err)
	}

	detected := textextract.NormalizeMediaType(http.DetectContentType(head[:n]))
	if textextract.Supported(detected) {
		return detected, nil
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		return textextract.NormalizeMediaType(byExt), nil
	}
	return detected, nil
}
