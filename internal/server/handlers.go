package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"kyccheck/internal/logger"
	"kyccheck/internal/pipeline"
	"kyccheck/internal/textextract"
)

const (
	welcomeMessage    = "Welcome to the Smart KYC Checker API. Please use the /check-kyc endpoint to upload documents."
	unreadableMessage = "Could not read text from one or both files. Please upload clearer images or valid, text-based PDFs."
)

// uploadFields are the multipart file fields of a check request.
var uploadFields = []string{"doc1", "doc2"}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": welcomeMessage})
}

func (s *Server) handleCheckKYC(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), s.log)

	dir, err := os.MkdirTemp(s.opts.TempDir, "kyc-upload-")
	if err != nil {
		writeInternalError(w, fmt.Errorf("create upload directory: %w", err))
		return
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Failed to remove upload directory")
		}
	}()

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	uploads, err := saveUploads(r, dir)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload exceeds the %d MB limit.", s.opts.MaxUploadBytes>>20))
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	docs := make([]pipeline.Document, len(uploadFields))
	for i, field := range uploadFields {
		f, err := os.Open(uploads[field].path)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		defer f.Close()
		docs[i] = pipeline.Document{Name: field, Content: f, MediaType: uploads[field].mediaType}
	}

	resp, err := s.checker.Check(r.Context(), docs[0], docs[1])
	if err != nil {
		if errors.Is(err, pipeline.ErrUnreadableDocument) {
			writeError(w, http.StatusBadRequest, unreadableMessage)
			return
		}
		log.Error().Err(err).Msg("KYC check failed")
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

type upload struct {
	path      string
	mediaType string
}

// saveUploads streams the doc1 and doc2 parts into dir. Other parts are
// skipped. The declared part content type is kept as the media type.
func saveUploads(r *http.Request, dir string) (map[string]upload, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	uploads := make(map[string]upload, len(uploadFields))
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid multipart form: %w", err)
		}

		field := part.FormName()
		if !isUploadField(field) || part.FileName() == "" {
			part.Close()
			continue
		}
		if _, dup := uploads[field]; dup {
			part.Close()
			continue
		}

		// the client filename is never used as a path on its own
		path := filepath.Join(dir, field+"-"+filepath.Base(part.FileName()))
		if err := writeFile(path, part); err != nil {
			part.Close()
			return nil, err
		}
		part.Close()

		mediaType := part.Header.Get("Content-Type")
		if mediaType == "" {
			mediaType = textextract.MediaTypeUnknown
		} else if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
			mediaType = mt
		}
		uploads[field] = upload{path: path, mediaType: mediaType}
	}

	for _, field := range uploadFields {
		if _, ok := uploads[field]; !ok {
			return nil, fmt.Errorf("field required: %s", field)
		}
	}
	return uploads, nil
}

func writeFile(path string, src io.Reader) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func isUploadField(name string) bool {
	for _, f := range uploadFields {
		if f == name {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, fmt.Sprintf("An internal server error occurred: %v", err))
}
