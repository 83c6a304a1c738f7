package api

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/vrsandeep/docscan/internal/ingest"
)

const multipartMemory = 32 << 20

type uploadResponse struct {
	Message string `json:"message"`
	ingest.Summary
}

// handleExtractText accepts a batch of documents for the client named by
// socket id and queues their pages. Results arrive over the websocket.
func (s *Server) handleExtractText(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondWithError(w, http.StatusRequestEntityTooLarge, "Upload exceeds the size limit")
			return
		}
		RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	clientID := clientIDFrom(r)
	if clientID == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing socket id")
		return
	}

	files := r.MultipartForm.File["images"]
	parents := r.MultipartForm.Value["parents[]"]
	if len(parents) == 0 {
		parents = r.MultipartForm.Value["parents"]
	}

	uploads := make([]ingest.Upload, 0, len(files))
	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			closeAll(uploads)
			RespondWithError(w, http.StatusBadRequest, "Could not read uploaded file "+fh.Filename)
			return
		}
		up := ingest.Upload{FileName: fh.Filename, Body: f}
		if i < len(parents) {
			up.GroupKey = parents[i]
		}
		uploads = append(uploads, up)
	}
	defer closeAll(uploads)

	summary, err := s.app.Ingest().Ingest(r.Context(), clientID, uploads)
	switch {
	case err == nil:
	case errors.Is(err, ingest.ErrInvalidClient):
		RespondWithError(w, http.StatusBadRequest, "Unknown socket id")
		return
	case errors.Is(err, ingest.ErrNoFiles):
		RespondWithError(w, http.StatusBadRequest, "No files uploaded")
		return
	case errors.Is(err, ingest.ErrUnsupportedFileType):
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	default:
		s.log.Error().Err(err).Str("client_id", clientID).Msg("Upload failed")
		RespondWithError(w, http.StatusInternalServerError, "Failed to store uploaded files")
		return
	}

	RespondWithJSON(w, http.StatusOK, uploadResponse{
		Message: "Files are being processed",
		Summary: summary,
	})
}

func closeAll(uploads []ingest.Upload) {
	for _, up := range uploads {
		if f, ok := up.Body.(multipart.File); ok {
			f.Close()
		}
	}
}
