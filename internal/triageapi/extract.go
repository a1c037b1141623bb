package triageapi

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/vitaltriage/internal/triage"
)

const (
	videoField = "video"

	// multipartSlack covers boundaries and part headers on top of the file.
	multipartSlack = 64 << 10

	// maxMemory is kept in RAM by ParseMultipartForm; the rest spills to disk.
	maxMemory = 32 << 20
)

// allowedVideoTypes is the upload allow-list. An empty or
// application/octet-stream part type means the client did not say.
var allowedVideoTypes = map[string]bool{
	"video/mp4":       true,
	"video/quicktime": true,
	"video/x-msvideo": true,
	"video/webm":      true,
}

type extractResponse struct {
	Success    bool               `json:"success"`
	VitalSigns *triage.VitalSigns `json:"vitalSigns"`
}

func (a *API) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload+multipartSlack)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "video exceeds upload limit")
		case errors.Is(err, http.ErrNotMultipart):
			writeError(w, http.StatusUnprocessableEntity, "video file is required")
		default:
			writeError(w, http.StatusBadRequest, "invalid multipart body")
		}
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	f, hdr, err := r.FormFile(videoField)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "video file is required")
		return
	}
	defer func() { _ = f.Close() }()

	if hdr.Size > a.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, "video exceeds upload limit")
		return
	}
	if ct := hdr.Header.Get("Content-Type"); !acceptableType(ct) {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Sprintf("unsupported video type %q", ct))
		return
	}

	video, err := io.ReadAll(f)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to read uploaded video")
		writeError(w, http.StatusInternalServerError, "Error processing video: "+err.Error())
		return
	}

	vs := a.vitals.Extract(r.Context(), video)

	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.Int("vitaltriage.upload.bytes", len(video)),
		attribute.Bool("vitaltriage.vitals.extracted", vs != nil),
	)

	writeJSON(w, http.StatusOK, extractResponse{Success: true, VitalSigns: vs})
}

func acceptableType(ct string) bool {
	if ct == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mt == "application/octet-stream" || allowedVideoTypes[mt]
}
