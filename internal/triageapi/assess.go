package triageapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/vitaltriage/internal/triage"
)

const assessmentIDHeader = "X-Assessment-Id"

type assessRequest struct {
	ChiefComplaint  string             `json:"chiefComplaint" validate:"required"`
	AdditionalNotes *string            `json:"additionalNotes"`
	VitalSigns      *triage.VitalSigns `json:"vitalSigns"`
}

func (a *API) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := a.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, formatValidation(err))
		return
	}

	in := &triage.Input{
		ChiefComplaint: req.ChiefComplaint,
		VitalSigns:     req.VitalSigns,
	}
	if req.AdditionalNotes != nil {
		in.AdditionalNotes = *req.AdditionalNotes
	}

	result, err := a.triage.Assess(r.Context(), in)
	if err != nil {
		if errors.Is(err, triage.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		a.logger.Error(r.Context(), err, "triage assessment failed")
		writeError(w, http.StatusInternalServerError, "Error in triage assessment: "+err.Error())
		return
	}

	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("vitaltriage.assessment.id", result.ID),
		attribute.String("vitaltriage.assessment.level", string(result.Assessment.Level)),
	)

	w.Header().Set(assessmentIDHeader, result.ID)
	writeJSON(w, http.StatusOK, result.Assessment)
}
