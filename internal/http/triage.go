package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/kjstillabower/health-advisory-service/internal/models"
	"github.com/kjstillabower/health-advisory-service/internal/observability"
	"github.com/kjstillabower/health-advisory-service/internal/triage"
)

// maxPredictBody bounds the /api/predict request body.
const maxPredictBody = 64 << 10

const predictSchema = `{
  "type": "object",
  "properties": {
    "symptoms": {"type": "string"},
    "state":    {"type": "string"},
    "city":     {"type": "string"}
  }
}`

var predictRequestSchema = mustSchema(predictSchema)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(err)
	}
	return schema
}

// Predictor runs one triage query.
type Predictor interface {
	Predict(ctx context.Context, q models.SymptomQuery) (triage.Result, error)
}

// TriageHandler serves the symptom triage JSON API.
type TriageHandler struct {
	predictor Predictor
	diseases  []string
}

// NewTriageHandler returns a handler. diseases is the list the model can predict;
// a nil predictor means no model is loaded.
func NewTriageHandler(predictor Predictor, diseases []string) *TriageHandler {
	return &TriageHandler{predictor: predictor, diseases: diseases}
}

type predictResponse struct {
	Disease    string          `json:"disease"`
	Confidence float64         `json:"confidence"`
	Specialty  string          `json:"specialty"`
	Doctors    []models.Doctor `json:"doctors"`
	Message    string          `json:"message"`
}

// Predict handles POST /api/predict.
func (h *TriageHandler) Predict(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPredictBody+1))
	if err != nil || len(body) > maxPredictBody {
		writeBadRequest(w, "Request body is too large or unreadable")
		return
	}
	result, err := predictRequestSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		writeBadRequest(w, "Request body must be a JSON object")
		return
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		logger.Debug("predict body rejected by schema", zap.Strings("errors", msgs))
		writeBadRequest(w, "Request body does not match the expected format")
		return
	}
	var q models.SymptomQuery
	if err := json.Unmarshal(body, &q); err != nil {
		writeBadRequest(w, "Request body must be a JSON object")
		return
	}

	if h.predictor == nil {
		writePredictionError(w, triage.ServerError(errors.New("model not loaded")))
		return
	}
	res, err := h.predictor.Predict(r.Context(), q)
	if err != nil {
		writePredictionError(w, err)
		return
	}
	doctors := res.Doctors
	if doctors == nil {
		doctors = []models.Doctor{}
	}
	writeJSON(w, http.StatusOK, predictResponse{
		Disease:    res.Prediction.Disease,
		Confidence: res.Prediction.Confidence,
		Specialty:  res.Prediction.Specialty,
		Doctors:    doctors,
		Message:    "Prediction successful",
	})
}

// Health handles GET /api/health.
func (h *TriageHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"model_loaded": h.predictor != nil,
		"message":      "Disease Prediction API is running",
	})
}

// Diseases handles GET /api/diseases.
func (h *TriageHandler) Diseases(w http.ResponseWriter, r *http.Request) {
	diseases := h.diseases
	if diseases == nil {
		diseases = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"diseases": diseases,
		"count":    len(diseases),
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	observability.RecordTriageRejection(string(triage.CodeNoInput))
	writeJSON(w, http.StatusBadRequest, errorBody{
		Error:       string(triage.CodeNoInput),
		Message:     message,
		Suggestions: triage.Suggestions(),
	})
}

// writePredictionError renders err with the triage error taxonomy: server_error is
// a 500, every other code a 400.
func writePredictionError(w http.ResponseWriter, err error) {
	var pe *triage.PredictionError
	if !errors.As(err, &pe) {
		pe = triage.ServerError(err)
	}
	status := http.StatusBadRequest
	if pe.Code == triage.CodeServerError {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, errorBody{
		Error:       string(pe.Code),
		Message:     pe.Message,
		Suggestions: pe.Suggestions,
		Confidence:  pe.Confidence,
	})
}
