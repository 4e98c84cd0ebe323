package models

// SymptomQuery is the body of POST /api/predict.
type SymptomQuery struct {
	Symptoms string `json:"symptoms"`
	State    string `json:"state"`
	City     string `json:"city"`
}

// PredictionSource names which path produced a DiseasePrediction.
type PredictionSource string

const (
	SourceModel    PredictionSource = "model"
	SourceManual   PredictionSource = "manual"
	SourceFallback PredictionSource = "fallback"
)

type DiseasePrediction struct {
	Disease    string           `json:"disease"`
	Confidence float64          `json:"confidence"`
	Specialty  string           `json:"specialty"`
	Source     PredictionSource `json:"-"`
}

// Doctor is a mock directory entry. Generated per request, never stored.
type Doctor struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Specialty       string  `json:"specialty"`
	Rating          float64 `json:"rating"`
	Experience      int     `json:"experience"`
	Location        string  `json:"location"`
	Hospital        string  `json:"hospital"`
	Available       bool    `json:"available"`
	ConsultationFee int     `json:"consultation_fee"`
}
