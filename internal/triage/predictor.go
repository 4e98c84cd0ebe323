package triage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kjstillabower/health-advisory-service/internal/models"
	"github.com/kjstillabower/health-advisory-service/internal/observability"
)

const (
	// LowConfidenceThreshold is the model confidence below which the top-3 pool is consulted.
	LowConfidenceThreshold = 0.08
	// FallbackThreshold is the probability the best pooled candidate must exceed.
	FallbackThreshold = 0.05
)

// Classifier predicts a disease from preprocessed symptom text.
type Classifier interface {
	Classify(text string) Classification
	SpecialtyFor(disease string) string
}

// DoctorDirectory lists doctors for a specialty at a location.
type DoctorDirectory interface {
	Find(specialty, state, city string) []models.Doctor
}

// Result is a successful triage.
type Result struct {
	Prediction models.DiseasePrediction
	Doctors    []models.Doctor
}

// Predictor runs the triage pipeline for one query at a time. It holds no mutable
// state of its own.
type Predictor struct {
	classifier Classifier
	validator  *Validator
	doctors    DoctorDirectory
}

// NewPredictor wires a predictor. validator may be nil, in which case any content
// word is accepted.
func NewPredictor(classifier Classifier, validator *Validator, doctors DoctorDirectory) *Predictor {
	if validator == nil {
		validator = NewValidator(nil)
	}
	return &Predictor{classifier: classifier, validator: validator, doctors: doctors}
}

// Predict validates q, classifies it and attaches doctors. Rejections are returned
// as *PredictionError.
func (p *Predictor) Predict(ctx context.Context, q models.SymptomQuery) (res Result, err error) {
	logger := observability.LoggerFromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			err = ServerError(fmt.Errorf("panic: %v", r))
		}
		if pe, ok := err.(*PredictionError); ok {
			observability.RecordTriageRejection(string(pe.Code))
			logger.Info("triage rejected", zap.String("code", string(pe.Code)), zap.Error(pe.Err))
		}
	}()

	if err := CheckQuery(q); err != nil {
		return Result{}, err
	}
	text := Preprocess(q.Symptoms)
	if !p.validator.Valid(text) {
		return Result{}, errNoMatch()
	}
	if err := ctx.Err(); err != nil {
		return Result{}, ServerError(err)
	}

	manual, matched := MatchPattern(text)
	prediction, err := p.Reconcile(manual, matched, p.classifier.Classify(text))
	if err != nil {
		return Result{}, err
	}

	observability.RecordTriagePrediction(string(prediction.Source), prediction.Confidence)
	logger.Info("triage prediction",
		zap.String("disease", prediction.Disease),
		zap.String("specialty", prediction.Specialty),
		zap.Float64("confidence", prediction.Confidence),
		zap.String("source", string(prediction.Source)),
	)
	return Result{
		Prediction: prediction,
		Doctors:    p.doctors.Find(prediction.Specialty, q.State, q.City),
	}, nil
}

// Reconcile picks between the manual rule result and the model output. The manual
// result wins only with strictly higher confidence. A model result under
// LowConfidenceThreshold is replaced by the best pooled candidate when that exceeds
// FallbackThreshold, and rejected otherwise.
func (p *Predictor) Reconcile(manual models.DiseasePrediction, matched bool, c Classification) (models.DiseasePrediction, error) {
	if matched && manual.Confidence > c.Confidence {
		manual.Source = models.SourceManual
		return manual, nil
	}
	if c.Confidence >= LowConfidenceThreshold {
		return models.DiseasePrediction{
			Disease:    c.Disease,
			Confidence: c.Confidence,
			Specialty:  p.classifier.SpecialtyFor(c.Disease),
			Source:     models.SourceModel,
		}, nil
	}
	if len(c.Top) > 0 && c.Top[0].Probability > FallbackThreshold {
		best := c.Top[0]
		return models.DiseasePrediction{
			Disease:    best.Disease,
			Confidence: best.Probability,
			Specialty:  p.classifier.SpecialtyFor(best.Disease),
			Source:     models.SourceFallback,
		}, nil
	}
	return models.DiseasePrediction{}, errLowConfidence(c.Confidence)
}
