package triage

import "fmt"

// ErrorCode is the stable error taxonomy returned to API clients.
type ErrorCode string

const (
	CodeNoInput       ErrorCode = "no_input"
	CodeNoLocation    ErrorCode = "no_location"
	CodeNoMatch       ErrorCode = "no_match"
	CodeLowConfidence ErrorCode = "low_confidence"
	CodeServerError   ErrorCode = "server_error"
)

// PredictionError is a rejected or failed prediction.
type PredictionError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	// Confidence is set for low_confidence rejections.
	Confidence *float64
	Err        error
}

func (e *PredictionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PredictionError) Unwrap() error { return e.Err }

// Suggestions lists example symptom descriptions offered when input is rejected.
func Suggestions() []string {
	return []string{
		"fever, headache, body pain",
		"cough, cold, sore throat",
		"stomach pain, nausea, vomiting",
		"chest pain, shortness of breath",
		"skin rash, itching",
		"joint pain, swelling",
		"dizziness, fatigue",
		"back pain, muscle ache",
	}
}

func errNoInput() *PredictionError {
	return &PredictionError{Code: CodeNoInput, Message: "Please enter your symptoms", Suggestions: Suggestions()}
}

func errNoLocation() *PredictionError {
	return &PredictionError{Code: CodeNoLocation, Message: "Please select your location"}
}

func errNoMatch() *PredictionError {
	return &PredictionError{
		Code:        CodeNoMatch,
		Message:     "Could not identify valid symptoms. Please describe your health condition.",
		Suggestions: Suggestions(),
	}
}

func errLowConfidence(confidence float64) *PredictionError {
	return &PredictionError{
		Code:        CodeLowConfidence,
		Message:     "Could not confidently predict. Please provide more specific symptoms.",
		Suggestions: Suggestions(),
		Confidence:  &confidence,
	}
}

// ServerError wraps an unexpected failure.
func ServerError(err error) *PredictionError {
	return &PredictionError{Code: CodeServerError, Message: "An error occurred while processing your request", Err: err}
}
