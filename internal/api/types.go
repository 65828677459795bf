package api

import "encoding/json"

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	UserID      string `json:"user_id"`
	UserMessage string `json:"user_message"`
}

// ChatResponse is the doctor's reply.
type ChatResponse struct {
	Reply   string   `json:"reply"`
	Sources []string `json:"sources,omitempty"`
}

// SignUpRequest is the body of POST /signup.
type SignUpRequest struct {
	UserID       string `json:"user_id"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	Age          int    `json:"age"`
	DiabetesType string `json:"diabetes_type"`
	Details      any    `json:"details,omitempty"`
}

// StatusResponse is the generic {status, message} envelope.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

// LoginResponse carries the stored profile when Status is "success".
type LoginResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// analyzeFoodResponse is the raw body of POST /analyze-food.
type analyzeFoodResponse struct {
	Reply       string `json:"reply"`
	RawAnalysis string `json:"raw_analysis"`
	Status      string `json:"status"`
}

// ImageAnalysisSource labels replies that came from the food image analyzer.
const ImageAnalysisSource = "이미지 분석 결과"
