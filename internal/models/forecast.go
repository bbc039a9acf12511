package models

// ForecastPoint is one predicted day of demand. DS is an ISO calendar date
// (YYYY-MM-DD) and YHat is the predicted quantity rounded to 2 decimals.
type ForecastPoint struct {
	DS   string  `json:"ds"`
	YHat float64 `json:"yhat"`
}

// ForecastResponse is the success body for the forecast endpoints.
type ForecastResponse struct {
	Forecast []ForecastPoint `json:"forecast"`
	Insight  string          `json:"insight"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse is the success body of POST /chat.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse carries a human-readable failure reason.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
