package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the problem object returned for every failed request.
type APIError struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
