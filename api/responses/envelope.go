package responses

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// MessageBody is the payload of endpoints that only acknowledge an action.
type MessageBody struct {
	Message string `json:"message"`
}
