package supabase

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Response est la réponse brute d'un appel réussi.
type Response struct {
	StatusCode int
	Body       []byte
}

// JSON décode le corps dans v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("supabase: décodage réponse: %w", err)
	}
	return nil
}

// APIError est une erreur renvoyée par PostgREST ou GoTrue.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: %d: %s", e.StatusCode, e.Message)
}

// Error retourne une *APIError si le statut indique un échec.
func (r *Response) Error() error {
	if r.StatusCode < 400 {
		return nil
	}

	// PostgREST: {code, message}; GoTrue: {error, error_description} ou {msg}
	var body struct {
		Code             any    `json:"code"`
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ErrorCode        string `json:"error_code"`
	}
	apiErr := &APIError{StatusCode: r.StatusCode}
	if err := json.Unmarshal(r.Body, &body); err == nil {
		switch {
		case body.Message != "":
			apiErr.Message = body.Message
		case body.ErrorDescription != "":
			apiErr.Message = body.ErrorDescription
		case body.Msg != "":
			apiErr.Message = body.Msg
		case body.Error != "":
			apiErr.Message = body.Error
		}
		switch code := body.Code.(type) {
		case string:
			apiErr.Code = code
		}
		if apiErr.Code == "" {
			apiErr.Code = body.ErrorCode
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(r.StatusCode)
	}
	return apiErr
}
