package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the wire version stamped on every response as "v".
// Clients check it before parsing the rest of the envelope.
const EnvelopeVersion = 1

// APIEnvelope wraps successful responses and simple errors.
type APIEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// APIErrorEnvelope wraps structured errors that carry a machine-readable
// code and optional details.
type APIErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma transformer that wraps every response
// body in the versioned envelope. Success is derived from the status
// code; error bodies keep their code/message/details when present.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, err := strconv.Atoi(status)
	if err != nil {
		code = 200
	}
	success := code < 400

	switch body := v.(type) {
	case nil:
		return APIEnvelope{Version: EnvelopeVersion, Success: success}, nil
	case *APIError:
		if body.Code != "" {
			return APIErrorEnvelope{
				Version: EnvelopeVersion,
				Success: false,
				Code:    body.Code,
				Message: body.Message,
				Details: body.Details,
			}, nil
		}
		return APIEnvelope{Version: EnvelopeVersion, Success: false, Error: body.Message}, nil
	case error:
		return APIEnvelope{Version: EnvelopeVersion, Success: false, Error: body.Error()}, nil
	default:
		if !success {
			// Non-error body on an error status; pass it through as data
			// so nothing is silently dropped.
			return APIEnvelope{Version: EnvelopeVersion, Success: false, Data: v}, nil
		}
		return APIEnvelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
	}
}
