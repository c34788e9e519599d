package api

import (
	"errors"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/icgdb/icgdb-server/internal/http/response"
)

// EnvelopeVersion is sent as "v" on every JSON response.
const EnvelopeVersion = response.Version

// APIEnvelope wraps successful responses.
type APIEnvelope = response.Envelope

// APIErrorEnvelope wraps failed responses.
type APIErrorEnvelope = response.ErrorEnvelope

// EnvelopeTransformer wraps every huma response body in the API envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, _ := strconv.Atoi(status)

	var apiErr *APIError
	if e, ok := v.(error); ok && errors.As(e, &apiErr) {
		return APIErrorEnvelope{
			Version: EnvelopeVersion,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	if code >= 400 {
		message := ""
		if e, ok := v.(error); ok {
			message = e.Error()
		}
		return APIErrorEnvelope{
			Version: EnvelopeVersion,
			Code:    statusToCode(code),
			Message: message,
		}, nil
	}

	return APIEnvelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
}
