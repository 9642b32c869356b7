package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/foliohq/folio-server/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in the
// {success, data | error} envelope.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case response.Envelope, *response.Envelope:
		return v, nil
	case *APIError:
		return response.Envelope{Error: &response.ErrorBody{
			Code:    body.Code,
			Message: body.Message,
			Details: body.Details,
		}}, nil
	case huma.StatusError:
		return response.Envelope{Error: &response.ErrorBody{
			Code:    statusToCode(body.GetStatus()),
			Message: body.Error(),
		}}, nil
	}
	return response.Envelope{Success: true, Data: v}, nil
}
