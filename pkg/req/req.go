package req

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/syshair/backend/pkg/logger"
	"github.com/syshair/backend/pkg/res"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode decodes JSON from body into a value of type T.
func Decode[T any](body io.Reader) (T, error) {
	var payload T
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// IsValid validates struct tags of payload.
func IsValid[T any](payload T) error {
	return validate.Struct(payload)
}

// FieldErrors flattens validator errors into field -> tag pairs.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// HandleBody decodes and validates the request body. On failure it writes a
// 400 reply and returns the error.
func HandleBody[T any](w http.ResponseWriter, r *http.Request, log *logger.Logger) (*T, error) {
	body, err := Decode[T](r.Body)
	if err != nil {
		log.Warnw("Failed to decode request body", "error", err, "path", r.URL.Path)
		res.JsonResponse(w, res.ErrorResponse{Error: "invalid request body"}, http.StatusBadRequest)
		return nil, err
	}

	if err := IsValid(body); err != nil {
		log.Warnw("Request body failed validation", "error", err, "path", r.URL.Path)
		res.JsonResponse(w, res.ErrorResponse{
			Error:   "missing or invalid fields",
			Details: FieldErrors(err),
		}, http.StatusBadRequest)
		return nil, err
	}
	return &body, nil
}
