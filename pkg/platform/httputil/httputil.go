// Package httputil builds response envelopes, translates domain errors to
// HTTP responses and decodes JSON request bodies.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
)

// GenericErrorMessage is the only message a 5xx response ever carries.
const GenericErrorMessage = "Something went wrong, please try again later"

// MaxBodyBytes caps decoded request bodies.
const MaxBodyBytes = 1 << 20

// Validatable is implemented by request types that check their own fields.
type Validatable interface {
	Validate() error
}

// Normalizable is implemented by request types that trim or lowercase fields
// before validation.
type Normalizable interface {
	Normalize()
}

// Translate maps any error to a status and envelope. It is total: untyped
// errors and unknown codes become a 500 with a generic message.
func Translate(requestID string, err error) (int, Envelope) {
	de, ok := dErrors.As(err)
	if !ok {
		return http.StatusInternalServerError,
			Failure(requestID, dErrors.CodeInternal, GenericErrorMessage, nil)
	}
	status := dErrors.HTTPStatus(de.Code)
	if status >= http.StatusInternalServerError {
		return status, Failure(requestID, dErrors.CodeInternal, GenericErrorMessage, nil)
	}
	return status, Failure(requestID, de.Code, de.Message, de.Fields)
}

// WriteError translates err and writes the error envelope. Server errors are
// logged with the full error; client errors are logged at warn.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	status, env := Translate(requestID, err)
	if logger != nil {
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(ctx, "request failed",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
			)
		} else {
			logger.WarnContext(ctx, "request rejected",
				"request_id", requestID,
				"status", status,
				"error", err.Error(),
			)
		}
	}
	WriteJSON(w, status, env)
}

// WriteSuccess writes a success envelope with the given status (200 or 201).
func WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	WriteJSON(w, status, Success(requestcontext.RequestID(r.Context()), data))
}

// WriteList writes a list envelope with results and optional pagination.
func WriteList(w http.ResponseWriter, r *http.Request, data any, count int, pagination *Pagination) {
	WriteJSON(w, http.StatusOK, List(requestcontext.RequestID(r.Context()), data, count, pagination))
}

// WriteNoContent writes a 204 without a body.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteJSON writes v as JSON with the given status. v is encoded before
// anything is written; a value that cannot be encoded becomes a 500 envelope.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		var requestID string
		if env, ok := v.(Envelope); ok {
			requestID = env.RequestID
		}
		slog.Default().Error("response encoding failed",
			"request_id", requestID,
			"status", status,
			"error", err,
		)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(Failure(requestID, dErrors.CodeInternal, GenericErrorMessage, nil))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// DecodeAndPrepare decodes the JSON body into T, normalizes and validates it.
// On failure it writes the error envelope and returns false.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	var req T
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, r, logger, err)
		return nil, false
	}
	if n, ok := any(&req).(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := any(&req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			WriteError(w, r, logger, err)
			return nil, false
		}
	}
	return &req, true
}

// DecodeJSON decodes a single JSON object from the body, rejecting unknown
// fields, trailing data and bodies over MaxBodyBytes.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return dErrors.New(dErrors.CodeBadRequest, "Request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes+1))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return dErrors.New(dErrors.CodeBadRequest, "Request body must contain a single JSON object")
	}
	return nil
}

func decodeError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return dErrors.New(dErrors.CodeBadRequest, "Request body is required")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return dErrors.New(dErrors.CodeBadRequest, "Request body contains malformed JSON")
	case errors.As(err, &typeErr):
		return dErrors.New(dErrors.CodeBadRequest, "Invalid value for field "+typeErr.Field)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return dErrors.New(dErrors.CodeBadRequest, "Unknown field "+field)
	default:
		return dErrors.New(dErrors.CodeBadRequest, "Invalid request body")
	}
}
