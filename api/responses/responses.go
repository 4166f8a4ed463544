package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	pkgerrors "github.com/angelmondragon/storefront-orders/pkg/errors"
	"github.com/angelmondragon/storefront-orders/pkg/logger"
	"github.com/angelmondragon/storefront-orders/pkg/types"
)

// retryAfterSeconds is advertised on 503s so clients back off before retrying.
const retryAfterSeconds = 5

// encodeFailure is written when a payload cannot be marshalled. It is built
// by hand so it can never fail itself.
var encodeFailure = []byte(`{"statusCode":500,"message":"internal server error","errorType":"InternalError","code":"INTERNAL_ERROR"}` + "\n")

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessMessage(w, http.StatusOK, http.StatusText(http.StatusOK), data)
}

// WriteSuccessMessage writes the success envelope with a caller supplied message.
func WriteSuccessMessage(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, types.SuccessEnvelope{
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

// WriteError renders err as the error envelope. Untyped errors become
// internal errors and only codes that allow it reveal their message and
// details.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	payload := types.ErrorEnvelope{
		StatusCode: meta.HTTPStatus,
		Message:    meta.PublicMessage,
		ErrorType:  meta.ErrorType,
		Code:       string(typed.Code()),
	}
	if m := typed.Message(); meta.ShowMessage && m != "" {
		payload.Message = m
	}
	if meta.DetailsAllowed {
		payload.Details = typed.Details()
	}

	if logg != nil {
		fields := pkgerrors.Dump(err).Fields()
		fields["error_type"] = meta.ErrorType
		ctx = logg.WithFields(ctx, fields)
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	if meta.HTTPStatus == http.StatusServiceUnavailable && meta.Retryable {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	writeJSON(w, meta.HTTPStatus, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		status, body = http.StatusInternalServerError, encodeFailure
	} else {
		body = append(body, '\n')
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
