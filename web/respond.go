package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"go.uber.org/zap"

	"dhaba/services"
)

// ErrorCodeHeader carries the service error code on failed responses.
const ErrorCodeHeader = "X-Error-Code"

var statusByCode = map[string]int{
	services.EInternal:        http.StatusInternalServerError,
	services.EInvalid:         http.StatusBadRequest,
	services.ENotFound:        http.StatusNotFound,
	services.EConflict:        http.StatusConflict,
	services.ETooManyRequests: http.StatusTooManyRequests,
	services.EUnauthorized:    http.StatusUnauthorized,
}

// errBody is the JSON shape of every error response.
type errBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// api writes JSON responses and coded errors.
type api struct {
	log *zap.Logger
}

func (a *api) Respond(w http.ResponseWriter, status int, v any) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Error("Failed to encode response", zap.Error(err))
	}
}

func (a *api) Err(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	code := services.ErrorCode(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= 500 {
		a.log.Error("Request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		a.log.Debug("Request rejected", zap.String("path", r.URL.Path), zap.String("code", code), zap.Error(err))
	}
	w.Header().Set(ErrorCodeHeader, code)
	a.Respond(w, status, errBody{Code: code, Message: services.ErrorMessage(err)})
}

// DecodeJSON reads one JSON value from body. Malformed input is an EInvalid error.
func (a *api) DecodeJSON(body io.Reader, v any) error {
	if err := json.NewDecoder(body).Decode(v); err != nil {
		msg := "malformed JSON body"
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			msg = "request body is empty"
		case errors.As(err, &typeErr) && typeErr.Field != "":
			msg = "invalid value for field " + strconv.Quote(typeErr.Field)
		}
		return &services.Error{Code: services.EInvalid, Msg: msg, Err: err}
	}
	return nil
}

func urlID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &services.Error{Code: services.ENotFound, Msg: "no object with id " + strconv.Quote(raw)}
	}
	return id, nil
}
