package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"syscall"

	"github.com/fixitnow/fixitnow/errs"
	"github.com/fixitnow/fixitnow/validator"
)

type errRespBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

func (h *Handler) respond(w http.ResponseWriter, v any, statusCode int) {
	b, err := json.Marshal(v)
	if err != nil {
		h.respondErr(w, fmt.Errorf("json marshal response body: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_, err = w.Write(b)
	if err != nil && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, context.Canceled) {
		h.Logger.Error("write response", "error", err)
	}
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	statusCode := err2code(err)
	if statusCode == http.StatusInternalServerError {
		if !errors.Is(err, context.Canceled) {
			h.Logger.Error("internal error", "error", err)
		}
		h.respond(w, errRespBody{Error: "internal server error"}, statusCode)
		return
	}

	var v *validator.Validator
	if errors.As(err, &v) {
		h.respond(w, errRespBody{Error: "invalid input", Fields: v.Errors}, statusCode)
		return
	}

	h.respond(w, errRespBody{Error: err.Error()}, statusCode)
}

func err2code(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var v *validator.Validator
	if errors.As(err, &v) {
		return http.StatusUnprocessableEntity
	}

	var e *errs.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case errs.KindInvalidArgument:
			return http.StatusUnprocessableEntity
		case errs.KindNotFound:
			return http.StatusNotFound
		case errs.KindAlreadyExists:
			return http.StatusConflict
		case errs.KindPermissionDenied:
			return http.StatusForbidden
		case errs.KindUnauthenticated:
			return http.StatusUnauthorized
		}
	}

	return http.StatusInternalServerError
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.NewInvalidArgumentError("body", "malformed request body")
	}
	return nil
}
