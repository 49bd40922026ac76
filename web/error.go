package web

import (
	"encoding/json"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"net/http"
	"searchdsl/compiler"
	"searchdsl/parser"
	"searchdsl/schema"
	"searchdsl/suggest"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// classifyError returns the HTTP status and kind of the error. Errors caused by the request are client errors, all
// others are internal errors.
func classifyError(err error) (int, string) {
	var lexError *parser.LexError
	var parseError *parser.ParseError
	var schemaError *schema.SchemaError
	var compileError *compiler.CompileError
	var requestError *suggest.RequestError

	switch {
	case errors.As(err, &lexError):
		return http.StatusBadRequest, "lex error"
	case errors.As(err, &parseError):
		return http.StatusBadRequest, "parse error"
	case errors.As(err, &schemaError):
		return http.StatusBadRequest, "schema error"
	case errors.As(err, &compileError):
		return http.StatusBadRequest, "compile error"
	case errors.As(err, &requestError):
		return http.StatusBadRequest, "request error"
	}
	return http.StatusInternalServerError, "internal error"
}

func writeError(writer http.ResponseWriter, err error) {
	status, kind := classifyError(err)
	if status == http.StatusInternalServerError {
		sigolo.Errorf("Error handling request: %+v", err)
	} else {
		sigolo.Debugf("Rejected request with %s: %s", kind, err.Error())
		queryErrorsTotal.WithLabelValues(kind).Inc()
	}

	writeJson(writer, status, &errorResponse{
		Error:   kind,
		Details: err.Error(),
	})
}

func writeJson(writer http.ResponseWriter, status int, value any) {
	body, err := json.Marshal(value)
	if err != nil {
		sigolo.Errorf("Error marshalling response: %+v", err)
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_, err = writer.Write(body)
	if err != nil {
		sigolo.Errorf("Error writing response: %+v", err)
	}
}
