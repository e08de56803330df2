// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/inputval"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// body is the JSON shape of every error response.
type body struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}

// ErrorLogger writes JSON error responses and logs server-side failures.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// Write maps err to a status via apperr and writes the error body.
// 5xx errors are logged with their cause; the cause is never sent to the
// client.
func (e *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		e.Log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	httpjson.Write(w, status, body{Error: apperr.Message(err), Errors: apperr.Details(err)})
}

// LogServerError logs err under msg and writes a 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Error(msg,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err))
	httpjson.Write(w, http.StatusInternalServerError, body{Error: userMsg})
}

// LogBadRequest logs err at debug level and writes a 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Debug(msg, zap.String("path", r.URL.Path), zap.Error(err))
	httpjson.Write(w, http.StatusBadRequest, body{Error: userMsg})
}

// WriteValidation writes a 400 listing every field message in res.
func (e *ErrorLogger) WriteValidation(w http.ResponseWriter, res *inputval.Result) {
	httpjson.Write(w, http.StatusBadRequest, body{Error: res.First(), Errors: res.Messages()})
}

// NotFound is the router's fallback for unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusNotFound, body{Error: "not found"})
}

// MethodNotAllowed is the router's fallback for known paths hit with the
// wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusMethodNotAllowed, body{Error: "method not allowed"})
}
