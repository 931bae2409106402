package errors

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// InternalError logs the real error with the request ID and returns a generic
// message to the client.
func InternalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	logEntry(r).WithError(err).Error(message)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// BadRequestError logs the error and returns the client-safe message.
func BadRequestError(w http.ResponseWriter, r *http.Request, err error, clientMessage string) {
	logEntry(r).WithError(err).Warn("bad request")
	http.Error(w, clientMessage, http.StatusBadRequest)
}

// LogError records an error with the request ID without writing a response.
func LogError(r *http.Request, message string, err error) {
	logEntry(r).WithError(err).Error(message)
}

func logEntry(r *http.Request) *logrus.Entry {
	entry := logrus.NewEntry(logrus.StandardLogger())
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		entry = entry.WithField("request_id", reqID)
	}
	return entry
}
