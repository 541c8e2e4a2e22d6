package handler

import (
	"errors"
	"net/http"

	"statsdash/internal/insight"
	"statsdash/internal/repository"
	"statsdash/internal/service"
	"statsdash/pkg/response"
)

// fetchFailedMessage is shown whenever the statistics endpoint could not be reached
const fetchFailedMessage = "Failed to fetch stats. Please try again."

// errorResponse maps service and repository sentinels to an HTTP status and envelope
func errorResponse(err error) (int, response.Response) {
	var (
		status int
		kind   string
		msg    string
	)
	switch {
	case errors.Is(err, service.ErrEmptyToken):
		status, kind, msg = http.StatusBadRequest, response.KindBadRequest, "Token is required"
	case errors.Is(err, repository.ErrSessionNotFound):
		status, kind, msg = http.StatusNotFound, response.KindNotFound, "Dashboard session not found or expired"
	case errors.Is(err, repository.ErrSubmissionInFlight):
		status, kind, msg = http.StatusConflict, response.KindConflict, "A request is already in progress for this session"
	case errors.Is(err, repository.ErrTransport):
		status, kind, msg = http.StatusBadGateway, response.KindTransport, fetchFailedMessage
	case errors.Is(err, insight.ErrParse):
		status, kind, msg = http.StatusBadGateway, response.KindParse, "Stats response could not be read"
	case errors.Is(err, insight.ErrData):
		status, kind, msg = http.StatusUnprocessableEntity, response.KindData, err.Error()
	default:
		return http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error())
	}
	return status, response.ErrorKind(status, kind, msg)
}
