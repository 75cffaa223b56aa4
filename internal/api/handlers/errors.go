package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finsight/internal/api/middleware"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/jobs"
)

// writeServiceError maps domain errors to HTTP responses. Anything
// unrecognised is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, jobs.ErrJobNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrTransactionIndexOutOfRange), errors.Is(err, domain.ErrInvalidTransaction):
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrAnalysisInProgress), errors.Is(err, domain.ErrNoAnalysis),
		errors.Is(err, domain.ErrStaleAnalysis):
		middleware.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrCollaboratorFailure):
		log.Warn().Err(err).Msg("Analysis collaborator failed")
		middleware.WriteError(w, http.StatusBadGateway, domain.UserFacingAnalysisError)
	case errors.Is(err, jobs.ErrQueueClosed):
		middleware.WriteError(w, http.StatusServiceUnavailable, "Server is shutting down")
	default:
		log.Error().Err(err).Msg("Request failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
