package v1

import (
	"errors"
	"net/http"

	"merchant-studio/internal/domain"
	"merchant-studio/pkg/logger"
	"merchant-studio/pkg/utils"
)

// errorBody is what every failed authoring request returns.
type errorBody struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
	Retry  bool                `json:"retry,omitempty"`
}

func statusFor(err error) int {
	var (
		valErr     *domain.ValidationError
		rejected   *domain.UploadRejected
		lockedErr  *domain.SectionLockedError
		persistErr *domain.PersistenceError
	)
	switch {
	case errors.As(err, &valErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &rejected):
		return http.StatusConflict
	case errors.As(err, &lockedErr):
		return http.StatusLocked
	case errors.As(err, &persistErr):
		return http.StatusUnprocessableEntity
	case domain.IsRetryable(err):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrVariantNotFound),
		errors.Is(err, domain.ErrMediaNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: domain.UserMessage(err), Retry: domain.IsRetryable(err)}

	var valErr *domain.ValidationError
	var persistErr *domain.PersistenceError
	switch {
	case errors.As(err, &valErr):
		body.Fields = valErr.Fields
	case errors.As(err, &persistErr) && persistErr.Field != "":
		body.Fields = []domain.FieldError{{Field: persistErr.Field, Message: persistErr.Error()}}
	}

	if status >= http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error().Err(err).Int("status", status).Msg("Authoring request failed")
	}
	utils.WriteJSON(w, status, body)
}
