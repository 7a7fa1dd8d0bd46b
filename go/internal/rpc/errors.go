package rpc

import (
	"errors"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/friendlies/go/internal/models"
)

// ToConnectError maps domain errors onto connect codes. Unknown errors are logged
// and reported as internal.
func ToConnectError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, models.ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, models.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, models.ErrForbidden):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, models.ErrInvalidTransition):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		log.Error().Err(err).Msg("request failed")
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}
}

// ParseID parses a uuid request field, reporting a malformed value as a validation error on field
func ParseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		verr := &models.ValidationError{}
		verr.Add(field, "must be a valid uuid")
		return uuid.Nil, verr
	}
	return id, nil
}
