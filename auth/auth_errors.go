package auth

import (
	autherrors "github.com/jrsteele09/go-db-admin/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// fail builds a failed Result for one of the client-facing sentinels.
func fail(err error) Result {
	return Result{Success: false, Error: err.Error(), Err: err}
}

// internalFailure logs an infrastructure error and hides it behind ErrInternal.
func internalFailure(step Step, err error, msg string) Result {
	wrapped := errors.Wrap(err, msg)
	log.Err(wrapped).Str("step", step.String()).Msg("authentication step failed")
	return Result{
		Success: false,
		Error:   autherrors.ErrInternal.Error(),
		Err:     errors.Wrap(autherrors.ErrInternal, wrapped.Error()),
	}
}
