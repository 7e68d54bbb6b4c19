// Package services implements the billing ledger: catalog, invoice numbering
// and lifecycle, expenses, reports, and the user and company records.
//
// Every operation that writes runs in a single GORM transaction. Errors are
// classified with github.com/juju/errors (NotValid, NotFound, Forbidden,
// Unauthorized); storage failures are wrapped in ErrPersistence.
package services

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gorm.io/gorm"

	"github.com/diewo77/seize-billing/internal/auth"
)

var logger = loggo.GetLogger("seize.services")

// ErrPersistence marks a failed read or write against the ledger store. The
// operation did not complete and may be retried by the caller.
var ErrPersistence = stderrors.New("persistence failure")

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// classify wraps storage errors in ErrPersistence and passes domain errors
// through untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{errors.NotValid, errors.NotFound, errors.Forbidden, errors.Unauthorized, ErrPersistence} {
		if errors.Is(err, known) {
			return err
		}
	}
	return persistence(op, err)
}

// notFound turns gorm.ErrRecordNotFound into a NotFound error.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFoundf(format, args...)
	}
	return err
}

func requireAdmin(ctx context.Context, what string) (auth.Actor, error) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok || !actor.IsAdmin() {
		return actor, errors.Forbiddenf("%s requires the admin role", what)
	}
	return actor, nil
}

// creator returns the username recorded in created_by.
func creator(ctx context.Context) string {
	if actor, ok := auth.ActorFromContext(ctx); ok {
		return actor.Username
	}
	return ""
}
