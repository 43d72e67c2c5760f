// Package pgrepos implements the domain repositories on PostgreSQL via sqlx.
package pgrepos

import (
	"github.com/lib/pq"

	"github.com/uniteach/monitoria/core"
)

// getExec returns the overriding executor when the service passed one (a
// transaction, usually) and the repository's default otherwise.
func getExec(def core.DBExecutor, svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return def
}

const uniqueViolation = "23505"

// constraintViolated reports whether err is a unique violation on the named
// constraint.
func constraintViolated(err error, constraint string) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == uniqueViolation && pqErr.Constraint == constraint
}
