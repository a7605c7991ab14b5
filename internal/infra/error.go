package infra

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"techpoints/internal/pkg/errs"
	"techpoints/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgconn"
)

type RepositoryErrorKind string

// ErrCommitUnknown marks a commit whose outcome never reached the client. The
// transaction may or may not have been applied.
var ErrCommitUnknown = errs.New("transaction commit outcome unknown")

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// Is lets callers test the upstream taxonomy without knowing repository kinds.
func (e RepositoryError) Is(target error) bool {
	switch e.Kind {
	case KindTimeout:
		return target == errs.ErrTimeout
	case KindUnavailable:
		return target == errs.ErrUpstreamUnavailable
	default:
		return false
	}
}

// WrapRepoErr wraps a driver error. Without an explicit kind the error is classified.
func WrapRepoErr(msg string, err error, kind ...RepositoryErrorKind) error {
	k := Classify(err)
	if len(kind) > 0 {
		k = kind[0]
	}

	level := slog.LevelError
	if k == KindNotFound || k == KindDuplicateKey {
		level = slog.LevelDebug
	}
	attrs := []any{slog.String("kind", string(k))}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	slog.Log(context.Background(), level, "Repository error: "+msg, attrs...)

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	return RepositoryError{Kind: k, msg: msg, err: err}
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Classify maps driver and context errors onto repository kinds.
func Classify(err error) RepositoryErrorKind {
	if err == nil {
		return KindDBFailure
	}
	if pgconv.IsNoRows(err) {
		return KindNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return KindTimeout
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return KindUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgErrUniqueViolation:
			return KindDuplicateKey
		case pgErr.Code == pgErrForeignKeyViolation:
			return KindForeignKeyViolated
		case pgErr.Code == pgErrCheckViolation:
			return KindCheckViolated
		case pgErr.Code == pgErrQueryCanceled:
			return KindTimeout
		case pgErr.Code == pgErrTooManyConnections, strings.HasPrefix(pgErr.Code, pgErrClassConnection):
			return KindUnavailable
		}
	}
	return KindDBFailure
}

// Infrastructure-specific error kinds
const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
	KindCheckViolated      RepositoryErrorKind = "CHECK_VIOLATED"
	KindTimeout            RepositoryErrorKind = "TIMEOUT"
	KindUnavailable        RepositoryErrorKind = "UNAVAILABLE"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
	pgErrCheckViolation      = "23514"
	pgErrQueryCanceled       = "57014"
	pgErrTooManyConnections  = "53300"
	pgErrClassConnection     = "08"
)
