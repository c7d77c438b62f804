package docstore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"insurance-marketplace/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

func errNotFound(op, collection, id string) error {
	return apperror.New(apperror.KindNotFound, op, fmt.Sprintf("document %s/%s not found", collection, id))
}

func errExists(op, collection, id string) error {
	return apperror.New(apperror.KindConflict, op, fmt.Sprintf("document %s/%s already exists", collection, id))
}

var errStoreClosed = apperror.New(apperror.KindUnavailable, "docstore", "store is closed")

// translatePostgres classifies gorm and PostgreSQL failures.
func translatePostgres(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Wrap(apperror.KindNotFound, op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperror.Wrap(apperror.KindUnavailable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		// 23505 = unique_violation
		case pgErr.Code == "23505":
			return apperror.Wrap(apperror.KindConflict, op, err)
		// 42501 = insufficient_privilege
		case pgErr.Code == "42501":
			return apperror.Wrap(apperror.KindPermission, op, err)
		// class 08 = connection exception, 57P = operator intervention
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return apperror.Wrap(apperror.KindUnavailable, op, err)
		case strings.HasPrefix(pgErr.Code, "22"), strings.HasPrefix(pgErr.Code, "23"):
			return apperror.Wrap(apperror.KindValidation, op, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperror.Wrap(apperror.KindUnavailable, op, err)
	}
	return apperror.Wrap(apperror.KindInternal, op, err)
}

// translateFirestore classifies gRPC status errors returned by Firestore.
func translateFirestore(op string, err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return apperror.Wrap(apperror.KindNotFound, op, err)
	case codes.AlreadyExists:
		return apperror.Wrap(apperror.KindConflict, op, err)
	case codes.PermissionDenied, codes.Unauthenticated:
		return apperror.Wrap(apperror.KindPermission, op, err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled, codes.ResourceExhausted:
		return apperror.Wrap(apperror.KindUnavailable, op, err)
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return apperror.Wrap(apperror.KindValidation, op, err)
	}
	return apperror.Wrap(apperror.KindInternal, op, err)
}
