package repository

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tinashelorenzi/grease-monkey/pkg/errors"
)

// wrapStoreErr classifies a Firestore error. Unreachable-store conditions map
// to UNAVAILABLE so callers can retry with backoff; everything else is an
// internal error.
func wrapStoreErr(message string, err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return errors.Unavailable(message, err)
	}
	return errors.Internal(message, err)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
