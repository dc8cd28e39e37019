package gcs

import (
	"errors"
	"net/http"
	"strings"

	gcsStorage "cloud.google.com/go/storage"
	"github.com/oneconcern/gitbin/pkg/status"
	"google.golang.org/api/googleapi"
)

func apiErrors(err *googleapi.Error) error {
	switch err.Code {
	case http.StatusBadRequest:
		if strings.Contains(err.Body, "bucket is not valid") || strings.Contains(err.Message, "Invalid bucket name") {
			return status.ErrConfiguration.Wrap(err)
		}
		return status.ErrBackend.Wrap(err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return status.ErrBackend.Wrapf("check your gcs credentials: %w", err)
	case http.StatusNotFound:
		return status.ErrNotFound.Wrap(err)
	default:
		return status.ErrBackend.Wrap(err)
	}
}

// toSentinelErrors returns sentinel errors defined by the status package
func toSentinelErrors(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gcsStorage.ErrObjectNotExist) {
		return status.ErrNotFound.Wrap(err)
	}
	if errors.Is(err, gcsStorage.ErrBucketNotExist) {
		return status.ErrConfiguration.Wrap(err)
	}
	var typedErr *googleapi.Error
	if errors.As(err, &typedErr) {
		return apiErrors(typedErr)
	}
	return status.ErrBackend.Wrap(err)
}

// isPreconditionFailed tells if a conditional write found the object already present
func isPreconditionFailed(err error) bool {
	var typedErr *googleapi.Error
	return errors.As(err, &typedErr) && typedErr.Code == http.StatusPreconditionFailed
}
