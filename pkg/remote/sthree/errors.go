package sthree

import (
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/oneconcern/gitbin/pkg/errors"
	"github.com/oneconcern/gitbin/pkg/status"
)

// ErrCredentials is reported when S3 rejects the configured key pair
var ErrCredentials = errors.New("check your access key and secret access key")

func isCredentialsCode(code string) bool {
	switch code {
	case "InvalidAccessKeyId", "InvalidSecurity", "SignatureDoesNotMatch", "AccessDenied", "InvalidToken", "ExpiredToken":
		return true
	default:
		return false
	}
}

func apiErrors(err awserr.RequestFailure) error {
	// handle S3 API errors
	// https://docs.aws.amazon.com/sdk-for-go/api/aws/awserr/#RequestFailure
	if isCredentialsCode(err.Code()) {
		return status.ErrBackend.Wrap(ErrCredentials.Wrap(err))
	}
	switch err.StatusCode() {
	case 400:
		if err.Code() == "InvalidBucketName" {
			return status.ErrConfiguration.Wrap(err)
		}
		return status.ErrBackend.Wrap(err)
	case 401, 403:
		return status.ErrBackend.Wrap(ErrCredentials.Wrap(err))
	case 404:
		switch err.Code() {
		case "NoSuchBucket":
			return status.ErrConfiguration.Wrap(err)
		default:
			// NoSuchKey, or NotFound as produced by minio and HEAD requests
			return status.ErrNotFound.Wrap(err)
		}
	default:
		return status.ErrBackend.Wrap(err)
	}
}

// toSentinelErrors returns sentinel errors defined by the status package.
//
// See: https://docs.aws.amazon.com/AmazonS3/latest/API/ErrorResponses.html#ErrorCodeList
func toSentinelErrors(err error) error {
	if err == nil {
		return nil
	}
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) {
		return apiErrors(reqErr)
	}
	var awsErr awserr.Error
	if errors.As(err, &awsErr) && isCredentialsCode(awsErr.Code()) {
		return status.ErrBackend.Wrap(ErrCredentials.Wrap(err))
	}
	return status.ErrBackend.Wrap(err)
}
