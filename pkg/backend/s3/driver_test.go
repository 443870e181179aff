package s3

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/objfs/pkg/backend"
)

func TestResolveRegion(t *testing.T) {
	tests := []struct {
		name      string
		endpoint  string
		sdkRegion string
		expected  string
	}{
		{"sdk resolved region wins", "", "eu-west-1", "eu-west-1"},
		{"sdk region wins even with endpoint", "https://minio.local:9000", "us-west-2", "us-west-2"},
		{"aws default applied", "", "", DefaultAWSRegion},
		{"no default for custom endpoint", "https://minio.local:9000", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveRegion(tt.endpoint, tt.sdkRegion))
		})
	}
}

func TestWrapErrorTypedErrors(t *testing.T) {
	d := &Driver{bucket: "my-bucket"}

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"NotFound type", &types.NotFound{}, backend.ErrNotFound},
		{"NoSuchKey type", &types.NoSuchKey{}, backend.ErrNotFound},
		{"NoSuchBucket type", &types.NoSuchBucket{}, backend.ErrBucketNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := d.wrapError("GetObjectStatus", "some/key", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)

			var de *backend.DriverError
			require.ErrorAs(t, wrapped, &de)
			assert.Equal(t, "GetObjectStatus", de.Op)
			assert.Equal(t, "s3", de.Backend)
			assert.Equal(t, "my-bucket", de.Bucket)
			assert.Equal(t, "some/key", de.Key)
		})
	}
}

func TestWrapErrorAPICodes(t *testing.T) {
	d := &Driver{bucket: "my-bucket"}

	tests := []struct {
		code     string
		sentinel error
	}{
		{"NoSuchKey", backend.ErrNotFound},
		{"NotFound", backend.ErrNotFound},
		{"NoSuchBucket", backend.ErrBucketNotFound},
		{"AccessDenied", backend.ErrAccessDenied},
		{"Forbidden", backend.ErrAccessDenied},
		{"InvalidAccessKeyId", backend.ErrInvalidCredentials},
		{"SignatureDoesNotMatch", backend.ErrInvalidCredentials},
		{"SlowDown", backend.ErrThrottled},
		{"Throttling", backend.ErrThrottled},
		{"ServiceUnavailable", backend.ErrUnavailable},
		{"InternalError", backend.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			apiErr := &smithy.GenericAPIError{Code: tt.code, Message: "boom"}
			wrapped := d.wrapError("GetObjectListing", "prefix/", apiErr)
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestWrapErrorMessageFallback(t *testing.T) {
	d := &Driver{bucket: "my-bucket"}

	tests := []struct {
		name     string
		message  string
		sentinel error
	}{
		{"http 404", "operation error S3: HeadObject, https response error StatusCode: 404", backend.ErrNotFound},
		{"http 403", "https response error StatusCode: 403", backend.ErrAccessDenied},
		{"http 429", "https response error StatusCode: 429", backend.ErrThrottled},
		{"http 503", "https response error StatusCode: 503", backend.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := d.wrapError("GetObjectStatus", "k", errors.New(tt.message))
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestWrapErrorUnknownErrorPreserved(t *testing.T) {
	d := &Driver{bucket: "my-bucket"}
	inner := errors.New("connection reset by peer")

	wrapped := d.wrapError("CopyObject", "k", inner)
	assert.ErrorIs(t, wrapped, inner)
	assert.False(t, backend.IsNotFound(wrapped))
}
