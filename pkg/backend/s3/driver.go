package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/3leaps/objfs/pkg/backend"
)

// Driver implements backend.Driver for AWS S3 and S3-compatible storage.
type Driver struct {
	client       *s3.Client
	bucket       string
	folderSuffix string
	pageSize     int
}

var _ backend.Driver = (*Driver)(nil)

// New creates a new S3 driver with the given configuration.
//
// The driver uses AWS SDK v2's default credential chain unless explicit
// credentials are provided in the config.
func New(ctx context.Context, cfg Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, &backend.DriverError{
			Op:      "New",
			Backend: "s3",
			Bucket:  cfg.Bucket,
			Err:     err,
		}
	}

	s3Opts := []func(*s3.Options){
		func(o *s3.Options) {
			if cfg.ForcePathStyle {
				o.UsePathStyle = true
			}
		},
	}

	// Custom endpoint for S3-compatible stores
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)

	suffix := cfg.FolderSuffix
	if suffix == "" {
		suffix = DefaultFolderSuffix
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Driver{
		client:       client,
		bucket:       cfg.Bucket,
		folderSuffix: suffix,
		pageSize:     pageSize,
	}, nil
}

// loadAWSConfig builds the AWS configuration with appropriate credentials.
func loadAWSConfig(ctx context.Context, cfg Config) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error

	// Only apply explicit region if user set one in config.
	// Let SDK resolve from env/profile first.
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		staticCreds := credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token (empty for long-term credentials)
		)
		opts = append(opts, config.WithCredentialsProvider(staticCreds))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}

	awsCfg.Region = resolveRegion(cfg.Endpoint, awsCfg.Region)

	return awsCfg, nil
}

func (d *Driver) FolderSuffix() string { return d.folderSuffix }

func (d *Driver) RootKey() string { return "s3://" + d.bucket }

// Close releases any resources held by the driver.
// The S3 client doesn't require explicit cleanup, but this satisfies the interface.
func (d *Driver) Close() error { return nil }

// CreateEmptyObject uploads a zero-byte object, used for folder markers.
func (d *Driver) CreateEmptyObject(ctx context.Context, key string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(d.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(nil),
		ContentLength: aws.Int64(0),
	}
	if _, err := d.client.PutObject(ctx, input); err != nil {
		return d.wrapError("CreateEmptyObject", key, err)
	}
	return nil
}

// CreateObject opens an upload stream. Content is buffered and uploaded
// with a single PutObject when the writer is closed.
func (d *Driver) CreateObject(ctx context.Context, key string) (io.WriteCloser, error) {
	return &objectWriter{ctx: ctx, driver: d, key: key}, nil
}

// CopyObject performs a server-side copy within the bucket.
func (d *Driver) CopyObject(ctx context.Context, srcKey, dstKey string) error {
	input := &s3.CopyObjectInput{
		Bucket:     aws.String(d.bucket),
		CopySource: aws.String(d.bucket + "/" + srcKey),
		Key:        aws.String(dstKey),
	}
	if _, err := d.client.CopyObject(ctx, input); err != nil {
		return d.wrapError("CopyObject", srcKey, err)
	}
	return nil
}

// DeleteObject deletes a single object by key.
func (d *Driver) DeleteObject(ctx context.Context, key string) error {
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(d.bucket), Key: aws.String(key)})
	if err != nil {
		return d.wrapError("DeleteObject", key, err)
	}
	return nil
}

// GetObjectStatus returns metadata for a single object.
func (d *Driver) GetObjectStatus(ctx context.Context, key string) (*backend.ObjectStatus, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	}

	output, err := d.client.HeadObject(ctx, input)
	if err != nil {
		return nil, d.wrapError("GetObjectStatus", key, err)
	}

	return &backend.ObjectStatus{
		SizeBytes:      aws.ToInt64(output.ContentLength),
		LastModifiedMs: aws.ToTime(output.LastModified).UnixMilli(),
	}, nil
}

// GetObjectListing begins a paginated listing and returns the first chunk.
func (d *Driver) GetObjectListing(ctx context.Context, opts backend.ListingOptions) (backend.ListingChunk, error) {
	pageSize := backend.ClampPageSize(opts.PageSize, d.pageSize)

	first, err := d.listPage(ctx, opts.Prefix, opts.Recursive, pageSize, "")
	if err != nil {
		return nil, err
	}
	if len(first.objects) == 0 && len(first.prefixes) == 0 {
		return nil, nil
	}
	return first, nil
}

func (d *Driver) listPage(ctx context.Context, prefix string, recursive bool, pageSize int, token string) (*chunk, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(d.bucket),
		MaxKeys: aws.Int32(int32(pageSize)),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	if !recursive {
		input.Delimiter = aws.String("/")
	}
	if token != "" {
		input.ContinuationToken = aws.String(token)
	}

	output, err := d.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, d.wrapError("GetObjectListing", prefix, err)
	}

	c := &chunk{
		driver:    d,
		prefix:    prefix,
		recursive: recursive,
		pageSize:  pageSize,
	}
	for _, obj := range output.Contents {
		c.objects = append(c.objects, aws.ToString(obj.Key))
	}
	for _, cp := range output.CommonPrefixes {
		c.prefixes = append(c.prefixes, aws.ToString(cp.Prefix))
	}
	if aws.ToBool(output.IsTruncated) && output.NextContinuationToken != nil {
		c.nextToken = aws.ToString(output.NextContinuationToken)
	}
	return c, nil
}

// chunk implements backend.ListingChunk over ListObjectsV2 pagination.
type chunk struct {
	driver    *Driver
	prefix    string
	recursive bool
	pageSize  int

	objects   []string
	prefixes  []string
	nextToken string
}

func (c *chunk) ObjectNames() []string    { return c.objects }
func (c *chunk) CommonPrefixes() []string { return c.prefixes }

func (c *chunk) NextChunk(ctx context.Context) (backend.ListingChunk, error) {
	if c.nextToken == "" {
		return nil, nil
	}
	return c.driver.listPage(ctx, c.prefix, c.recursive, c.pageSize, c.nextToken)
}

// objectWriter buffers upload content and issues a PutObject on Close.
//
// Buffering keeps the driver dependency-light; callers uploading large
// content should size their writes accordingly. Multipart upload is a
// candidate followup if streaming writes of multi-GB objects are needed.
type objectWriter struct {
	ctx    context.Context
	driver *Driver
	key    string
	buf    bytes.Buffer
	closed bool
}

func (w *objectWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("write to closed object writer")
	}
	return w.buf.Write(p)
}

func (w *objectWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	input := &s3.PutObjectInput{
		Bucket:        aws.String(w.driver.bucket),
		Key:           aws.String(w.key),
		Body:          bytes.NewReader(w.buf.Bytes()),
		ContentLength: aws.Int64(int64(w.buf.Len())),
	}
	if _, err := w.driver.client.PutObject(w.ctx, input); err != nil {
		return w.driver.wrapError("CreateObject", w.key, err)
	}
	return nil
}

// wrapError converts S3 errors to driver errors with appropriate sentinel errors.
func (d *Driver) wrapError(op, key string, err error) error {
	wrapped := &backend.DriverError{
		Op:      op,
		Backend: "s3",
		Bucket:  d.bucket,
		Key:     key,
		Err:     err,
	}

	// Check for specific S3 error types first
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket

	switch {
	case errors.As(err, &notFound), errors.As(err, &noSuchKey):
		wrapped.Err = backend.ErrNotFound
		return wrapped
	case errors.As(err, &noSuchBucket):
		wrapped.Err = backend.ErrBucketNotFound
		return wrapped
	}

	// Check smithy API errors for error codes
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch code {
		case "NoSuchKey", "NotFound":
			wrapped.Err = backend.ErrNotFound
		case "NoSuchBucket":
			wrapped.Err = backend.ErrBucketNotFound
		case "AccessDenied", "Forbidden":
			wrapped.Err = backend.ErrAccessDenied
		case "InvalidAccessKeyId", "SignatureDoesNotMatch":
			wrapped.Err = backend.ErrInvalidCredentials
		case "SlowDown", "Throttling", "RequestLimitExceeded":
			wrapped.Err = backend.ErrThrottled
		case "ServiceUnavailable", "InternalError":
			wrapped.Err = backend.ErrUnavailable
		}
		return wrapped
	}

	// Fallback: check error message for common cases
	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "NoSuchKey") || strings.Contains(errMsg, "NotFound") || strings.Contains(errMsg, "404"):
		wrapped.Err = backend.ErrNotFound
	case strings.Contains(errMsg, "NoSuchBucket"):
		wrapped.Err = backend.ErrBucketNotFound
	case strings.Contains(errMsg, "AccessDenied") || strings.Contains(errMsg, "Forbidden") || strings.Contains(errMsg, "403"):
		wrapped.Err = backend.ErrAccessDenied
	case strings.Contains(errMsg, "InvalidAccessKeyId") || strings.Contains(errMsg, "SignatureDoesNotMatch"):
		wrapped.Err = backend.ErrInvalidCredentials
	case strings.Contains(errMsg, "SlowDown") || strings.Contains(errMsg, "Throttling") || strings.Contains(errMsg, "429"):
		wrapped.Err = backend.ErrThrottled
	case strings.Contains(errMsg, "ServiceUnavailable") || strings.Contains(errMsg, "503"):
		wrapped.Err = backend.ErrUnavailable
	}

	return wrapped
}

// resolveRegion determines the final region to use after SDK config loading.
//
// The sdkRegion parameter is the region after SDK loading, which already
// incorporates explicit config (if set) or env/profile resolution. This
// function only applies the fallback default: if sdkRegion is still empty
// and no custom endpoint is set, default to us-east-1. S3-compatible
// stores (endpoint set) get no default.
func resolveRegion(endpoint, sdkRegion string) string {
	if sdkRegion != "" {
		return sdkRegion
	}
	if endpoint == "" {
		return DefaultAWSRegion
	}
	return ""
}
