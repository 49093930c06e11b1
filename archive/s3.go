package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/justapithecus/lode/lode"
	lodes3 "github.com/justapithecus/lode/lode/s3"
)

// S3Config locates an archive in an S3 bucket.
type S3Config struct {
	Bucket string
	// Prefix is prepended to every object key. Leading and trailing slashes
	// are ignored.
	Prefix string
	// Region overrides the region from the AWS default chain.
	Region string
	// Endpoint targets an S3-compatible provider such as MinIO.
	Endpoint string
	// UsePathStyle puts the bucket in the path instead of the host name.
	UsePathStyle bool
}

// Validate checks the bucket name against the S3 naming rules that matter
// for addressing: 3 to 63 characters of lowercase letters, digits, dots and
// hyphens, starting and ending with a letter or digit.
func (c *S3Config) Validate() error {
	b := c.Bucket
	if b == "" {
		return errors.New("S3 bucket is required")
	}
	if len(b) < 3 || len(b) > 63 {
		return fmt.Errorf("S3 bucket %q must be 3 to 63 characters", b)
	}
	for i := 0; i < len(b); i++ {
		ch := b[i]
		alnum := ch >= 'a' && ch <= 'z' || ch >= '0' && ch <= '9'
		if alnum {
			continue
		}
		if (ch == '.' || ch == '-') && i > 0 && i < len(b)-1 {
			continue
		}
		return fmt.Errorf("S3 bucket %q has invalid character %q at %d", b, ch, i)
	}
	return nil
}

// ParseS3Path splits "bucket/prefix" or "s3://bucket/prefix".
func ParseS3Path(path string) (bucket, prefix string) {
	path = strings.TrimPrefix(path, "s3://")
	bucket, prefix, _ = strings.Cut(path, "/")
	return bucket, strings.Trim(prefix, "/")
}

// S3Factory builds a Lode store factory for s3cfg. Credentials come from the
// AWS default chain.
func S3Factory(ctx context.Context, s3cfg S3Config) (lode.StoreFactory, error) {
	if err := s3cfg.Validate(); err != nil {
		return nil, err
	}

	var loadOpts []func(*config.LoadOptions) error
	if s3cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(s3cfg.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsConfig, s3cfg.clientOptions)

	storeCfg := lodes3.Config{Bucket: s3cfg.Bucket, Prefix: strings.Trim(s3cfg.Prefix, "/")}
	return func() (lode.Store, error) {
		return lodes3.New(client, storeCfg)
	}, nil
}

func (c S3Config) clientOptions(o *s3.Options) {
	if c.Endpoint != "" {
		endpoint := c.Endpoint
		o.BaseEndpoint = &endpoint
	}
	o.UsePathStyle = c.UsePathStyle
}

// NewS3 creates an Archive backed by S3.
func NewS3(ctx context.Context, cfg Config, s3cfg S3Config) (*Archive, error) {
	factory, err := S3Factory(ctx, s3cfg)
	if err != nil {
		return nil, WrapInitError(err, cfg.Dataset)
	}
	return NewWithFactory(cfg, factory)
}
