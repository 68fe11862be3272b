package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	NAME          = "s3"
	UPLOAD_PREFIX = "uploads"
)

var ErrForeignURL = errors.New("url does not belong to this bucket")

type S3 struct {
	Endpoint     string
	Region       string
	Bucket       string
	StaticDomain string
	pathStyle    bool
	ak           string
	sk           string
	cli          *s3.Client
}

type Option func(*S3)

// WithPathStyle switches object URLs to <endpoint>/<bucket>/<key>, as MinIO expects.
func WithPathStyle(on bool) Option {
	return func(s *S3) {
		s.pathStyle = on
	}
}

func WithStaticDomain(domain string) Option {
	return func(s *S3) {
		s.StaticDomain = strings.TrimSuffix(domain, "/")
	}
}

func NewS3Client(endpoint, region, bucket, ak, sk string, opts ...Option) *S3 {
	cli := &S3{
		Endpoint: strings.TrimSuffix(endpoint, "/"),
		Region:   region,
		Bucket:   bucket,
		ak:       ak,
		sk:       sk,
	}
	for _, o := range opts {
		o(cli)
	}

	if _, err := cli.DefaultConfig(context.Background()); err != nil {
		panic(err)
	}

	return cli
}

func (s *S3) DefaultConfig(ctx context.Context) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(s.Region),
	}
	if s.ak != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID: s.ak, SecretAccessKey: s.sk,
			},
		}))
	}
	if s.Endpoint != "" {
		opts = append(opts, config.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:           s.Endpoint,
				SigningRegion: s.Region,
			}, nil
		})))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}

	s.cli = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = s.pathStyle
	})
	return cfg, nil
}

// ObjectKey builds the storage key for an uploaded file name.
func ObjectKey(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		name = "file"
	}
	return fmt.Sprintf("%s/%s-%s", UPLOAD_PREFIX, uuid.NewString(), name)
}

// ObjectURL returns the public URL of key.
func (s *S3) ObjectURL(key string) string {
	switch {
	case s.StaticDomain != "":
		return fmt.Sprintf("%s/%s", s.StaticDomain, key)
	case s.pathStyle || s.Endpoint != "":
		endpoint := s.Endpoint
		if endpoint == "" {
			endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", s.Region)
		}
		return fmt.Sprintf("%s/%s/%s", endpoint, s.Bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Bucket, s.Region, key)
	}
}

// ParseURL extracts the object key from a URL produced by ObjectURL.
// Virtual-host, path style and static domain forms are accepted.
func (s *S3) ParseURL(raw string) (string, error) {
	if s.StaticDomain != "" && strings.HasPrefix(raw, s.StaticDomain+"/") {
		return strings.TrimPrefix(raw, s.StaticDomain+"/"), nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	p := strings.TrimPrefix(u.Path, "/")

	if strings.HasPrefix(u.Host, s.Bucket+".s3.") || u.Host == s.Bucket+".s3.amazonaws.com" {
		if p == "" {
			return "", ErrForeignURL
		}
		return p, nil
	}

	if key, ok := strings.CutPrefix(p, s.Bucket+"/"); ok && key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s, %w", raw, ErrForeignURL)
}

func (s *S3) Put(ctx context.Context, data []byte, name, contentType string) (string, error) {
	key := ObjectKey(name)
	if err := s.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return "", err
	}
	return s.ObjectURL(key), nil
}

func (s *S3) Get(ctx context.Context, rawURL string) ([]byte, error) {
	key, err := s.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return s.GetObject(ctx, key)
}

func (s *S3) GetObject(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.cli.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(strings.TrimPrefix(key, "/")),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (s *S3) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := manager.NewUploader(s.cli).Upload(ctx, input); err != nil {
		slog.Error("failed to upload object", slog.String("driver", NAME), slog.String("key", key), slog.String("error", err.Error()))
		return err
	}
	return nil
}
