package dataset

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Source loads a Dataset.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

// FileSource reads a CSV file from the local filesystem.
type FileSource struct {
	Path string
}

func (s *FileSource) Load(_ context.Context) (*Dataset, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, &ErrDataUnavailable{Location: s.Path, Err: err}
	}
	defer f.Close()

	ds, err := Parse(f)
	if err != nil {
		return nil, &ErrDataUnavailable{Location: s.Path, Err: err}
	}
	return ds, nil
}

// S3GetObjectAPI is the subset of the S3 client used by S3Source.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads a CSV object from S3.
type S3Source struct {
	Client S3GetObjectAPI
	Bucket string
	Key    string
}

func (s *S3Source) location() string {
	return "s3://" + s.Bucket + "/" + s.Key
}

func (s *S3Source) Load(ctx context.Context) (*Dataset, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, &ErrDataUnavailable{Location: s.location(), Err: err}
	}
	defer out.Body.Close()

	ds, err := Parse(out.Body)
	if err != nil {
		return nil, &ErrDataUnavailable{Location: s.location(), Err: err}
	}
	return ds, nil
}

// StaticSource serves a fixed Dataset.
type StaticSource struct {
	Dataset *Dataset
}

func (s *StaticSource) Load(_ context.Context) (*Dataset, error) {
	if s.Dataset.Len() == 0 {
		return nil, &ErrDataUnavailable{Location: "static", Err: errors.New("dataset has no rows")}
	}
	return s.Dataset, nil
}

// NewSource returns a Source for location, which is either a filesystem
// path or an s3://bucket/key URI. S3 access uses the default AWS
// credential chain.
func NewSource(ctx context.Context, location string) (Source, error) {
	if location == "" {
		return nil, &ErrDataUnavailable{Err: fmt.Errorf("no dataset location configured")}
	}
	if !strings.HasPrefix(location, "s3://") {
		return &FileSource{Path: location}, nil
	}

	bucket, key, err := parseS3URI(location)
	if err != nil {
		return nil, &ErrDataUnavailable{Location: location, Err: err}
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, &ErrDataUnavailable{Location: location, Err: fmt.Errorf("load AWS config: %w", err)}
	}
	return &S3Source{Client: s3.NewFromConfig(awsCfg), Bucket: bucket, Key: key}, nil
}

// Load resolves location with NewSource and loads it.
func Load(ctx context.Context, location string) (*Dataset, error) {
	src, err := NewSource(ctx, location)
	if err != nil {
		return nil, err
	}
	return src.Load(ctx)
}

func parseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("parse %q: %w", uri, err)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%q must have the form s3://bucket/key", uri)
	}
	return bucket, key, nil
}
