package view

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source loads views from an S3 bucket. The view "pages/login" with prefix
// "views/" and extension ".js" is fetched from "views/pages/login.js".
//
// Example:
//
//	client := s3.New(s3.Options{Region: "eu-west-1"})
//	src := view.NewS3Source(client, "my-bucket", "views/", ".js")
type S3Source struct {
	client  S3API
	bucket  string
	prefix  string
	ext     string
	maxSize int64
}

// NewS3Source creates an S3Source.
func NewS3Source(client S3API, bucket, prefix, ext string) *S3Source {
	return &S3Source{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		ext:     ext,
		maxSize: 10 << 20,
	}
}

// WithMaxSize limits how many bytes a single view may have (0 = no limit).
func (s *S3Source) WithMaxSize(n int64) *S3Source {
	s.maxSize = n
	return s
}

// Ref implements Source.
func (s *S3Source) Ref(id string) (Ref, error) {
	if err := checkID(id); err != nil {
		return Ref{}, err
	}
	key := s.prefix + id + s.ext
	return NewRef(id, func(ctx context.Context) (Unit, error) {
		return s.fetch(ctx, id, key)
	}), nil
}

func (s *S3Source) fetch(ctx context.Context, id, key string) (*Module, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	var r io.Reader = out.Body
	if s.maxSize > 0 {
		r = io.LimitReader(out.Body, s.maxSize+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("s3 read %s/%s: %w", s.bucket, key, err)
	}
	if s.maxSize > 0 && int64(len(body)) > s.maxSize {
		return nil, fmt.Errorf("s3 object %s/%s exceeds %d bytes", s.bucket, key, s.maxSize)
	}

	m := &Module{
		ID:          id,
		Key:         key,
		Body:        body,
		ContentType: aws.ToString(out.ContentType),
		ETag:        aws.ToString(out.ETag),
	}
	if m.ContentType == "" {
		m.ContentType = contentTypeFor(key)
	}
	return m, nil
}
