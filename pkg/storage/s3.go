package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Client is the subset of the S3 API used by S3Store. *s3.Client
// satisfies it.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// MIDIContentType is sent with objects whose key ends in ".mid".
const MIDIContentType = "audio/midi"

// S3Store stores files as objects in an S3 (or S3-compatible) bucket,
// under an optional key prefix.
//
// Rendered artifacts are small, so Write buffers the whole file and
// uploads it with a single PutObject when the writer is closed.
type S3Store struct {
	client S3Client
	bucket string
	prefix string
}

// NewS3 returns an S3Store. The client must already carry credentials,
// region and endpoint.
func NewS3(client S3Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Bucket returns the bucket name.
func (s *S3Store) Bucket() string {
	return s.bucket
}

func (s *S3Store) key(p string) string {
	if s.prefix == "" {
		return p
	}
	return s.prefix + "/" + p
}

func (s *S3Store) Read(ctx context.Context, p string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("storage: read s3://%s/%s: %w", s.bucket, s.key(p), os.ErrNotExist)
		}
		return nil, err
	}
	return out.Body, nil
}

func (s *S3Store) Write(ctx context.Context, p string) (io.WriteCloser, error) {
	return &s3Writer{ctx: ctx, store: s, key: s.key(p)}, nil
}

func (s *S3Store) Delete(ctx context.Context, p string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	return err
}

func (s *S3Store) Exists(ctx context.Context, p string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type s3Writer struct {
	ctx    context.Context
	store  *S3Store
	key    string
	buf    bytes.Buffer
	closed bool
}

func (w *s3Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.buf.Write(p)
}

// Close uploads the buffered content.
func (w *s3Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	in := &s3.PutObjectInput{
		Bucket:        aws.String(w.store.bucket),
		Key:           aws.String(w.key),
		Body:          bytes.NewReader(w.buf.Bytes()),
		ContentLength: aws.Int64(int64(w.buf.Len())),
	}
	if path.Ext(w.key) == ".mid" {
		in.ContentType = aws.String(MIDIContentType)
	}
	if _, err := w.store.client.PutObject(w.ctx, in); err != nil {
		return fmt.Errorf("storage: put s3://%s/%s: %w", w.store.bucket, w.key, err)
	}
	return nil
}

// isS3NotFound reports whether err is S3's missing-object error.
func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

var _ FileStore = (*S3Store)(nil)
