package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Open returns the FileStore described by location:
//
//	/path/to/dir, ./dir, file:///path   local directory
//	memory://                           in-process memory
//	s3://bucket/prefix?region=..&endpoint=..&path_style=true
//
// S3 credentials come from the default AWS chain (environment, shared
// config, instance role).
func Open(ctx context.Context, location string) (FileStore, error) {
	if location == "" {
		return nil, fmt.Errorf("storage: empty location")
	}
	if !strings.Contains(location, "://") {
		return NewLocal(location)
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("storage: parse %q: %w", location, err)
	}
	switch u.Scheme {
	case "file":
		return NewLocal(u.Path)
	case "memory", "mem":
		return NewMemory(), nil
	case "s3":
		return openS3(ctx, u)
	}
	return nil, fmt.Errorf("storage: unsupported scheme %q", u.Scheme)
}

func openS3(ctx context.Context, u *url.URL) (*S3Store, error) {
	if u.Host == "" {
		return nil, fmt.Errorf("storage: s3 location needs a bucket")
	}
	q := u.Query()

	var loadOpts []func(*awsconfig.LoadOptions) error
	if region := q.Get("region"); region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := q.Get("endpoint"); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		if q.Get("path_style") == "true" {
			o.UsePathStyle = true
		}
	})
	return NewS3(client, u.Host, u.Path), nil
}
