// Package s3 persists world state as one JSON object in an S3-compatible
// bucket (AWS S3 or MinIO).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
)

const contentType = "application/json"

// ObjectAPI is the subset of the S3 client the store uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds connection parameters. Credentials come from the default AWS
// chain (AWS_ACCESS_KEY_ID, shared config, instance roles).
type Config struct {
	Region    string
	Bucket    string
	Key       string
	Endpoint  string // optional; enables a custom endpoint such as MinIO
	PathStyle bool
}

// Store reads and writes one world-state object.
type Store struct {
	client ObjectAPI
	bucket string
	key    string
}

// New creates a store from Config using the default AWS configuration.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg.Bucket, cfg.Key)
}

// NewWithClient creates a store over an existing client.
func NewWithClient(client ObjectAPI, bucket, key string) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		key = "world-state.json"
	}
	return &Store{client: client, bucket: bucket, key: key}, nil
}

// Key returns the object key holding the world state.
func (s *Store) Key() string {
	return s.key
}

// Load reads and normalizes the stored state. A missing object yields the
// initial state.
func (s *Store) Load(ctx context.Context) (state.State, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return state.Initial(), nil
		}
		return state.State{}, fmt.Errorf("get world state object: %w", err)
	}
	defer out.Body.Close()
	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return state.State{}, fmt.Errorf("read world state object: %w", err)
	}
	return state.Decode(raw), nil
}

// Save replaces the stored object. S3 puts are atomic per object.
func (s *Store) Save(ctx context.Context, st state.State) error {
	raw, err := state.Encode(st)
	if err != nil {
		return fmt.Errorf("encode world state: %w", err)
	}
	ct := contentType
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &s.key,
		Body:        bytes.NewReader(raw),
		ContentType: &ct,
	}); err != nil {
		return fmt.Errorf("put world state object: %w", err)
	}
	return nil
}
