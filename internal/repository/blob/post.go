// Package blob implements repository.PostStore on S3 (or any
// S3-compatible object store via a custom endpoint). Each post lives
// as one JSON object at key "<id>.json"; there is no index — listing
// is a full scan of the bucket, which is acceptable at this scale.
package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tazwar/feedpost/internal/apperror"
	"github.com/tazwar/feedpost/internal/model"
	"github.com/tazwar/feedpost/internal/repository"
)

// compile-time check that *PostStore implements repository.PostStore
var _ repository.PostStore = (*PostStore)(nil)

// Config holds the object-store connection settings. Endpoint is
// optional; set it to point at MinIO or another S3-compatible store.
// AccessKey/SecretKey are optional too — when empty the SDK falls back
// to its default credential chain (env vars, shared config, IMDS).
type Config struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// PostStore reads and writes post documents in a single bucket.
type PostStore struct {
	client *s3.Client
	bucket string
}

// New builds the S3 client once at startup. Static credentials are
// used when provided, otherwise the SDK's default chain applies.
func New(ctx context.Context, cfg Config) (*PostStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("blob: bucket name is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("blob: loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Path-style addressing: MinIO and most self-hosted
			// S3-compatibles don't resolve virtual-host bucket URLs.
			o.UsePathStyle = true
		}
	})

	return &PostStore{client: client, bucket: cfg.Bucket}, nil
}

// postKey maps a post ID to its object key.
func postKey(id string) string {
	return id + ".json"
}

// Put serializes the post and writes it as one object. Used both for
// creation and for the comment-append rewrite — S3 has no partial
// update, the whole document is replaced each time.
func (ps *PostStore) Put(ctx context.Context, post *model.Post) error {
	body, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("blob: marshaling post %s: %w", post.ID, err)
	}

	_, err = ps.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(ps.bucket),
		Key:         aws.String(postKey(post.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("blob: uploading post %s: %w", post.ID, err)
	}
	return nil
}

// Get downloads and decodes one post. A missing object maps to
// apperror.ErrNotFound; anything else is a store failure.
func (ps *PostStore) Get(ctx context.Context, id string) (*model.Post, error) {
	out, err := ps.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ps.bucket),
		Key:    aws.String(postKey(id)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("blob: downloading post %s: %w", id, err)
	}
	defer out.Body.Close()

	return decodePost(out.Body, id)
}

// List downloads every post object in the bucket. Objects that are not
// "<id>.json" are skipped rather than failing the whole listing.
func (ps *PostStore) List(ctx context.Context) ([]model.Post, error) {
	posts := []model.Post{}

	paginator := s3.NewListObjectsV2Paginator(ps.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(ps.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("blob: listing posts: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			post, err := ps.Get(ctx, strings.TrimSuffix(key, ".json"))
			if err != nil {
				// Deleted between list and get — skip, don't fail.
				if errors.Is(err, apperror.ErrNotFound) {
					continue
				}
				return nil, err
			}
			posts = append(posts, *post)
		}
	}

	return posts, nil
}

// Delete removes the post object. S3 deletes are unconditional, so we
// probe with HeadObject first to report whether anything existed —
// the API contract wants "true if an object existed".
func (ps *PostStore) Delete(ctx context.Context, id string) (bool, error) {
	key := postKey(id)

	_, err := ps.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(ps.bucket),
		Key:    aws.String(key),
	})
	existed := true
	if err != nil {
		var notFound *types.NotFound
		if !errors.As(err, &notFound) {
			return false, fmt.Errorf("blob: checking post %s: %w", id, err)
		}
		existed = false
	}

	_, err = ps.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(ps.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return false, fmt.Errorf("blob: deleting post %s: %w", id, err)
	}
	return existed, nil
}

func decodePost(r io.Reader, id string) (*model.Post, error) {
	var post model.Post
	if err := json.NewDecoder(r).Decode(&post); err != nil {
		return nil, fmt.Errorf("blob: decoding post %s: %w", id, err)
	}
	if post.Comments == nil {
		post.Comments = []model.Comment{}
	}
	return &post, nil
}
