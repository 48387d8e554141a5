package storage

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
	"github.com/aws/smithy-go"

	"github.com/mkarpenko/codepad/internal/common"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in)
	}
	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in)
	}
	listObjectsV2 = func(c *s3.Client, ctx context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
		return c.ListObjectsV2(ctx, in)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
	createBucket = func(c *s3.Client, ctx context.Context, in *s3.CreateBucketInput) (*s3.CreateBucketOutput, error) {
		return c.CreateBucket(ctx, in)
	}
	getBucketPolicy = func(c *s3.Client, ctx context.Context, in *s3.GetBucketPolicyInput) (*s3.GetBucketPolicyOutput, error) {
		return c.GetBucketPolicy(ctx, in)
	}
	putBucketPolicy = func(c *s3.Client, ctx context.Context, in *s3.PutBucketPolicyInput) (*s3.PutBucketPolicyOutput, error) {
		return c.PutBucketPolicy(ctx, in)
	}
)

// S3Config carries the settings needed to reach the S3-compatible backend.
type S3Config struct {
	RootUser     string // MINIO_ROOT_USER
	RootPassword string // MINIO_ROOT_PASSWORD
	Bucket       string
	Region       string
	BaseEndpoint string
}

// S3Store implements ObjectStore against an S3-compatible service (MinIO in
// development, any S3 API in production).
type S3Store struct {
	client    *s3.Client
	bucket    string
	sizeLimit int64
}

func NewS3Store(ctx context.Context, c S3Config) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(c.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.RootUser,
			c.RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config error: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: c.Bucket, sizeLimit: DefaultSizeLimit}, nil
}

// classify maps backend errors to the adapter taxonomy. Missing objects and
// access denials both surface as common.ErrorNotFound so that existence is
// not leaked to callers denied by policy.
func classify(err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return common.ErrorNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "AccessDenied":
			return common.ErrorNotFound
		}
	}

	return err
}

func (s *S3Store) Put(ctx context.Context, key string, body []byte, metadata map[string]string) error {
	if int64(len(body)) > s.sizeLimit {
		return fmt.Errorf("object %q exceeds size limit of %d bytes", key, s.sizeLimit)
	}

	_, err := putObject(s.client, ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String("text/plain"),
		CacheControl: aws.String("max-age=3600"),
		Metadata:     metadata,
	})
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, ObjectInfo, error) {
	out, err := getObject(s.client, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if err = classify(err); errors.Is(err, common.ErrorNotFound) {
			return nil, ObjectInfo{}, err
		}
		return nil, ObjectInfo{}, fmt.Errorf("get %q: %w", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("get %q: reading body: %w", key, err)
	}

	return body, ObjectInfo{
		Metadata:     out.Metadata,
		LastModified: aws.ToTime(out.LastModified),
		Size:         aws.ToInt64(out.ContentLength),
	}, nil
}

func (s *S3Store) Head(ctx context.Context, key string) (ObjectInfo, error) {
	out, err := headObject(s.client, ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if err = classify(err); errors.Is(err, common.ErrorNotFound) {
			return ObjectInfo{}, err
		}
		return ObjectInfo{}, fmt.Errorf("head %q: %w", key, err)
	}

	return ObjectInfo{
		Metadata:     out.Metadata,
		LastModified: aws.ToTime(out.LastModified),
		Size:         aws.ToInt64(out.ContentLength),
	}, nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	var continuation *string

	for {
		out, err := listObjectsV2(s.client, ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", prefix, err)
		}

		for _, obj := range out.Contents {
			leaf := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if leaf == "" || strings.Contains(leaf, "/") {
				continue
			}
			names = append(names, leaf)
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		continuation = out.NextContinuationToken
	}

	return names, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := deleteObject(s.client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if err = classify(err); errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// EnsureBucket creates the bucket if absent. The upload cap enforced by Put
// is fixed at construction and is not updated here; Put reads it
// concurrently with bootstrap calls.
func (s *S3Store) EnsureBucket(ctx context.Context, public bool, sizeLimit int64) (bool, error) {
	_, err := createBucket(s.client, ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return false, nil
		}
		return false, fmt.Errorf("create bucket %q: %w", s.bucket, err)
	}

	return true, nil
}

// bucket policy documents, in the shape MinIO and S3 both accept

type policyStatement struct {
	Sid       string   `json:"Sid"`
	Effect    string   `json:"Effect"`
	Principal any      `json:"Principal"`
	Action    []string `json:"Action"`
	Resource  []string `json:"Resource"`
}

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

func actionsForOperation(op string) ([]string, error) {
	switch op {
	case "SELECT":
		return []string{"s3:GetObject"}, nil
	case "INSERT", "UPDATE":
		return []string{"s3:PutObject"}, nil
	case "DELETE":
		return []string{"s3:DeleteObject"}, nil
	default:
		return nil, fmt.Errorf("unknown policy operation %q", op)
	}
}

// EnsurePolicy merges one statement into the bucket policy, keyed by Sid.
// The existing document is fetched first so that rules installed earlier
// survive; a missing document starts from an empty one.
func (s *S3Store) EnsurePolicy(ctx context.Context, rule PolicyRule) error {
	actions, err := actionsForOperation(rule.Operation)
	if err != nil {
		return err
	}

	doc := policyDocument{Version: "2012-10-17"}

	out, err := getBucketPolicy(s.client, ctx, &s3.GetBucketPolicyInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var apiErr smithy.APIError
		if !errors.As(err, &apiErr) || apiErr.ErrorCode() != "NoSuchBucketPolicy" {
			return fmt.Errorf("get bucket policy: %w", err)
		}
	} else if out.Policy != nil {
		if err := json.Unmarshal([]byte(*out.Policy), &doc); err != nil {
			return fmt.Errorf("decode bucket policy: %w", err)
		}
	}

	stmt := policyStatement{
		Sid:       rule.Name,
		Effect:    "Allow",
		Principal: map[string]any{"AWS": []string{"*"}},
		Action:    actions,
		Resource:  []string{fmt.Sprintf("arn:aws:s3:::%s/%s", s.bucket, rule.Definition)},
	}

	replaced := false
	for i := range doc.Statement {
		if doc.Statement[i].Sid == rule.Name {
			doc.Statement[i] = stmt
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Statement = append(doc.Statement, stmt)
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode bucket policy: %w", err)
	}

	if _, err := putBucketPolicy(s.client, ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(s.bucket),
		Policy: aws.String(string(encoded)),
	}); err != nil {
		return fmt.Errorf("put bucket policy: %w", err)
	}

	return nil
}
