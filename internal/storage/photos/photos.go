// Package photos hands out presigned S3 upload URLs for recipe photos.
package photos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"family-recipes-go/internal/domain/validation"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const defaultPresignTTL = 15 * time.Minute

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

type Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
	PresignTTL    time.Duration
}

// Upload is a one-shot PUT target plus the URL the photo will be served from.
type Upload struct {
	UploadURL string
	PhotoURL  string
	Method    string
	ExpiresAt time.Time
}

type presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Uploader struct {
	presigner     presigner
	bucket        string
	publicBaseURL string
	ttl           time.Duration
	now           func() time.Time
}

// NewUploader resolves credentials through the default AWS chain.
func NewUploader(ctx context.Context, cfg Config) (*Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewUploaderWithClient(client, cfg), nil
}

func NewUploaderWithClient(client *s3.Client, cfg Config) *Uploader {
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		switch {
		case cfg.Endpoint != "":
			base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		default:
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &Uploader{
		presigner:     s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		publicBaseURL: base,
		ttl:           ttl,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// PresignUpload reserves a fresh object key under the user's prefix.
func (u *Uploader) PresignUpload(ctx context.Context, userID, contentType string) (*Upload, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := extensions[contentType]
	if !ok {
		return nil, validation.New("content_type", "content_type must be one of image/jpeg, image/png, image/webp, image/gif")
	}
	if userID == "" {
		return nil, validation.New("user_id", "user_id is required")
	}

	key := fmt.Sprintf("recipes/%s/%s.%s", userID, uuid.NewString(), ext)
	issuedAt := u.now()

	request, err := u.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(u.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign put %s: %w", key, err)
	}

	return &Upload{
		UploadURL: request.URL,
		PhotoURL:  u.publicBaseURL + "/" + key,
		Method:    request.Method,
		ExpiresAt: issuedAt.Add(u.ttl),
	}, nil
}
