package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rs/zerolog/log"
)

// Upload is an image file received from a client.
type Upload struct {
	Data     []byte
	Filename string
}

// Storage persists uploaded images and returns the reference to store on the record.
type Storage interface {
	Store(ctx context.Context, data []byte, originalName string) (string, error)
}

// accepted image types and the file extensions each may carry
var allowedImageTypes = map[string][]string{
	"image/png":  {".png"},
	"image/jpeg": {".jpg", ".jpeg"},
	"image/gif":  {".gif"},
}

// checkImage sniffs data and requires the file extension to agree with the detected type.
func checkImage(data []byte, originalName string) (contentType, ext string, err error) {
	ext = strings.ToLower(filepath.Ext(originalName))
	detected := mimetype.Detect(data)
	for mime, exts := range allowedImageTypes {
		if !detected.Is(mime) {
			continue
		}
		for _, allowed := range exts {
			if allowed == ext {
				return mime, ext, nil
			}
		}
	}
	return "", "", errs.NewUnsupportedMediaTypeError(detected.String(), []string{"png", "jpg", "jpeg", "gif"})
}

// objectKey never collides with an earlier upload of the same name.
func objectKey(now time.Time, originalName, ext string) string {
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	return fmt.Sprintf("%d_%s_%s%s", now.Unix(), uuid.NewString(), secureName(base), ext)
}

func secureName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	if b.Len() > 64 {
		return b.String()[:64]
	}
	return b.String()
}

// LocalStorage writes uploads into a directory served under URLPrefix.
type LocalStorage struct {
	Dir       string
	URLPrefix string
	now       func() time.Time
}

func NewLocalStorage(dir, urlPrefix string) *LocalStorage {
	return &LocalStorage{Dir: dir, URLPrefix: strings.TrimSuffix(urlPrefix, "/"), now: time.Now}
}

func (s *LocalStorage) Store(ctx context.Context, data []byte, originalName string) (string, error) {
	_, ext, err := checkImage(data, originalName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", errs.NewStorageError("create upload directory", err)
	}

	key := objectKey(s.now(), originalName, ext)
	f, err := os.OpenFile(filepath.Join(s.Dir, key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errs.NewStorageError("create upload file", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", errs.NewStorageError("write upload file", err)
	}
	if err := f.Close(); err != nil {
		return "", errs.NewStorageError("close upload file", err)
	}
	return s.URLPrefix + "/" + key, nil
}

// ObjectPutter is the part of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage uploads images to a bucket and returns their public URL.
type S3Storage struct {
	client        ObjectPutter
	bucket        string
	prefix        string
	publicBaseURL string
	now           func() time.Time
}

func NewS3Storage(client ObjectPutter, bucket, prefix, publicBaseURL string) *S3Storage {
	return &S3Storage{
		client:        client,
		bucket:        bucket,
		prefix:        strings.Trim(prefix, "/"),
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		now:           time.Now,
	}
}

func (s *S3Storage) Store(ctx context.Context, data []byte, originalName string) (string, error) {
	contentType, ext, err := checkImage(data, originalName)
	if err != nil {
		return "", err
	}
	key := objectKey(s.now(), originalName, ext)
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errs.NewStorageError("upload image", err)
	}
	return s.publicBaseURL + "/" + key, nil
}

// NewStorageFromConfig picks the storage backend named by STORAGE_DRIVER.
func NewStorageFromConfig(ctx context.Context, cfg map[string]string) (Storage, error) {
	switch driver := config.GetString(cfg, "STORAGE_DRIVER", "local"); driver {
	case "local":
		dir := config.GetString(cfg, "UPLOAD_DIR", "uploads")
		log.Info().Str("dir", dir).Msg("Storing uploads on local disk")
		return NewLocalStorage(dir, "/uploads"), nil
	case "s3":
		bucket := config.GetString(cfg, "S3_BUCKET", "")
		if bucket == "" {
			return nil, errs.NewEnvironmentVariableError("S3_BUCKET")
		}
		region := config.GetString(cfg, "S3_REGION", config.GetString(cfg, "AWS_REGION", "us-east-1"))

		opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
		if key := config.GetString(cfg, "S3_ACCESS_KEY_ID", ""); key != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				key,
				config.GetString(cfg, "S3_SECRET_ACCESS_KEY", ""),
				"",
			)))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, errs.NewConfigError("S3", err)
		}

		endpoint := config.GetString(cfg, "S3_ENDPOINT", "")
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
				o.UsePathStyle = true
			}
		})

		publicURL := config.GetString(cfg, "S3_PUBLIC_URL", fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region))
		log.Info().Str("bucket", bucket).Msg("Storing uploads in S3")
		return NewS3Storage(client, bucket, config.GetString(cfg, "S3_PREFIX", "uploads"), publicURL), nil
	default:
		return nil, errs.NewConfigError("STORAGE_DRIVER", fmt.Errorf("unsupported storage driver %q", driver))
	}
}
