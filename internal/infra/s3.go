package infra

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/xid"
)

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Insecure  bool
}

// S3AudioStore хранит озвученные переводы для HTTP-клиентов.
type S3AudioStore struct {
	client *minio.Client
	bucket string
	host   string
	now    func() time.Time
}

func NewS3AudioStore(ctx context.Context, cfg S3Config) (*S3AudioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: !cfg.Insecure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init S3 client: %w", err)
	}

	// проверим, что бакет существует
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	scheme := "https"
	if cfg.Insecure {
		scheme = "http"
	}

	return &S3AudioStore{
		client: client,
		bucket: cfg.Bucket,
		host:   fmt.Sprintf("%s://%s", scheme, cfg.Endpoint),
		now:    time.Now,
	}, nil
}

// PutObject загружает объект и возвращает публичный URL
func (s *S3AudioStore) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"uploaded-at": s.now().Format(time.RFC3339)},
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	return s.buildPublicURL(key), nil
}

// PutAudio кладёт mp3 под audio/<session>/<yyyy-mm-dd>/<xid>.mp3.
func (s *S3AudioStore) PutAudio(ctx context.Context, sessionID string, audio []byte) (string, error) {
	key := AudioKey(sessionID, s.now())
	return s.PutObject(ctx, key, bytes.NewReader(audio), int64(len(audio)), "audio/mpeg")
}

func AudioKey(sessionID string, at time.Time) string {
	return path.Join("audio", sanitize(sessionID), at.UTC().Format("2006-01-02"), xid.New().String()+".mp3")
}

func sanitize(id string) string {
	id = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
	if id == "" {
		return "anonymous"
	}
	return id
}

func (s *S3AudioStore) buildPublicURL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return fmt.Sprintf("%s/%s/%s", s.host, s.bucket, strings.Join(parts, "/"))
}
