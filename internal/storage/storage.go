// Package storage fetches test-case fixtures referenced by batch jobs
// from object storage.
package storage

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

type FixtureStore struct {
	cl     *minio.Client
	Bucket string
}

type Config struct {
	Url      string
	Login    string
	Password string
	Bucket   string
}

func NewFixtureStore(cfg Config) (*FixtureStore, error) {
	client, err := minio.New(cfg.Url, &minio.Options{
		Creds: credentials.NewStaticV4(cfg.Login, cfg.Password, ""),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create minio client")
	}
	return &FixtureStore{cl: client, Bucket: cfg.Bucket}, nil
}

func (s *FixtureStore) GetFile(ctx context.Context, filename string) (io.ReadCloser, error) {
	file, err := s.cl.GetObject(ctx, s.Bucket, filename, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return file, nil
}

// ReadString fetches an object fully into memory.
func (s *FixtureStore) ReadString(ctx context.Context, filename string) (string, error) {
	file, err := s.GetFile(ctx, filename)
	if err != nil {
		return "", errors.Wrapf(err, "get fixture %s", filename)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return "", errors.Wrapf(err, "read fixture %s", filename)
	}
	return string(data), nil
}
