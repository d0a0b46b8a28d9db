package file_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/file"
)

type mockS3Client struct {
	mock.Mock
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *mockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func newS3(t *testing.T, client file.S3Client, cfg file.S3Config) *file.S3Storage {
	t.Helper()
	s, err := file.NewS3Storage(context.Background(), cfg, file.WithS3Client(client))
	require.NoError(t, err)
	return s
}

func TestNewS3Storage_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := file.NewS3Storage(context.Background(), file.S3Config{Region: "us-east-1"})
	require.ErrorIs(t, err, file.ErrInvalidConfig)
}

func TestS3Storage_URL(t *testing.T) {
	t.Parallel()

	aws := newS3(t, &mockS3Client{}, file.S3Config{Bucket: "evidence", Region: "eu-west-1"})
	assert.Equal(t, "https://evidence.s3.eu-west-1.amazonaws.com/returns/a.jpg", aws.URL("returns/a.jpg"))

	minio := newS3(t, &mockS3Client{}, file.S3Config{Bucket: "evidence", Region: "us-east-1", Endpoint: "http://localhost:9000/"})
	assert.Equal(t, "http://localhost:9000/evidence/returns/a.jpg", minio.URL("returns/a.jpg"))

	cdn := newS3(t, &mockS3Client{}, file.S3Config{Bucket: "evidence", Region: "us-east-1", BaseURL: "https://cdn.example.com"})
	assert.Equal(t, "https://cdn.example.com/returns/a.jpg", cdn.URL("returns/a.jpg"))
}

func TestS3Storage_Put(t *testing.T) {
	t.Parallel()
	client := &mockS3Client{}
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "evidence" && *in.Key == "returns/r1/img.png" && *in.ContentType == "image/png"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	s := newS3(t, client, file.S3Config{Bucket: "evidence", Region: "us-east-1"})
	obj, err := s.Put(context.Background(), "/returns/../returns/r1/img.png", file.Upload{
		ContentType: "image/png",
		Size:        3,
		Body:        bytes.NewReader([]byte("png")),
	})
	require.NoError(t, err)
	assert.Equal(t, "returns/r1/img.png", obj.Key)
	assert.Equal(t, "https://evidence.s3.us-east-1.amazonaws.com/returns/r1/img.png", obj.URL)
	client.AssertExpectations(t)
}

func TestS3Storage_PutErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing bucket", func(t *testing.T) {
		t.Parallel()
		client := &mockS3Client{}
		client.On("PutObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchBucket{}).Once()
		s := newS3(t, client, file.S3Config{Bucket: "evidence", Region: "us-east-1"})

		_, err := s.Put(context.Background(), "a.png", file.Upload{Body: bytes.NewReader([]byte("x"))})
		require.ErrorIs(t, err, file.ErrBucketNotFound)
	})

	t.Run("generic failure", func(t *testing.T) {
		t.Parallel()
		client := &mockS3Client{}
		client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()
		s := newS3(t, client, file.S3Config{Bucket: "evidence", Region: "us-east-1"})

		_, err := s.Put(context.Background(), "a.png", file.Upload{Body: bytes.NewReader([]byte("x"))})
		require.ErrorIs(t, err, file.ErrFailedToWriteFile)
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		s := newS3(t, &mockS3Client{}, file.S3Config{Bucket: "evidence", Region: "us-east-1"})

		_, err := s.Put(context.Background(), "a.png", file.Upload{})
		require.ErrorIs(t, err, file.ErrEmptyUpload)
	})

	t.Run("bad key", func(t *testing.T) {
		t.Parallel()
		s := newS3(t, &mockS3Client{}, file.S3Config{Bucket: "evidence", Region: "us-east-1"})

		_, err := s.Put(context.Background(), "/", file.Upload{Body: bytes.NewReader([]byte("x"))})
		require.ErrorIs(t, err, file.ErrInvalidPath)
	})
}

func TestS3Storage_Delete(t *testing.T) {
	t.Parallel()
	client := &mockS3Client{}
	client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return *in.Key == "returns/a.png"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	s := newS3(t, client, file.S3Config{Bucket: "evidence", Region: "us-east-1"})
	require.NoError(t, s.Delete(context.Background(), "returns/a.png"))
	client.AssertExpectations(t)
}
