package storage

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUploaderRequiresBucket(t *testing.T) {
	_, err := NewUploader(context.Background(), S3Config{Region: "eu-west-1"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewUploaderWithStaticCredentials(t *testing.T) {
	up, err := NewUploader(context.Background(), S3Config{
		Bucket:          "corpus",
		Region:          "eu-west-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, up.client)
	assert.Equal(t, "corpus", up.bucket)
}
