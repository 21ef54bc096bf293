package artifact

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "nda/abc1234/exp_1/nda.pdf", Key("nda", "abc1234", "exp_1", "nda.pdf"))
	assert.Equal(t, "nda/head/exp_1/nda.pdf", Key("nda", "", "exp_1", "nda.pdf"))
}

func TestValidateKey(t *testing.T) {
	for _, key := range []string{"", "/abs", "a/../b"} {
		assert.ErrorIs(t, ValidateKey(key), ErrInvalidKey, key)
	}
	assert.NoError(t, ValidateKey("nda/head/x/nda.pdf"))
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New("localhost:9000", "a", "b", " ", false)
	assert.Error(t, err)
}

func TestPutRejectsInvalidKeyWithoutNetwork(t *testing.T) {
	s, err := New("localhost:9000", "a", "b", "exports", false)
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "../escape", []byte("x"), "text/plain")
	assert.True(t, errors.Is(err, ErrInvalidKey))
}

func TestUploadAndPresignMinio(t *testing.T) {
	endpoint := os.Getenv("CONTRACTVIEW_TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("CONTRACTVIEW_TEST_MINIO_ENDPOINT is not set")
	}
	s, err := New(endpoint, os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), "contractview-test", false)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.EnsureBucket(ctx))

	_, err = s.Put(ctx, "nda/head/t/nda.txt", []byte("1. Secret\n"), "text/plain")
	require.NoError(t, err)
	link, err := s.PresignedURL(ctx, "nda/head/t/nda.txt", "nda.txt", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.Contains(link, "X-Amz-Signature"))
}
