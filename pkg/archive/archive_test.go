package archive

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	assert.Equal(t, "ca116/task.txt/0b1c.txt", ObjectName("ca116", "task.txt", "0b1c"))
}

func TestMinioManagerRoundTrip(t *testing.T) {
	endpoint := os.Getenv("EINSTEIN_TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("EINSTEIN_TEST_MINIO_ENDPOINT not set")
	}
	m, err := NewMinioManagerFromConfig(MinioConfig{
		Endpoint:        endpoint,
		AccessKeyID:     os.Getenv("EINSTEIN_TEST_MINIO_ACCESS_KEY"),
		SecretAccessKey: os.Getenv("EINSTEIN_TEST_MINIO_SECRET_KEY"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	name := ObjectName("ca116", "task.txt", uuid.NewString())
	require.NoError(t, m.PutFile(ctx, "einstein-reports-test", name, []byte("REPORT FOR task.txt")))

	data, err := m.LoadFile(ctx, "einstein-reports-test", name)
	require.NoError(t, err)
	assert.Equal(t, "REPORT FOR task.txt", string(data))
}
