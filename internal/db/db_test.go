package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/apply-service/internal/db"
)

func TestNewPostgresPool_BadDSN(t *testing.T) {
	_, err := db.NewPostgresPool(context.Background(), "postgres://%zz", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pgxpool.ParseConfig")
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := db.NewRedisClient(context.Background(), "")
	assert.EqualError(t, err, "REDIS_URL is required")

	_, err = db.NewRedisClient(context.Background(), "http://localhost:6379")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.ParseURL")
}
