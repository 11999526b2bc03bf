package rdx

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourdesk/config"
)

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Defaults()

	cfg.RedisAddr = mr.Addr()
	client, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	v, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestConnectURL(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Defaults()
	cfg.RedisAddr = "redis://" + mr.Addr() + "/0"
	client, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	client.Close()
}

func TestConnectFails(t *testing.T) {
	cfg := config.Defaults()
	cfg.RedisAddr = "127.0.0.1:1"
	_, err := Connect(context.Background(), cfg)
	assert.Error(t, err)
}
