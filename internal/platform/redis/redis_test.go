package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	c, err := Open(ctx, Options{Addr: mr.Addr()})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get(ctx, "missing").Result()
	assert.True(t, IsMiss(err))
}

func TestOpenFails(t *testing.T) {
	_, err := Open(context.Background(), Options{})
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = Open(context.Background(), Options{Addr: addr})
	assert.Error(t, err)
}
