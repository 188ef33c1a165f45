package local

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBigCache(t *testing.T) {
	cache, err := NewBigCache(time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	_, err = cache.Get("missing")
	assert.True(t, IsMiss(err))

	large := bytes.Repeat([]byte{0x89}, 200*1024)
	require.NoError(t, cache.Set("card", large))

	got, err := cache.Get("card")
	require.NoError(t, err)
	assert.Equal(t, large, got)
}
