package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gator-hub/gator-hub/internal/domain/shared"
)

func TestStorage(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()

	_, err := s.GetItem(ctx, "k")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	value := []byte(`{"isDarkMode":true}`)
	require.NoError(t, s.SetItem(ctx, "k", value))
	value[0] = 'x'

	got, err := s.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"isDarkMode":true}`, string(got))

	require.NoError(t, s.RemoveItem(ctx, "k"))
	require.NoError(t, s.RemoveItem(ctx, "k"))
	_, err = s.GetItem(ctx, "k")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
