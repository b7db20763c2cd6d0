package pool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct{ id int }

func (s *stubAdapter) GenerateContent(ctx context.Context, model string, payload any) (any, error) {
	return nil, nil
}

func TestAdapterCache_GetOrCreate_ReusesBuiltAdapter(t *testing.T) {
	c := newAdapterCache()

	var builds int
	build := func() (Adapter, error) {
		builds++
		return &stubAdapter{id: builds}, nil
	}

	first, err := c.getOrCreate(FamilyOpenAICustom, "a", build)
	require.NoError(t, err)
	second, err := c.getOrCreate(FamilyOpenAICustom, "a", build)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)
}

func TestAdapterCache_InvalidateForcesRebuild(t *testing.T) {
	c := newAdapterCache()
	var builds int
	build := func() (Adapter, error) {
		builds++
		return &stubAdapter{id: builds}, nil
	}

	_, err := c.getOrCreate(FamilyOpenAICustom, "a", build)
	require.NoError(t, err)
	c.invalidate(FamilyOpenAICustom, "a")
	_, err = c.getOrCreate(FamilyOpenAICustom, "a", build)
	require.NoError(t, err)

	assert.Equal(t, 2, builds)
}

func TestAdapterCache_DistinctKeysDoNotCollide(t *testing.T) {
	c := newAdapterCache()
	a, _ := c.getOrCreate(FamilyOpenAICustom, "a", func() (Adapter, error) { return &stubAdapter{id: 1}, nil })
	b, _ := c.getOrCreate(FamilyClaudeCustom, "a", func() (Adapter, error) { return &stubAdapter{id: 2}, nil })
	assert.NotSame(t, a, b)
}
