package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/socialflow-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "socialflow:mdl_:", nil)
	ctx := context.Background()

	var dest int64
	assert.ErrorIs(t, repo.Get(ctx, "nbpa:7", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(ctx, "nbpa:7", 12, time.Minute))
	require.NoError(t, repo.Delete(ctx, "nbpa:7"))
	require.NoError(t, repo.DeleteByPattern(ctx, "flow:*"))
}

func TestCacheRepositoryNamespacesKeys(t *testing.T) {
	repo := NewCacheRepository(nil, "socialflow:mdl_:", nil)
	assert.Equal(t, "socialflow:mdl_:flow:ranked:7", repo.key("flow:ranked:7"))
}
