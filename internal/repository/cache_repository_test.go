package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/gym-schedule-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "gym-schedule:sessions:class-1", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "gym-schedule:sessions:class-1", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "gym-schedule:sessions:*"))

	value, err := repo.Incr(ctx, "gym-schedule:gen:sessions:class-1")
	assert.NoError(t, err)
	assert.Zero(t, value)
}
