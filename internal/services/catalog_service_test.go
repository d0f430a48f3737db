package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"felix-hub/internal/dto"
	"felix-hub/internal/entities"
	"felix-hub/pkg/constants"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/types"
	"felix-hub/pkg/utils"
)

func TestCatalogService_CategoriesAreCached(t *testing.T) {
	cache := newFakeCache()
	categories := newFakeCategoryRepo(entities.Category{ID: 1, NameRu: "Тормоза", Icon: "🔧"})
	svc := NewCatalogService(&fakeTxManager{}, categories, newFakePartRepo(), cache, time.Hour, zap.NewNop())
	ctx := context.Background()

	first, err := svc.GetCategories(ctx)
	require.NoError(t, err)
	second, err := svc.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	assert.Equal(t, first[0].NameRu, second[0].NameRu)
	assert.Equal(t, 1, categories.reads, "второй запрос из кеша")
	assert.Equal(t, time.Hour, cache.ttl[cacheKeyCategories])

	created, err := svc.CreateCategory(ctx, dto.CreateCategoryDTO{NameRu: " Подвеска ", NameHe: utils.ToPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Подвеска", created.NameRu)
	assert.Equal(t, constants.DefaultCategoryIcon, created.Icon)
	assert.Nil(t, created.NameHe)

	list, err := svc.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2, "создание сбрасывает кеш")
	assert.Equal(t, 2, categories.reads)
}

func TestCatalogService_WithoutCache(t *testing.T) {
	categories := newFakeCategoryRepo(entities.Category{ID: 1, NameRu: "Тормоза"})
	svc := NewCatalogService(&fakeTxManager{}, categories, newFakePartRepo(), nil, time.Hour, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := svc.GetCategories(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 2, categories.reads)
}

func TestCatalogService_Parts(t *testing.T) {
	cache := newFakeCache()
	categories := newFakeCategoryRepo(entities.Category{ID: 1, NameRu: "Тормоза"})
	parts := newFakePartRepo()
	svc := NewCatalogService(&fakeTxManager{}, categories, parts, cache, time.Hour, zap.NewNop())
	ctx := context.Background()

	_, err := svc.CreatePart(ctx, dto.CreatePartDTO{CategoryID: 42, NameRu: "Колодки"})
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)

	part, err := svc.CreatePart(ctx, dto.CreatePartDTO{CategoryID: 1, NameRu: "Колодки"})
	require.NoError(t, err)
	assert.True(t, part.IsCommon, "is_common по умолчанию true")

	_, err = svc.GetParts(ctx, types.Filter{Filter: map[string]interface{}{"category_id": uint64(1)}})
	require.NoError(t, err)
	assert.Contains(t, cache.data, partsCacheKey(utils.ToPtr(uint64(1))))

	_, err = svc.GetParts(ctx, types.Filter{Search: "кол"})
	require.NoError(t, err)
	assert.NotContains(t, cache.data, partsCacheKey(nil), "поиск не кешируется")

	require.NoError(t, svc.DeleteCategory(ctx, 1))
	assert.NotContains(t, cache.data, partsCacheKey(utils.ToPtr(uint64(1))))

	assert.ErrorIs(t, svc.DeletePart(ctx, 999), apperrors.ErrPartNotFound)
}
