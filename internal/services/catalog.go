package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"felix-hub/internal/dto"
	"felix-hub/internal/entities"
	"felix-hub/internal/repositories"
	"felix-hub/pkg/constants"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/types"
	"felix-hub/pkg/utils"
)

const (
	cacheKeyCategories   = "catalog:categories"
	cacheKeyPartsPrefix  = "catalog:parts:"
	cacheKeyPartsAllSuff = "all"
)

type CatalogServiceInterface interface {
	GetCategories(ctx context.Context) ([]dto.CategoryDTO, error)
	FindCategory(ctx context.Context, id uint64) (*dto.CategoryDTO, error)
	CreateCategory(ctx context.Context, data dto.CreateCategoryDTO) (*dto.CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uint64, data dto.UpdateCategoryDTO, rawBody []byte) (*dto.CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uint64) error

	GetParts(ctx context.Context, filter types.Filter) ([]dto.PartDTO, error)
	FindPart(ctx context.Context, id uint64) (*dto.PartDTO, error)
	CreatePart(ctx context.Context, data dto.CreatePartDTO) (*dto.PartDTO, error)
	UpdatePart(ctx context.Context, id uint64, data dto.UpdatePartDTO, rawBody []byte) (*dto.PartDTO, error)
	DeletePart(ctx context.Context, id uint64) error
}

type CatalogService struct {
	*BaseService
	txManager    repositories.TxManagerInterface
	categoryRepo repositories.CategoryRepositoryInterface
	partRepo     repositories.PartRepositoryInterface
	cacheTTL     time.Duration
	logger       *zap.Logger
}

func NewCatalogService(
	txManager repositories.TxManagerInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	partRepo repositories.PartRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	cacheTTL time.Duration,
	logger *zap.Logger,
) CatalogServiceInterface {
	return &CatalogService{
		BaseService:  NewBaseService(cache, logger),
		txManager:    txManager,
		categoryRepo: categoryRepo,
		partRepo:     partRepo,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

func partsCacheKey(categoryID *uint64) string {
	if categoryID == nil {
		return cacheKeyPartsPrefix + cacheKeyPartsAllSuff
	}
	return fmt.Sprintf("%s%d", cacheKeyPartsPrefix, *categoryID)
}

// invalidate сбрасывает список категорий, общий список деталей и списки указанных категорий.
func (s *CatalogService) invalidate(ctx context.Context, categoryIDs ...uint64) {
	keys := []string{cacheKeyCategories, partsCacheKey(nil)}
	for _, id := range categoryIDs {
		keys = append(keys, partsCacheKey(&id))
	}
	s.CacheDel(ctx, keys...)
}

func (s *CatalogService) GetCategories(ctx context.Context) ([]dto.CategoryDTO, error) {
	var cached []dto.CategoryDTO
	if s.CacheGet(ctx, cacheKeyCategories, &cached) {
		return cached, nil
	}

	categories, err := s.categoryRepo.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.CategoryDTO, 0, len(categories))
	for _, c := range categories {
		result = append(result, categoryToDTO(c))
	}
	s.CacheSet(ctx, cacheKeyCategories, result, s.cacheTTL)
	return result, nil
}

func (s *CatalogService) FindCategory(ctx context.Context, id uint64) (*dto.CategoryDTO, error) {
	c, err := s.categoryRepo.FindCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	out := categoryToDTO(*c)
	return &out, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, data dto.CreateCategoryDTO) (*dto.CategoryDTO, error) {
	category := entities.Category{
		NameRu:    strings.TrimSpace(data.NameRu),
		NameHe:    utils.EmptyToNil(data.NameHe),
		NameEn:    utils.EmptyToNil(data.NameEn),
		Icon:      strings.TrimSpace(data.Icon),
		SortOrder: data.SortOrder,
	}
	if category.Icon == "" {
		category.Icon = constants.DefaultCategoryIcon
	}

	id, err := s.categoryRepo.CreateCategory(ctx, nil, category)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("Создана категория", zap.Uint64("id", id), zap.String("name_ru", category.NameRu))
	return s.FindCategory(ctx, id)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint64, data dto.UpdateCategoryDTO, rawBody []byte) (*dto.CategoryDTO, error) {
	category, err := s.categoryRepo.FindCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	changed, err := utils.ApplyPatch(category, &data, rawBody)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		out := categoryToDTO(*category)
		return &out, nil
	}
	if strings.TrimSpace(category.NameRu) == "" {
		return nil, apperrors.NewBadRequestError("Поле name_ru не может быть пустым")
	}
	if category.Icon == "" {
		category.Icon = constants.DefaultCategoryIcon
	}

	if err := s.categoryRepo.UpdateCategory(ctx, nil, *category); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return s.FindCategory(ctx, id)
}

// DeleteCategory удаляет категорию вместе с её деталями.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint64) error {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.categoryRepo.DeleteCategory(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.logger.Info("Удалена категория", zap.Uint64("id", id))
	return nil
}

// GetParts: кешируются только списки без поиска.
func (s *CatalogService) GetParts(ctx context.Context, filter types.Filter) ([]dto.PartDTO, error) {
	var categoryID *uint64
	if id, ok := filter.Filter["category_id"].(uint64); ok {
		categoryID = &id
	}
	cacheable := filter.Search == "" && len(filter.Sort) == 0 && len(filter.Filter) <= 1 && (len(filter.Filter) == 0 || categoryID != nil)
	key := partsCacheKey(categoryID)

	var cached []dto.PartDTO
	if cacheable && s.CacheGet(ctx, key, &cached) {
		return cached, nil
	}

	parts, err := s.partRepo.GetParts(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := make([]dto.PartDTO, 0, len(parts))
	for _, p := range parts {
		result = append(result, partToDTO(p))
	}
	if cacheable {
		s.CacheSet(ctx, key, result, s.cacheTTL)
	}
	return result, nil
}

func (s *CatalogService) FindPart(ctx context.Context, id uint64) (*dto.PartDTO, error) {
	p, err := s.partRepo.FindPart(ctx, id)
	if err != nil {
		return nil, err
	}
	out := partToDTO(*p)
	return &out, nil
}

func (s *CatalogService) CreatePart(ctx context.Context, data dto.CreatePartDTO) (*dto.PartDTO, error) {
	if _, err := s.categoryRepo.FindCategory(ctx, data.CategoryID); err != nil {
		return nil, err
	}

	part := entities.Part{
		CategoryID: data.CategoryID,
		NameRu:     strings.TrimSpace(data.NameRu),
		NameHe:     utils.EmptyToNil(data.NameHe),
		NameEn:     utils.EmptyToNil(data.NameEn),
		IsCommon:   data.IsCommon == nil || *data.IsCommon,
		SortOrder:  data.SortOrder,
	}
	id, err := s.partRepo.CreatePart(ctx, nil, part)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, part.CategoryID)
	return s.FindPart(ctx, id)
}

func (s *CatalogService) UpdatePart(ctx context.Context, id uint64, data dto.UpdatePartDTO, rawBody []byte) (*dto.PartDTO, error) {
	part, err := s.partRepo.FindPart(ctx, id)
	if err != nil {
		return nil, err
	}
	oldCategoryID := part.CategoryID

	changed, err := utils.ApplyPatch(part, &data, rawBody)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		out := partToDTO(*part)
		return &out, nil
	}
	if strings.TrimSpace(part.NameRu) == "" {
		return nil, apperrors.NewBadRequestError("Поле name_ru не может быть пустым")
	}
	if part.CategoryID != oldCategoryID {
		if _, err := s.categoryRepo.FindCategory(ctx, part.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := s.partRepo.UpdatePart(ctx, nil, *part); err != nil {
		return nil, err
	}
	s.invalidate(ctx, oldCategoryID, part.CategoryID)
	return s.FindPart(ctx, id)
}

func (s *CatalogService) DeletePart(ctx context.Context, id uint64) error {
	part, err := s.partRepo.FindPart(ctx, id)
	if err != nil {
		return err
	}
	if err := s.partRepo.DeletePart(ctx, nil, id); err != nil {
		return err
	}
	s.invalidate(ctx, part.CategoryID)
	return nil
}
