package service

import (
	"strings"

	"github.com/bistro-next/internal/models"
	"github.com/bistro-next/internal/repository"
)

// CategoryService 分类服务
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// List 分类列表
func (s *CategoryService) List(filter repository.CategoryListFilter) ([]models.Category, error) {
	categories, err := s.categoryRepo.List(filter)
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	return categories, nil
}

// Get 根据 ID 获取分类
func (s *CategoryService) Get(id uint) (*models.Category, error) {
	if id == 0 {
		return nil, ErrCategoryNotFound
	}
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// SaveCategoryInput 创建/更新分类输入
type SaveCategoryInput struct {
	Slug      string
	Name      string
	Icon      string
	SortOrder int
	IsActive  *bool
}

// Create 创建分类
func (s *CategoryService) Create(input SaveCategoryInput) (*models.Category, error) {
	slug := strings.TrimSpace(input.Slug)
	name := strings.TrimSpace(input.Name)
	if slug == "" || name == "" {
		return nil, ErrCategoryNotFound
	}
	count, err := s.categoryRepo.CountBySlug(slug, nil)
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	if count > 0 {
		return nil, ErrCategorySlugExists
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	category := &models.Category{
		Slug:      slug,
		Name:      name,
		Icon:      strings.TrimSpace(input.Icon),
		SortOrder: input.SortOrder,
		IsActive:  isActive,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, ErrStoreUnavailable
	}
	return category, nil
}

// Update 更新分类
func (s *CategoryService) Update(id uint, input SaveCategoryInput) (*models.Category, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	slug := strings.TrimSpace(input.Slug)
	name := strings.TrimSpace(input.Name)
	if slug == "" || name == "" {
		return nil, ErrCategoryNotFound
	}
	if slug != existing.Slug {
		count, err := s.categoryRepo.CountBySlug(slug, &id)
		if err != nil {
			return nil, ErrStoreUnavailable
		}
		if count > 0 {
			return nil, ErrCategorySlugExists
		}
	}

	existing.Slug = slug
	existing.Name = name
	existing.Icon = strings.TrimSpace(input.Icon)
	existing.SortOrder = input.SortOrder
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}

	if err := s.categoryRepo.Update(existing); err != nil {
		return nil, ErrStoreUnavailable
	}
	return existing, nil
}

// Delete 删除分类。分类下仍有菜品时拒绝删除。
func (s *CategoryService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	count, err := s.categoryRepo.CountProducts(id)
	if err != nil {
		return ErrStoreUnavailable
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	return s.categoryRepo.Delete(id)
}
