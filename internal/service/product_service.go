package service

import (
	"strings"

	"github.com/bistro-next/internal/models"
	"github.com/bistro-next/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 菜品服务
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService 创建菜品服务
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// List 菜品列表（店面只展示上架菜品）
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	products, total, err := s.productRepo.List(filter)
	if err != nil {
		return nil, 0, ErrStoreUnavailable
	}
	return products, total, nil
}

// GetBySlug 根据 slug 获取菜品
func (s *ProductService) GetBySlug(slug string, onlyActive bool) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrNotFound
	}
	product, err := s.productRepo.GetBySlug(slug, onlyActive)
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// Get 根据 ID 获取菜品
func (s *ProductService) Get(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// SaveProductInput 创建/更新菜品输入
type SaveProductInput struct {
	Slug          string
	Name          string
	Description   string
	PriceAmount   models.Money
	OriginalPrice *models.Money
	CategoryIDs   []uint
	Tags          []string
	Images        []string
	Options       models.OptionList
	Stock         *int
	IsActive      *bool
	SortOrder     int
}

// Create 创建菜品
func (s *ProductService) Create(input SaveProductInput) (*models.Product, error) {
	slug := strings.TrimSpace(input.Slug)
	name := strings.TrimSpace(input.Name)
	if slug == "" || name == "" {
		return nil, ErrInvalidOrderItem
	}
	if input.PriceAmount.Decimal.LessThan(decimal.Zero) {
		return nil, ErrInvalidOrderAmount
	}
	count, err := s.productRepo.CountBySlug(slug, nil)
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	if count > 0 {
		return nil, ErrProductSlugExists
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	product := &models.Product{
		Slug:            slug,
		Name:            name,
		Description:     strings.TrimSpace(input.Description),
		PriceAmount:     input.PriceAmount,
		OriginalPrice:   input.OriginalPrice,
		DiscountPercent: deriveDiscountPercent(input.PriceAmount, input.OriginalPrice),
		CategoryIDs:     models.UintArray(input.CategoryIDs),
		Tags:            models.StringArray(input.Tags),
		Images:          models.StringArray(input.Images),
		Options:         input.Options,
		Stock:           input.Stock,
		IsActive:        isActive,
		SortOrder:       input.SortOrder,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, ErrStoreUnavailable
	}
	return product, nil
}

// Update 更新菜品
func (s *ProductService) Update(id uint, input SaveProductInput) (*models.Product, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	slug := strings.TrimSpace(input.Slug)
	name := strings.TrimSpace(input.Name)
	if slug == "" || name == "" {
		return nil, ErrInvalidOrderItem
	}
	if input.PriceAmount.Decimal.LessThan(decimal.Zero) {
		return nil, ErrInvalidOrderAmount
	}
	if slug != existing.Slug {
		count, err := s.productRepo.CountBySlug(slug, &id)
		if err != nil {
			return nil, ErrStoreUnavailable
		}
		if count > 0 {
			return nil, ErrProductSlugExists
		}
	}

	existing.Slug = slug
	existing.Name = name
	existing.Description = strings.TrimSpace(input.Description)
	existing.PriceAmount = input.PriceAmount
	existing.OriginalPrice = input.OriginalPrice
	existing.DiscountPercent = deriveDiscountPercent(input.PriceAmount, input.OriginalPrice)
	existing.CategoryIDs = models.UintArray(input.CategoryIDs)
	existing.Tags = models.StringArray(input.Tags)
	existing.Images = models.StringArray(input.Images)
	existing.Options = input.Options
	existing.Stock = input.Stock
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}
	existing.SortOrder = input.SortOrder

	if err := s.productRepo.Update(existing); err != nil {
		return nil, ErrStoreUnavailable
	}
	return existing, nil
}

// Delete 删除菜品
func (s *ProductService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.productRepo.Delete(id)
}

// deriveDiscountPercent 从原价派生折扣百分比（0-100）
func deriveDiscountPercent(price models.Money, originalPrice *models.Money) int {
	if originalPrice == nil || originalPrice.Decimal.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	if price.Decimal.GreaterThanOrEqual(originalPrice.Decimal) {
		return 0
	}
	ratio := originalPrice.Decimal.Sub(price.Decimal).
		Div(originalPrice.Decimal).
		Mul(decimal.NewFromInt(100)).
		Round(0)
	percent := int(ratio.IntPart())
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
