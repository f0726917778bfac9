package public

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bistro-next/internal/cache"
	"github.com/bistro-next/internal/http/response"
	"github.com/bistro-next/internal/models"
	"github.com/bistro-next/internal/repository"
	"github.com/bistro-next/internal/service"

	"github.com/gin-gonic/gin"
)

const storefrontCacheTTL = 60 * time.Second

// GetProducts 店面菜品列表（仅上架）
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)
	search := strings.TrimSpace(c.Query("search"))

	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: uint(categoryID),
		Search:     search,
		OnlyActive: true,
	})
	if err != nil {
		respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, products, pagination)
}

// GetProductBySlug 店面菜品详情（短缓存）
func (h *Handler) GetProductBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "product slug is required", nil)
		return
	}

	cacheKey := fmt.Sprintf("storefront:product:%s", slug)
	var cached models.Product
	if hit, err := cache.GetJSON(c.Request.Context(), cacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	product, err := h.ProductService.GetBySlug(slug, true)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		return
	}

	_ = cache.SetJSON(c.Request.Context(), cacheKey, product, storefrontCacheTTL)
	response.Success(c, product)
}

// GetCategories 店面分类列表（短缓存）
func (h *Handler) GetCategories(c *gin.Context) {
	cacheKey := "storefront:categories"
	var cached []models.Category
	if hit, err := cache.GetJSON(c.Request.Context(), cacheKey, &cached); err == nil && hit {
		response.Success(c, gin.H{"categories": cached})
		return
	}

	categories, err := h.CategoryService.List(repository.CategoryListFilter{OnlyActive: true})
	if err != nil {
		respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		return
	}

	_ = cache.SetJSON(c.Request.Context(), cacheKey, categories, storefrontCacheTTL)
	response.Success(c, gin.H{"categories": categories})
}
