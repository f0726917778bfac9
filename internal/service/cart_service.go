package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bistro-next/internal/models"
	"github.com/bistro-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CartItemDetail 购物车项详情（用于响应）
type CartItemDetail struct {
	CartKey   string          `json:"cart_key"`
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Options   models.JSON     `json:"options"`
	UnitPrice models.Money    `json:"unit_price"`
	LineTotal models.Money    `json:"line_total"`
	Product   *models.Product `json:"product"`
}

// CartSummary 购物车汇总
type CartSummary struct {
	Items      []CartItemDetail `json:"items"`
	Subtotal   models.Money     `json:"subtotal"`
	CouponCode string           `json:"coupon_code,omitempty"`
}

// UpsertCartItemInput 购物车更新输入
type UpsertCartItemInput struct {
	UserID    uint
	ProductID uint
	Quantity  int
	Options   map[string]string
}

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	couponSvc   *CouponService
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, couponSvc *CouponService) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		couponSvc:   couponSvc,
	}
}

// ListByUser 获取用户购物车。下架菜品的购物车行会被顺手清理。
func (s *CartService) ListByUser(userID uint) (*CartSummary, error) {
	if userID == 0 {
		return nil, ErrForbidden
	}
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	details := make([]CartItemDetail, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		product := item.Product
		if product == nil || product.ID == 0 {
			p, err := s.productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, ErrStoreUnavailable
			}
			product = p
		}
		if product == nil || !product.IsActive {
			_ = s.cartRepo.DeleteByUserAndKey(userID, item.CartKey)
			continue
		}

		lineTotal := product.PriceAmount.Decimal.
			Mul(decimal.NewFromInt(int64(item.Quantity))).
			Round(2)
		subtotal = subtotal.Add(lineTotal).Round(2)

		details = append(details, CartItemDetail{
			CartKey:   item.CartKey,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Options:   item.Options,
			UnitPrice: product.PriceAmount,
			LineTotal: models.NewMoneyFromDecimal(lineTotal),
			Product:   product,
		})
	}
	summary := &CartSummary{
		Items:    details,
		Subtotal: models.NewMoneyFromDecimal(subtotal),
	}
	if cart, err := s.cartRepo.GetCart(userID); err == nil && cart != nil {
		summary.CouponCode = cart.CouponCode
	}
	return summary, nil
}

// AttachCoupon 按当前购物车小计校验优惠码，通过后挂到整车上。
// 返回按当前小计计算的折扣，下单时仍会按提交时小计重新校验。
func (s *CartService) AttachCoupon(userID uint, code string) (models.Money, *models.Coupon, error) {
	if userID == 0 {
		return models.Money{}, nil, ErrForbidden
	}
	summary, err := s.ListByUser(userID)
	if err != nil {
		return models.Money{}, nil, err
	}
	if len(summary.Items) == 0 {
		return models.Money{}, nil, ErrCartEmpty
	}
	discount, coupon, err := s.couponSvc.Validate(code, summary.Subtotal, userID)
	if err != nil {
		return models.Money{}, coupon, err
	}
	if err := s.cartRepo.SetCartCoupon(userID, coupon.Code); err != nil {
		return models.Money{}, coupon, ErrStoreUnavailable
	}
	return discount, coupon, nil
}

// DetachCoupon 移除整车优惠码
func (s *CartService) DetachCoupon(userID uint) error {
	if userID == 0 {
		return ErrForbidden
	}
	return s.cartRepo.SetCartCoupon(userID, "")
}

// AppliedCouponCode 获取整车已应用的优惠码，未应用返回空串
func (s *CartService) AppliedCouponCode(userID uint) string {
	if userID == 0 {
		return ""
	}
	cart, err := s.cartRepo.GetCart(userID)
	if err != nil || cart == nil {
		return ""
	}
	return cart.CouponCode
}

// UpsertItem 添加或更新购物车行。
// 同一菜品不同规格选项是不同的行，按 cart_key 合并。
func (s *CartService) UpsertItem(input UpsertCartItemInput) error {
	if input.UserID == 0 || input.ProductID == 0 || input.Quantity <= 0 {
		return ErrInvalidOrderItem
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return ErrStoreUnavailable
	}
	if product == nil || !product.IsActive {
		return ErrProductNotAvailable
	}
	options, err := normalizeItemOptions(product, input.Options)
	if err != nil {
		return err
	}

	now := time.Now()
	item := &models.CartItem{
		UserID:    input.UserID,
		CartKey:   BuildCartKey(input.ProductID, input.Options),
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		Options:   options,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.cartRepo.Upsert(item)
}

// RemoveItem 删除购物车行
func (s *CartService) RemoveItem(userID uint, cartKey string) error {
	if userID == 0 || strings.TrimSpace(cartKey) == "" {
		return ErrInvalidOrderItem
	}
	return s.cartRepo.DeleteByUserAndKey(userID, cartKey)
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	if userID == 0 {
		return ErrForbidden
	}
	return s.cartRepo.ClearByUser(userID)
}

// BuildCartKey 生成购物车行键：菜品 ID + 按键名排序的规格选项串。
// 相同菜品相同规格始终落到同一行。
func BuildCartKey(productID uint, options map[string]string) string {
	if len(options) == 0 {
		return fmt.Sprintf("%d", productID)
	}
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	fmt.Fprintf(&b, "%d", productID)
	for _, key := range keys {
		fmt.Fprintf(&b, "|%s=%s", key, options[key])
	}
	return b.String()
}
