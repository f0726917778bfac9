package main

import (
	"time"

	"github.com/bistro-next/internal/config"
	"github.com/bistro-next/internal/constants"
	"github.com/bistro-next/internal/logger"
	"github.com/bistro-next/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{Name: "主食", Slug: "mains", SortOrder: 10, IsActive: true},
		{Name: "小食", Slug: "sides", SortOrder: 20, IsActive: true},
		{Name: "饮品", Slug: "drinks", SortOrder: 30, IsActive: true},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	// 获取分类ID
	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"mains", "sides", "drinks"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}
	mainsID := categoryIDs["mains"]
	sidesID := categoryIDs["sides"]
	drinksID := categoryIDs["drinks"]

	burgerStock := 50
	friesStock := 120

	// 添加菜品
	products := []models.Product{
		{
			Slug:        "classic-beef-burger",
			Name:        "经典牛肉汉堡",
			Description: "纯牛肉饼现烤，配车打芝士与自制酱料",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(12.50)),
			CategoryIDs: models.UintArray{mainsID},
			Tags:        models.StringArray{"beef", "signature"},
			Options: models.OptionList{
				{
					Key:  "doneness",
					Name: "熟度",
					Choices: []models.OptionChoice{
						{Value: "medium", Label: "五分熟"},
						{Value: "well_done", Label: "全熟"},
					},
				},
			},
			Stock:     &burgerStock,
			IsActive:  true,
			SortOrder: 10,
		},
		{
			Slug:        "margherita-pizza",
			Name:        "玛格丽特披萨",
			Description: "番茄、马苏里拉与罗勒，石炉现烤",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(15.00)),
			CategoryIDs: models.UintArray{mainsID},
			Tags:        models.StringArray{"pizza", "vegetarian"},
			Options: models.OptionList{
				{
					Key:  "size",
					Name: "尺寸",
					Choices: []models.OptionChoice{
						{Value: "9inch", Label: "9 寸"},
						{Value: "12inch", Label: "12 寸"},
					},
				},
			},
			IsActive:  true,
			SortOrder: 20,
		},
		{
			Slug:        "crispy-fries",
			Name:        "香脆薯条",
			Description: "现炸双拼蘸酱",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(4.50)),
			CategoryIDs: models.UintArray{sidesID},
			Tags:        models.StringArray{"snack"},
			Stock:       &friesStock,
			IsActive:    true,
			SortOrder:   10,
		},
		{
			Slug:        "iced-lemon-tea",
			Name:        "冰柠檬茶",
			Description: "鲜榨柠檬现泡红茶",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(3.80)),
			CategoryIDs: models.UintArray{drinksID},
			Tags:        models.StringArray{"drink", "cold"},
			Options: models.OptionList{
				{
					Key:  "sugar",
					Name: "甜度",
					Choices: []models.OptionChoice{
						{Value: "none", Label: "无糖"},
						{Value: "half", Label: "半糖"},
						{Value: "full", Label: "全糖"},
					},
				},
			},
			IsActive:  true,
			SortOrder: 10,
		},
	}

	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", product.Slug)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Slug)
		}
	}

	// 添加优惠券
	until := time.Now().AddDate(0, 3, 0)
	coupons := []models.Coupon{
		{
			Name:         "新客九折",
			Code:         "WELCOME10",
			Type:         constants.CouponTypePercentage,
			Value:        models.NewMoneyFromInt(10),
			MaxDiscount:  models.NewMoneyFromInt(5),
			UsageLimit:   1000,
			PerUserLimit: 1,
			ValidUntil:   &until,
			IsActive:     true,
			Description:  "新用户首单九折，最高减 5 元",
		},
		{
			Name:           "满 30 减 5",
			Code:           "SAVE5",
			Type:           constants.CouponTypeFixed,
			Value:          models.NewMoneyFromInt(5),
			MinOrderAmount: models.NewMoneyFromInt(30),
			ValidUntil:     &until,
			IsActive:       true,
			Description:    "订单满 30 元立减 5 元",
		},
	}

	for _, coupon := range coupons {
		var existing models.Coupon
		if err := models.DB.Where("code = ?", coupon.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&coupon).Error; err != nil {
				stdLog.Printf("Failed to create coupon %s: %v", coupon.Code, err)
			} else {
				stdLog.Printf("Created coupon: %s", coupon.Code)
			}
		} else {
			stdLog.Printf("Coupon already exists: %s", coupon.Code)
		}
	}

	stdLog.Printf("Seed finished")
}
