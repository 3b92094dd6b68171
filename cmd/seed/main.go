package main

import (
	"fmt"

	"github.com/noormarket/internal/config"
	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/logger"
	"github.com/noormarket/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
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

	// 默认管理员账号
	var admin models.User
	if err := models.DB.Where("email = ?", "admin@noormarket.local").First(&admin).Error; err != nil {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if hashErr != nil {
			stdLog.Fatalf("Failed to hash admin password: %v", hashErr)
		}
		admin = models.User{
			Email:        "admin@noormarket.local",
			PasswordHash: string(hash),
			DisplayName:  "Store Admin",
			Role:         constants.RoleAdmin,
			Status:       constants.UserStatusActive,
		}
		if err := models.DB.Create(&admin).Error; err != nil {
			stdLog.Printf("Failed to create admin user: %v", err)
		} else {
			stdLog.Println("Created admin user: admin@noormarket.local")
		}
	} else {
		stdLog.Println("Admin user already exists")
	}

	// 添加分类
	categories := []models.Category{
		{Slug: "prayer-essentials", Name: "Prayer Essentials", Description: "Prayer rugs, misbahas and qibla finders", Featured: true, IsActive: true, SortOrder: 400},
		{Slug: "home-decor", Name: "Home Decor", Description: "Calligraphy, lanterns and seasonal pieces", Featured: true, IsActive: true, SortOrder: 300},
		{Slug: "modest-fashion", Name: "Modest Fashion", Description: "Hijabs, abayas and everyday modest wear", Featured: true, IsActive: true, SortOrder: 200},
		{Slug: "books", Name: "Books", Description: "Quran copies, tafsir and children's titles", IsActive: true, SortOrder: 100},
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

	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"prayer-essentials", "home-decor", "modest-fashion", "books"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}

	// 添加商家账号与商家档案
	vendorSeeds := []struct {
		Email        string
		DisplayName  string
		BusinessName string
	}{
		{Email: "vendor.barakah@noormarket.local", DisplayName: "Barakah Prayer Co", BusinessName: "Barakah Prayer Co"},
		{Email: "vendor.amani@noormarket.local", DisplayName: "Amani Modest Wear", BusinessName: "Amani Modest Wear"},
	}

	vendorIDs := map[string]uint{}
	for _, seed := range vendorSeeds {
		var user models.User
		if err := models.DB.Where("email = ?", seed.Email).First(&user).Error; err != nil {
			hash, hashErr := bcrypt.GenerateFromPassword([]byte("vendor123"), bcrypt.DefaultCost)
			if hashErr != nil {
				stdLog.Printf("Failed to hash password for %s: %v", seed.Email, hashErr)
				continue
			}
			user = models.User{
				Email:        seed.Email,
				PasswordHash: string(hash),
				DisplayName:  seed.DisplayName,
				Role:         constants.RoleVendor,
				Status:       constants.UserStatusActive,
			}
			if err := models.DB.Create(&user).Error; err != nil {
				stdLog.Printf("Failed to create vendor user %s: %v", seed.Email, err)
				continue
			}
			stdLog.Printf("Created vendor user: %s", seed.Email)
		}

		var vendor models.Vendor
		if err := models.DB.Where("user_id = ?", user.ID).First(&vendor).Error; err != nil {
			vendor = models.Vendor{
				UserID:        user.ID,
				BusinessName:  seed.BusinessName,
				BusinessEmail: seed.Email,
				Status:        constants.VendorStatusApproved,
				Description:   "Seeded demo vendor",
			}
			if err := models.DB.Create(&vendor).Error; err != nil {
				stdLog.Printf("Failed to create vendor %s: %v", seed.BusinessName, err)
				continue
			}
			stdLog.Printf("Created vendor: %s", seed.BusinessName)
		}
		vendorIDs[seed.BusinessName] = vendor.ID
	}

	barakahID := vendorIDs["Barakah Prayer Co"]
	amaniID := vendorIDs["Amani Modest Wear"]

	// 添加商品
	salePrice := models.NewMoneyFromDecimal(decimal.NewFromFloat(44.99))
	products := []models.Product{
		{
			VendorID:    barakahID,
			CategoryID:  categoryIDs["prayer-essentials"],
			Slug:        "memory-foam-prayer-rug",
			Name:        "Memory Foam Prayer Rug",
			Description: "Extra-thick padded prayer rug with woven mihrab design, machine washable.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(54.99)),
			SalePrice:   &salePrice,
			SKU:         "BRK-PR-001",
			Inventory:   120,
			Images:      models.StringArray{"https://images.unsplash.com/photo-1584286595398-a59f21d313f5?w=800"},
			Tags:        models.StringArray{"prayer", "rug"},
			Status:      constants.ProductStatusActive,
			Featured:    true,
		},
		{
			VendorID:    barakahID,
			CategoryID:  categoryIDs["prayer-essentials"],
			Slug:        "olive-wood-misbaha",
			Name:        "Olive Wood Misbaha",
			Description: "Hand-polished 99-bead misbaha carved from Bethlehem olive wood.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(24.99)),
			SKU:         "BRK-MB-002",
			Inventory:   60,
			Images:      models.StringArray{"https://images.unsplash.com/photo-1585036156171-384164a8c675?w=800"},
			Tags:        models.StringArray{"misbaha", "dhikr"},
			Status:      constants.ProductStatusActive,
			Featured:    true,
		},
		{
			VendorID:    barakahID,
			CategoryID:  categoryIDs["home-decor"],
			Slug:        "ayatul-kursi-wall-art",
			Name:        "Ayatul Kursi Wall Art",
			Description: "Matte black metal calligraphy, 24-inch diameter, ready to hang.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(89.00)),
			SKU:         "BRK-WA-003",
			Inventory:   35,
			Images:      models.StringArray{"https://images.unsplash.com/photo-1564769625392-651b2c0a7b5e?w=800"},
			Tags:        models.StringArray{"calligraphy", "decor"},
			Status:      constants.ProductStatusActive,
		},
		{
			VendorID:    amaniID,
			CategoryID:  categoryIDs["modest-fashion"],
			Slug:        "premium-chiffon-hijab",
			Name:        "Premium Chiffon Hijab",
			Description: "Lightweight crinkle chiffon hijab, 180x70cm, non-slip finish.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(18.50)),
			SKU:         "AMN-HJ-101",
			Inventory:   200,
			Images:      models.StringArray{"https://images.unsplash.com/photo-1611507929918-04d1dbdd3952?w=800"},
			Tags:        models.StringArray{"hijab", "chiffon"},
			Status:      constants.ProductStatusActive,
			Featured:    true,
		},
		{
			VendorID:    amaniID,
			CategoryID:  categoryIDs["modest-fashion"],
			Slug:        "everyday-jersey-abaya",
			Name:        "Everyday Jersey Abaya",
			Description: "Breathable stretch-jersey abaya with side pockets.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(64.00)),
			SKU:         "AMN-AB-102",
			Inventory:   45,
			Images:      models.StringArray{"https://images.unsplash.com/photo-1591369822096-ffd140ec948f?w=800"},
			Tags:        models.StringArray{"abaya", "everyday"},
			Status:      constants.ProductStatusActive,
		},
		{
			VendorID:    barakahID,
			CategoryID:  categoryIDs["books"],
			Slug:        "quran-english-translation",
			Name:        "The Clear Quran English Translation",
			Description: "Hardcover English translation with thematic introductions.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(29.95)),
			SKU:         "BRK-BK-004",
			Inventory:   3,
			Images:      models.StringArray{"https://images.unsplash.com/photo-1609599006353-e629aaabfeae?w=800"},
			Tags:        models.StringArray{"quran", "book"},
			Status:      constants.ProductStatusActive,
		},
	}

	for _, prod := range products {
		if prod.VendorID == 0 || prod.CategoryID == 0 {
			stdLog.Printf("Skip product %s: vendor or category missing", prod.Slug)
			continue
		}
		var existing models.Product
		if err := models.DB.Where("slug = ?", prod.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Slug)
			}
		} else {
			existing.Name = prod.Name
			existing.Description = prod.Description
			existing.Price = prod.Price
			existing.SalePrice = prod.SalePrice
			existing.CategoryID = prod.CategoryID
			existing.Inventory = prod.Inventory
			existing.Images = prod.Images
			existing.Tags = prod.Tags
			existing.Status = prod.Status
			existing.Featured = prod.Featured
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Updated product: %s", prod.Slug)
			}
		}
	}

	// 为头巾商品准备颜色变体
	var hijab models.Product
	if err := models.DB.Where("slug = ?", "premium-chiffon-hijab").First(&hijab).Error; err == nil {
		variants := []models.ProductVariant{
			{ProductID: hijab.ID, Title: "Dusty Rose", SKU: "AMN-HJ-101-RS", Inventory: 80, OptionsJSON: models.JSON{"color": "dusty rose"}, IsActive: true},
			{ProductID: hijab.ID, Title: "Sage Green", SKU: "AMN-HJ-101-SG", Inventory: 70, OptionsJSON: models.JSON{"color": "sage green"}, IsActive: true},
			{ProductID: hijab.ID, Title: "Charcoal", SKU: "AMN-HJ-101-CH", Inventory: 50, OptionsJSON: models.JSON{"color": "charcoal"}, IsActive: true},
		}
		for _, variant := range variants {
			var existing models.ProductVariant
			if err := models.DB.Where("product_id = ? AND sku = ?", variant.ProductID, variant.SKU).First(&existing).Error; err != nil {
				if err := models.DB.Create(&variant).Error; err != nil {
					stdLog.Printf("Failed to create variant %s: %v", variant.SKU, err)
				} else {
					stdLog.Printf("Created variant: %s", variant.SKU)
				}
			}
		}
	}

	// 初始化店铺配置
	storeConfig := map[string]interface{}{
		constants.SettingFieldCurrency:          "USD",
		constants.SettingFieldTaxRate:           0.08,
		constants.SettingFieldFreeShipping:      75,
		constants.SettingFieldLowStockWatermark: 5,
	}

	var setting models.Setting
	if err := models.DB.Where("key = ?", constants.SettingKeyStoreConfig).First(&setting).Error; err != nil {
		setting = models.Setting{
			Key:       constants.SettingKeyStoreConfig,
			ValueJSON: models.JSON(storeConfig),
		}
		if err := models.DB.Create(&setting).Error; err != nil {
			stdLog.Printf("Failed to create store config: %v", err)
		} else {
			stdLog.Println("Created store config")
		}
	} else {
		setting.ValueJSON = models.JSON(storeConfig)
		if err := models.DB.Save(&setting).Error; err != nil {
			stdLog.Printf("Failed to update store config: %v", err)
		} else {
			stdLog.Println("Updated store config")
		}
	}

	fmt.Println("\nSeed data created:")
	fmt.Println("- admin account (admin@noormarket.local / admin123)")
	fmt.Println("- 4 categories")
	fmt.Println("- 2 vendors (password: vendor123)")
	fmt.Println("- 6 products, 3 variants")
	fmt.Println("- store configuration")
}
