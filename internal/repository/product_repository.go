package repository

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, string, error)
	ListAdmin(filter ProductAdminFilter) ([]models.Product, int64, error)
	GetBySlug(slug string, onlyActive bool) (*models.Product, error)
	GetByID(id uint) (*models.Product, error)
	ListByIDs(ids []uint) ([]models.Product, error)
	GetVariant(variantID uint) (*models.ProductVariant, error)
	CreateVariant(variant *models.ProductVariant) error
	UpdateVariant(variant *models.ProductVariant) error
	DeleteVariant(variantID uint) error
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id uint) error
	CountBySlug(slug string, excludeID *uint) (int64, error)
	ConsumeInventory(productID uint, quantity int) (int64, error)
	RestockInventory(productID uint, quantity int) (int64, error)
	ConsumeVariantInventory(variantID uint, quantity int) (int64, error)
	RestockVariantInventory(variantID uint, quantity int) (int64, error)
	IncrementViews(productID uint) error
	UpdateRatingStats(productID uint, rating models.Money, reviewCount int) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction 执行事务
func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// listCursor 游标分页位置：排序键数值 + 末条记录ID
type listCursor struct {
	V  float64 `json:"v"`
	ID uint    `json:"id"`
}

func encodeListCursor(c listCursor) string {
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeListCursor(s string) (listCursor, bool) {
	var c listCursor
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return c, false
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, false
	}
	return c, c.ID != 0
}

// sortKeyExpr 返回排序键表达式与方向；newest 仅按主键排序。
func sortKeyExpr(sortBy string) (expr string, desc bool) {
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "price-asc":
		return effectivePriceExpr, false
	case "price-desc":
		return effectivePriceExpr, true
	case "rating":
		return "rating", true
	case "bestselling":
		return "sales_count", true
	case "featured":
		return "CASE WHEN featured THEN 1 ELSE 0 END", true
	default:
		return "", true
	}
}

// sortKeyValue 从商品行提取与 sortKeyExpr 对应的游标数值。
func sortKeyValue(sortBy string, p *models.Product) float64 {
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "price-asc", "price-desc":
		f, _ := p.EffectivePrice().Float64()
		return f
	case "rating":
		f, _ := p.Rating.Float64()
		return f
	case "bestselling":
		return float64(p.SalesCount)
	case "featured":
		if p.Featured {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// List 店面商品列表（游标分页：多取一条探测是否还有下一页）
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 12
	}

	query := r.db.Model(&models.Product{})
	if filter.WithCategory {
		query = query.Preload("Category")
	}
	if filter.WithVendor {
		query = query.Preload("Vendor")
	}
	if filter.OnlyActive {
		query = query.Where("status = ?", constants.ProductStatusActive).
			Where("vendor_id IN (SELECT id FROM vendors WHERE status = ? AND deleted_at IS NULL)", constants.VendorStatusApproved)
	}
	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		query = query.Where("category_id IN (SELECT id FROM categories WHERE slug = ? AND deleted_at IS NULL)", slug)
	}
	if filter.VendorID != 0 {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.PriceMin != nil {
		query = query.Where(effectivePriceExpr+" >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.Where(effectivePriceExpr+" <= ?", *filter.PriceMax)
	}
	if filter.InStock {
		query = query.Where("inventory > 0 OR allow_backorder = ? OR track_inventory = ?", true, false)
	}
	if filter.Featured {
		query = query.Where("featured = ?", true)
	}
	if filter.OnSale {
		query = query.Where("sale_price IS NOT NULL AND sale_price < price")
	}
	if filter.RatingMin != nil {
		query = query.Where("rating >= ?", *filter.RatingMin)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		op := likeOperator(r.db)
		query = query.Where(fmt.Sprintf("name %s ? OR description %s ?", op, op), like, like)
	}

	expr, desc := sortKeyExpr(filter.SortBy)
	cmp, idCmp, orderDir := "<", "<", "DESC"
	if !desc {
		cmp, idCmp, orderDir = ">", ">", "ASC"
	}
	if cursor, ok := decodeListCursor(filter.Cursor); ok {
		if expr == "" {
			query = query.Where(fmt.Sprintf("id %s ?", idCmp), cursor.ID)
		} else {
			query = query.Where(
				fmt.Sprintf("(%s) %s ? OR ((%s) = ? AND id %s ?)", expr, cmp, expr, idCmp),
				cursor.V, cursor.V, cursor.ID,
			)
		}
	}
	if expr == "" {
		query = query.Order("id " + orderDir)
	} else {
		query = query.Order(fmt.Sprintf("(%s) %s, id %s", expr, orderDir, orderDir))
	}

	var products []models.Product
	if err := query.Limit(limit + 1).Find(&products).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(products) > limit {
		products = products[:limit]
		last := products[limit-1]
		nextCursor = encodeListCursor(listCursor{
			V:  sortKeyValue(filter.SortBy, &last),
			ID: last.ID,
		})
	}
	return products, nextCursor, nil
}

// ListAdmin 管理端/商家端商品列表
func (r *GormProductRepository) ListAdmin(filter ProductAdminFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{}).Preload("Category")

	if filter.VendorID != 0 {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		op := likeOperator(r.db)
		query = query.Where(fmt.Sprintf("name %s ? OR slug %s ? OR sku %s ?", op, op, op), like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var products []models.Product
	if err := query.Order("created_at DESC, id DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetBySlug 根据 slug 获取商品
func (r *GormProductRepository) GetBySlug(slug string, onlyActive bool) (*models.Product, error) {
	query := r.db.Preload("Category").Preload("Vendor").Where("slug = ?", slug)
	if onlyActive {
		query = query.Where("status = ?", constants.ProductStatusActive)
		query = query.Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("id ASC")
		})
	} else {
		query = query.Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
	}

	var product models.Product
	if err := query.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetByID 根据 ID 获取商品
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Category").
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListByIDs 批量获取商品
func (r *GormProductRepository) ListByIDs(ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetVariant 获取商品变体
func (r *GormProductRepository) GetVariant(variantID uint) (*models.ProductVariant, error) {
	if variantID == 0 {
		return nil, nil
	}
	var variant models.ProductVariant
	if err := r.db.First(&variant, variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// CreateVariant 创建商品变体
func (r *GormProductRepository) CreateVariant(variant *models.ProductVariant) error {
	return r.db.Create(variant).Error
}

// UpdateVariant 更新商品变体
func (r *GormProductRepository) UpdateVariant(variant *models.ProductVariant) error {
	return r.db.Save(variant).Error
}

// DeleteVariant 删除商品变体
func (r *GormProductRepository) DeleteVariant(variantID uint) error {
	return r.db.Delete(&models.ProductVariant{}, variantID).Error
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update 更新商品
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// Delete 删除商品
func (r *GormProductRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

// CountBySlug 统计 slug 数量
func (r *GormProductRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ConsumeInventory 条件扣减库存。库存不足时不更新任何行，由调用方检查影响行数；
// 允许缺货下单的商品不受条件限制，库存最低扣到 0。
func (r *GormProductRepository) ConsumeInventory(productID uint, quantity int) (int64, error) {
	if productID == 0 || quantity <= 0 {
		return 0, errors.New("invalid inventory consume params")
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND (track_inventory = ? OR allow_backorder = ? OR inventory >= ?)", productID, false, true, quantity).
		Updates(map[string]interface{}{
			"inventory":   gorm.Expr("CASE WHEN track_inventory = ? THEN inventory WHEN inventory >= ? THEN inventory - ? ELSE 0 END", false, quantity, quantity),
			"sales_count": gorm.Expr("sales_count + ?", quantity),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// RestockInventory 回补库存（取消/退款时使用）
func (r *GormProductRepository) RestockInventory(productID uint, quantity int) (int64, error) {
	if productID == 0 || quantity <= 0 {
		return 0, errors.New("invalid inventory restock params")
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"inventory":   gorm.Expr("CASE WHEN track_inventory THEN inventory + ? ELSE inventory END", quantity),
			"sales_count": gorm.Expr("CASE WHEN sales_count >= ? THEN sales_count - ? ELSE 0 END", quantity, quantity),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ConsumeVariantInventory 条件扣减变体库存
func (r *GormProductRepository) ConsumeVariantInventory(variantID uint, quantity int) (int64, error) {
	if variantID == 0 || quantity <= 0 {
		return 0, errors.New("invalid variant inventory consume params")
	}
	result := r.db.Model(&models.ProductVariant{}).
		Where("id = ? AND inventory >= ?", variantID, quantity).
		Update("inventory", gorm.Expr("inventory - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// RestockVariantInventory 回补变体库存
func (r *GormProductRepository) RestockVariantInventory(variantID uint, quantity int) (int64, error) {
	if variantID == 0 || quantity <= 0 {
		return 0, errors.New("invalid variant inventory restock params")
	}
	result := r.db.Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		Update("inventory", gorm.Expr("inventory + ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// IncrementViews 浏览量自增
func (r *GormProductRepository) IncrementViews(productID uint) error {
	if productID == 0 {
		return nil
	}
	return r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("views_count", gorm.Expr("views_count + 1")).Error
}

// UpdateRatingStats 更新评分聚合
func (r *GormProductRepository) UpdateRatingStats(productID uint, rating models.Money, reviewCount int) error {
	if productID == 0 {
		return nil
	}
	return r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating":       rating,
			"review_count": reviewCount,
		}).Error
}
