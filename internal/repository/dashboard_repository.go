package repository

import (
	"fmt"
	"time"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error)
	GetOrderTrends(startAt, endAt time.Time) ([]DashboardOrderTrendRow, error)
	GetTopProducts(startAt, endAt time.Time, limit int) ([]DashboardProductRankingRow, error)
	GetTopVendors(startAt, endAt time.Time, limit int) ([]DashboardVendorRankingRow, error)
	GetLowStockProducts(watermark int, limit int) ([]DashboardLowStockRow, error)
	GetVendorOverview(vendorID uint, startAt, endAt time.Time) (DashboardVendorOverviewRow, error)
	GetVendorTopProducts(vendorID uint, startAt, endAt time.Time, limit int) ([]DashboardProductRankingRow, error)
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	OrdersTotal      int64
	PaidOrders       int64
	DeliveredOrders  int64
	CancelledOrders  int64
	ProcessingOrders int64
	RevenuePaid      float64
	NewUsers         int64
	ActiveProducts   int64
	PendingVendors   int64
	PendingReviews   int64
	Currency         string
}

// DashboardOrderTrendRow 订单趋势统计
type DashboardOrderTrendRow struct {
	Day         string
	OrdersTotal int64
	OrdersPaid  int64
	RevenuePaid float64
}

// DashboardProductRankingRow 商品排行原始行
type DashboardProductRankingRow struct {
	ProductID  uint
	Name       string
	PaidOrders int64
	Quantity   int64
	PaidAmount float64
}

// DashboardVendorRankingRow 商家排行原始行
type DashboardVendorRankingRow struct {
	VendorID     uint
	BusinessName string
	PaidOrders   int64
	PaidAmount   float64
}

// DashboardLowStockRow 低库存商品行
type DashboardLowStockRow struct {
	ProductID uint
	VendorID  uint
	Name      string
	SKU       string
	Inventory int
}

// DashboardVendorOverviewRow 商家仪表盘总览
type DashboardVendorOverviewRow struct {
	OrdersTotal    int64
	ItemsSold      int64
	RevenuePaid    float64
	ActiveProducts int64
	PendingReviews int64
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

func paidOrderStatuses() []string {
	return []string{
		constants.OrderStatusConfirmed,
		constants.OrderStatusProcessing,
		constants.OrderStatusShipped,
		constants.OrderStatusDelivered,
	}
}

// GetOverview 获取总览统计
func (r *GormDashboardRepository) GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}

	orderBase := func() *gorm.DB {
		return r.db.Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}

	if err := orderBase().Count(&result.OrdersTotal).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("payment_status = ?", constants.PaymentStatusPaid).Count(&result.PaidOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", constants.OrderStatusDelivered).Count(&result.DeliveredOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", constants.OrderStatusCancelled).Count(&result.CancelledOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status IN ?", paidOrderStatuses()).Count(&result.ProcessingOrders).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Order{}).
		Where("paid_at IS NOT NULL AND paid_at >= ? AND paid_at < ? AND payment_status = ?", startAt, endAt, constants.PaymentStatusPaid).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&result.RevenuePaid).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.NewUsers).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Product{}).
		Where("status = ?", constants.ProductStatusActive).
		Count(&result.ActiveProducts).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Vendor{}).
		Where("status = ?", constants.VendorStatusPending).
		Count(&result.PendingVendors).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Review{}).
		Where("status = ?", constants.ReviewStatusPending).
		Count(&result.PendingReviews).Error; err != nil {
		return result, err
	}

	_ = r.db.Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ? AND currency <> ''", startAt, endAt).
		Order("id DESC").
		Limit(1).
		Pluck("currency", &result.Currency).Error

	return result, nil
}

// GetOrderTrends 获取订单趋势
func (r *GormDashboardRepository) GetOrderTrends(startAt, endAt time.Time) ([]DashboardOrderTrendRow, error) {
	type totalRow struct {
		Day   string
		Total int64
	}
	type paidRow struct {
		Day    string
		Paid   int64
		Amount float64
	}

	dayExpr := "CAST(date(created_at) AS TEXT)"

	var totals []totalRow
	if err := r.db.Model(&models.Order{}).
		Select(fmt.Sprintf("%s as day, COUNT(*) as total", dayExpr)).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group(dayExpr).
		Order("day asc").
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	var paids []paidRow
	if err := r.db.Model(&models.Order{}).
		Select(fmt.Sprintf("%s as day, COUNT(*) as paid, COALESCE(SUM(total_amount), 0) as amount", dayExpr)).
		Where("created_at >= ? AND created_at < ? AND payment_status = ?", startAt, endAt, constants.PaymentStatusPaid).
		Group(dayExpr).
		Order("day asc").
		Scan(&paids).Error; err != nil {
		return nil, err
	}

	paidMap := make(map[string]paidRow, len(paids))
	for _, item := range paids {
		paidMap[item.Day] = item
	}

	result := make([]DashboardOrderTrendRow, 0, len(totals))
	for _, item := range totals {
		result = append(result, DashboardOrderTrendRow{
			Day:         item.Day,
			OrdersTotal: item.Total,
			OrdersPaid:  paidMap[item.Day].Paid,
			RevenuePaid: paidMap[item.Day].Amount,
		})
	}
	return result, nil
}

// GetTopProducts 获取商品排行榜
func (r *GormDashboardRepository) GetTopProducts(startAt, endAt time.Time, limit int) ([]DashboardProductRankingRow, error) {
	return r.topProducts(0, startAt, endAt, limit)
}

// GetVendorTopProducts 获取商家商品排行榜
func (r *GormDashboardRepository) GetVendorTopProducts(vendorID uint, startAt, endAt time.Time, limit int) ([]DashboardProductRankingRow, error) {
	return r.topProducts(vendorID, startAt, endAt, limit)
}

func (r *GormDashboardRepository) topProducts(vendorID uint, startAt, endAt time.Time, limit int) ([]DashboardProductRankingRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows := make([]DashboardProductRankingRow, 0)
	query := r.db.Model(&models.OrderItem{}).
		Select(`
			order_items.product_id as product_id,
			order_items.name as name,
			COUNT(DISTINCT order_items.order_id) as paid_orders,
			COALESCE(SUM(order_items.quantity), 0) as quantity,
			COALESCE(SUM(order_items.total_price), 0) as paid_amount
		`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.created_at < ? AND orders.payment_status = ?", startAt, endAt, constants.PaymentStatusPaid)
	if vendorID != 0 {
		query = query.Where("order_items.vendor_id = ?", vendorID)
	}
	if err := query.
		Group("order_items.product_id, order_items.name").
		Order("paid_amount DESC, quantity DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTopVendors 获取商家排行榜
func (r *GormDashboardRepository) GetTopVendors(startAt, endAt time.Time, limit int) ([]DashboardVendorRankingRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows := make([]DashboardVendorRankingRow, 0)
	if err := r.db.Model(&models.OrderItem{}).
		Select(`
			order_items.vendor_id as vendor_id,
			COALESCE(vendors.business_name, '') as business_name,
			COUNT(DISTINCT order_items.order_id) as paid_orders,
			COALESCE(SUM(order_items.total_price), 0) as paid_amount
		`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("LEFT JOIN vendors ON vendors.id = order_items.vendor_id").
		Where("orders.created_at >= ? AND orders.created_at < ? AND orders.payment_status = ?", startAt, endAt, constants.PaymentStatusPaid).
		Group("order_items.vendor_id, vendors.business_name").
		Order("paid_amount DESC, paid_orders DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetLowStockProducts 获取低库存商品清单
func (r *GormDashboardRepository) GetLowStockProducts(watermark int, limit int) ([]DashboardLowStockRow, error) {
	if watermark <= 0 {
		watermark = 5
	}
	if limit <= 0 {
		limit = 20
	}
	rows := make([]DashboardLowStockRow, 0)
	if err := r.db.Model(&models.Product{}).
		Select("id as product_id, vendor_id, name, sku, inventory").
		Where("status = ? AND track_inventory = ? AND inventory <= ?", constants.ProductStatusActive, true, watermark).
		Order("inventory ASC, id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetVendorOverview 获取商家总览统计
func (r *GormDashboardRepository) GetVendorOverview(vendorID uint, startAt, endAt time.Time) (DashboardVendorOverviewRow, error) {
	result := DashboardVendorOverviewRow{}

	itemBase := func() *gorm.DB {
		return r.db.Model(&models.OrderItem{}).
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("order_items.vendor_id = ? AND orders.created_at >= ? AND orders.created_at < ? AND orders.payment_status = ?",
				vendorID, startAt, endAt, constants.PaymentStatusPaid)
	}

	if err := itemBase().Distinct("order_items.order_id").Count(&result.OrdersTotal).Error; err != nil {
		return result, err
	}
	if err := itemBase().Select("COALESCE(SUM(order_items.quantity), 0)").Scan(&result.ItemsSold).Error; err != nil {
		return result, err
	}
	if err := itemBase().Select("COALESCE(SUM(order_items.total_price), 0)").Scan(&result.RevenuePaid).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Product{}).
		Where("vendor_id = ? AND status = ?", vendorID, constants.ProductStatusActive).
		Count(&result.ActiveProducts).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Review{}).
		Where("status = ? AND product_id IN (SELECT id FROM products WHERE vendor_id = ? AND deleted_at IS NULL)", constants.ReviewStatusPending, vendorID).
		Count(&result.PendingReviews).Error; err != nil {
		return result, err
	}

	return result, nil
}
