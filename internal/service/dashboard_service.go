package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/noormarket/internal/cache"
	"github.com/noormarket/internal/repository"
)

const (
	dashboardCacheTTL      = 45 * time.Second
	dashboardCustomMaxDays = 90
	dashboardRankingLimit  = 10
)

// DashboardService 仪表盘服务，聚合管理端与商家端经营数据
type DashboardService struct {
	repo           repository.DashboardRepository
	settingService *SettingService
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(repo repository.DashboardRepository, settingService *SettingService) *DashboardService {
	return &DashboardService{repo: repo, settingService: settingService}
}

// DashboardQueryInput 仪表盘查询输入
type DashboardQueryInput struct {
	Range        string
	From         *time.Time
	To           *time.Time
	ForceRefresh bool
}

// AdminDashboard 管理端仪表盘响应
type AdminDashboard struct {
	Range       string                   `json:"range"`
	From        string                   `json:"from"`
	To          string                   `json:"to"`
	Currency    string                   `json:"currency"`
	KPI         AdminDashboardKPI        `json:"kpi"`
	Trends      []DashboardTrendPoint    `json:"trends"`
	TopProducts []DashboardProductRank   `json:"top_products"`
	TopVendors  []DashboardVendorRank    `json:"top_vendors"`
	LowStock    []DashboardLowStockAlert `json:"low_stock"`
}

// AdminDashboardKPI 管理端核心指标
type AdminDashboardKPI struct {
	OrdersTotal      int64  `json:"orders_total"`
	PaidOrders       int64  `json:"paid_orders"`
	DeliveredOrders  int64  `json:"delivered_orders"`
	CancelledOrders  int64  `json:"cancelled_orders"`
	ProcessingOrders int64  `json:"processing_orders"`
	RevenuePaid      string `json:"revenue_paid"`
	NewUsers         int64  `json:"new_users"`
	ActiveProducts   int64  `json:"active_products"`
	PendingVendors   int64  `json:"pending_vendors"`
	PendingReviews   int64  `json:"pending_reviews"`
}

// DashboardTrendPoint 按天订单趋势点
type DashboardTrendPoint struct {
	Date        string `json:"date"`
	OrdersTotal int64  `json:"orders_total"`
	OrdersPaid  int64  `json:"orders_paid"`
	RevenuePaid string `json:"revenue_paid"`
}

// DashboardProductRank 商品排行项
type DashboardProductRank struct {
	ProductID  uint   `json:"product_id"`
	Name       string `json:"name"`
	PaidOrders int64  `json:"paid_orders"`
	Quantity   int64  `json:"quantity"`
	PaidAmount string `json:"paid_amount"`
}

// DashboardVendorRank 商家排行项
type DashboardVendorRank struct {
	VendorID     uint   `json:"vendor_id"`
	BusinessName string `json:"business_name"`
	PaidOrders   int64  `json:"paid_orders"`
	PaidAmount   string `json:"paid_amount"`
}

// DashboardLowStockAlert 低库存告警项
type DashboardLowStockAlert struct {
	ProductID uint   `json:"product_id"`
	VendorID  uint   `json:"vendor_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Inventory int    `json:"inventory"`
}

// VendorDashboard 商家仪表盘响应
type VendorDashboard struct {
	Range       string                 `json:"range"`
	From        string                 `json:"from"`
	To          string                 `json:"to"`
	KPI         VendorDashboardKPI     `json:"kpi"`
	TopProducts []DashboardProductRank `json:"top_products"`
}

// VendorDashboardKPI 商家核心指标
type VendorDashboardKPI struct {
	OrdersTotal    int64  `json:"orders_total"`
	ItemsSold      int64  `json:"items_sold"`
	RevenuePaid    string `json:"revenue_paid"`
	ActiveProducts int64  `json:"active_products"`
	PendingReviews int64  `json:"pending_reviews"`
}

type dashboardWindow struct {
	rangeKey string
	startAt  time.Time
	endAt    time.Time
}

// GetAdminOverview 管理端仪表盘
func (s *DashboardService) GetAdminOverview(ctx context.Context, input DashboardQueryInput) (*AdminDashboard, error) {
	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:admin:%s:%d:%d", window.rangeKey, window.startAt.Unix(), window.endAt.Unix())
	if !input.ForceRefresh {
		var cached AdminDashboard
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	overview, err := s.repo.GetOverview(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	trends, err := s.repo.GetOrderTrends(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	topProducts, err := s.repo.GetTopProducts(window.startAt, window.endAt, dashboardRankingLimit)
	if err != nil {
		return nil, err
	}
	topVendors, err := s.repo.GetTopVendors(window.startAt, window.endAt, dashboardRankingLimit)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingService.GetStoreSettings()
	if err != nil {
		return nil, err
	}
	lowStock, err := s.repo.GetLowStockProducts(settings.LowStockWatermark, dashboardRankingLimit)
	if err != nil {
		return nil, err
	}

	response := &AdminDashboard{
		Range:    window.rangeKey,
		From:     window.startAt.Format(time.RFC3339),
		To:       window.endAt.Format(time.RFC3339),
		Currency: settings.Currency,
		KPI: AdminDashboardKPI{
			OrdersTotal:      overview.OrdersTotal,
			PaidOrders:       overview.PaidOrders,
			DeliveredOrders:  overview.DeliveredOrders,
			CancelledOrders:  overview.CancelledOrders,
			ProcessingOrders: overview.ProcessingOrders,
			RevenuePaid:      formatDashboardAmount(overview.RevenuePaid),
			NewUsers:         overview.NewUsers,
			ActiveProducts:   overview.ActiveProducts,
			PendingVendors:   overview.PendingVendors,
			PendingReviews:   overview.PendingReviews,
		},
		Trends:      make([]DashboardTrendPoint, 0, len(trends)),
		TopProducts: make([]DashboardProductRank, 0, len(topProducts)),
		TopVendors:  make([]DashboardVendorRank, 0, len(topVendors)),
		LowStock:    make([]DashboardLowStockAlert, 0, len(lowStock)),
	}
	for _, row := range trends {
		response.Trends = append(response.Trends, DashboardTrendPoint{
			Date:        row.Day,
			OrdersTotal: row.OrdersTotal,
			OrdersPaid:  row.OrdersPaid,
			RevenuePaid: formatDashboardAmount(row.RevenuePaid),
		})
	}
	for _, row := range topProducts {
		response.TopProducts = append(response.TopProducts, DashboardProductRank{
			ProductID:  row.ProductID,
			Name:       row.Name,
			PaidOrders: row.PaidOrders,
			Quantity:   row.Quantity,
			PaidAmount: formatDashboardAmount(row.PaidAmount),
		})
	}
	for _, row := range topVendors {
		response.TopVendors = append(response.TopVendors, DashboardVendorRank{
			VendorID:     row.VendorID,
			BusinessName: row.BusinessName,
			PaidOrders:   row.PaidOrders,
			PaidAmount:   formatDashboardAmount(row.PaidAmount),
		})
	}
	for _, row := range lowStock {
		response.LowStock = append(response.LowStock, DashboardLowStockAlert{
			ProductID: row.ProductID,
			VendorID:  row.VendorID,
			Name:      row.Name,
			SKU:       row.SKU,
			Inventory: row.Inventory,
		})
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

// GetVendorOverview 商家仪表盘
func (s *DashboardService) GetVendorOverview(ctx context.Context, vendorID uint, input DashboardQueryInput) (*VendorDashboard, error) {
	if vendorID == 0 {
		return nil, ErrInvalidInput
	}
	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:vendor:%d:%s:%d:%d", vendorID, window.rangeKey, window.startAt.Unix(), window.endAt.Unix())
	if !input.ForceRefresh {
		var cached VendorDashboard
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	overview, err := s.repo.GetVendorOverview(vendorID, window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	topProducts, err := s.repo.GetVendorTopProducts(vendorID, window.startAt, window.endAt, dashboardRankingLimit)
	if err != nil {
		return nil, err
	}

	response := &VendorDashboard{
		Range: window.rangeKey,
		From:  window.startAt.Format(time.RFC3339),
		To:    window.endAt.Format(time.RFC3339),
		KPI: VendorDashboardKPI{
			OrdersTotal:    overview.OrdersTotal,
			ItemsSold:      overview.ItemsSold,
			RevenuePaid:    formatDashboardAmount(overview.RevenuePaid),
			ActiveProducts: overview.ActiveProducts,
			PendingReviews: overview.PendingReviews,
		},
		TopProducts: make([]DashboardProductRank, 0, len(topProducts)),
	}
	for _, row := range topProducts {
		response.TopProducts = append(response.TopProducts, DashboardProductRank{
			ProductID:  row.ProductID,
			Name:       row.Name,
			PaidOrders: row.PaidOrders,
			Quantity:   row.Quantity,
			PaidAmount: formatDashboardAmount(row.PaidAmount),
		})
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

// resolveDashboardWindow 解析统计窗口。自定义区间最长 90 天。
func resolveDashboardWindow(input DashboardQueryInput, now time.Time) (dashboardWindow, error) {
	rangeKey := strings.ToLower(strings.TrimSpace(input.Range))
	endAt := now

	switch rangeKey {
	case "", "7d":
		return dashboardWindow{rangeKey: "7d", startAt: endAt.AddDate(0, 0, -7), endAt: endAt}, nil
	case "today":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return dashboardWindow{rangeKey: "today", startAt: start, endAt: endAt}, nil
	case "30d":
		return dashboardWindow{rangeKey: "30d", startAt: endAt.AddDate(0, 0, -30), endAt: endAt}, nil
	case "custom":
		if input.From == nil || input.To == nil {
			return dashboardWindow{}, ErrInvalidInput
		}
		from, to := *input.From, *input.To
		if !from.Before(to) {
			return dashboardWindow{}, ErrInvalidInput
		}
		if to.Sub(from) > dashboardCustomMaxDays*24*time.Hour {
			return dashboardWindow{}, ErrInvalidInput
		}
		return dashboardWindow{rangeKey: "custom", startAt: from, endAt: to}, nil
	default:
		return dashboardWindow{}, ErrInvalidInput
	}
}

func formatDashboardAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
