package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件（游标分页）
type ProductListFilter struct {
	Limit        int
	Cursor       string
	CategorySlug string
	VendorID     uint
	PriceMin     *float64
	PriceMax     *float64
	InStock      bool
	Featured     bool
	OnSale       bool
	RatingMin    *float64
	Search       string
	SortBy       string
	OnlyActive   bool
	WithVendor   bool
	WithCategory bool
}

// ProductAdminFilter 管理端/商家端商品列表的过滤条件（页码分页）
type ProductAdminFilter struct {
	Page       int
	PageSize   int
	VendorID   uint
	CategoryID uint
	Status     string
	Search     string
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	VendorID      uint
	Status        string
	PaymentStatus string
	OrderNo       string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Role        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// VendorListFilter 查询商家列表的过滤条件
type VendorListFilter struct {
	Page     int
	PageSize int
	Status   string
	Search   string
}

// ReviewListFilter 查询评价列表的过滤条件
type ReviewListFilter struct {
	Page      int
	PageSize  int
	ProductID uint
	UserID    uint
	VendorID  uint
	Status    string
	RatingMin int
}

// NotificationListFilter 查询通知列表的过滤条件
type NotificationListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	Type       string
	UnreadOnly bool
}
