package models

type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	User    User   `json:"user"`
	Token   string `json:"token,omitempty"`
}

type DashboardStats struct {
	TotalProducts    int       `json:"totalProducts"`
	PendingOrders    int       `json:"pendingOrders"`
	AcceptedOrders   int       `json:"acceptedOrders"`
	FulfilledOrders  int       `json:"fulfilledOrders"`
	RejectedOrders   int       `json:"rejectedOrders"`
	TotalRevenue     float64   `json:"totalRevenue"`
	RecentOrders     []Order   `json:"recentOrders"`
	LowStockProducts []Product `json:"lowStockProducts"`
}
