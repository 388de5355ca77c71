package handlers

import (
	"context"
	"database/sql"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/mawlid1431/Arts/models"
	"github.com/mawlid1431/Arts/timers"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// DashboardHandler serves the admin overview aggregation. A background
// refresher recomputes the snapshot every interval; requests read the cached
// copy, so a slow aggregation never blocks the dashboard. Refreshes carry a
// generation number so a stale computation can never overwrite a newer one.
type DashboardHandler struct {
	db     *sql.DB
	orders *OrderHandler
	logger *zap.Logger

	mu         sync.Mutex
	stats      *models.DashboardStats
	gen        uint64
	appliedGen uint64
}

func NewDashboardHandler(db *sql.DB, orders *OrderHandler, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{db: db, orders: orders, logger: logger}
}

// StartRefresher runs the periodic recomputation until ctx is cancelled.
func (h *DashboardHandler) StartRefresher(ctx context.Context, interval time.Duration) {
	go timers.Interval(ctx, interval, func(ctx context.Context) {
		if err := h.refresh(ctx); err != nil {
			h.logger.Error("Dashboard refresh failed", zap.Error(err))
		}
	})
}

func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "GetDashboard")
	defer span.End()

	h.mu.Lock()
	cached := h.stats
	h.mu.Unlock()

	if cached == nil {
		if err := h.refresh(ctx); err != nil {
			span.RecordError(err)
			h.logger.Error("Failed to compute dashboard", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard data"})
			return
		}
		h.mu.Lock()
		cached = h.stats
		h.mu.Unlock()
	}

	c.JSON(http.StatusOK, cached)
}

func (h *DashboardHandler) refresh(ctx context.Context) error {
	h.mu.Lock()
	h.gen++
	gen := h.gen
	h.mu.Unlock()

	stats, err := h.compute(ctx)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	// drop the result if a newer refresh already landed
	if gen <= h.appliedGen {
		return nil
	}
	h.appliedGen = gen
	h.stats = stats
	return nil
}

func (h *DashboardHandler) compute(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{
		RecentOrders:     []models.Order{},
		LowStockProducts: []models.Product{},
	}

	if err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&stats.TotalProducts); err != nil {
		return nil, err
	}

	rows, err := h.db.QueryContext(ctx, "SELECT status, total FROM orders")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revenue float64
	for rows.Next() {
		var status models.OrderStatus
		var total float64
		if err := rows.Scan(&status, &total); err != nil {
			return nil, err
		}
		switch status {
		case models.OrderStatusPending, models.OrderStatusReviewing:
			stats.PendingOrders++
		case models.OrderStatusAccepted:
			stats.AcceptedOrders++
		case models.OrderStatusFulfilled:
			stats.FulfilledOrders++
			revenue += total
		case models.OrderStatusRejected, models.OrderStatusCancelled:
			stats.RejectedOrders++
		}
	}
	stats.TotalRevenue = math.Round(revenue*100) / 100

	recentRows, err := h.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC LIMIT 5")
	if err != nil {
		return nil, err
	}
	defer recentRows.Close()

	for recentRows.Next() {
		o, err := scanOrder(recentRows)
		if err != nil {
			return nil, err
		}
		stats.RecentOrders = append(stats.RecentOrders, o)
	}
	recentRows.Close()

	for i := range stats.RecentOrders {
		items, err := h.orders.loadItems(ctx, stats.RecentOrders[i].ID)
		if err != nil {
			h.logger.Warn("Failed to load recent order items", zap.Error(err))
			continue
		}
		stats.RecentOrders[i].Items = items
	}

	lowStockRows, err := h.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE in_stock = FALSE LIMIT 5")
	if err != nil {
		return nil, err
	}
	defer lowStockRows.Close()

	for lowStockRows.Next() {
		p, err := scanProduct(lowStockRows)
		if err != nil {
			return nil, err
		}
		stats.LowStockProducts = append(stats.LowStockProducts, p)
	}

	return stats, nil
}
