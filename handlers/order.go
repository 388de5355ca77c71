package handlers

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/mawlid1431/Arts/email"
	"github.com/mawlid1431/Arts/kafka"
	"github.com/mawlid1431/Arts/middleware"
	"github.com/mawlid1431/Arts/models"
	"github.com/mawlid1431/Arts/workflow"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const orderColumns = "id, customer_name, customer_email, customer_phone, shipping_address, payment_method, status, subtotal, shipping, tax, total, tracking_number, created_at, updated_at"

type OrderHandler struct {
	db       *sql.DB
	producer sarama.SyncProducer
	sender   email.Sender
	topic    string
	logger   *zap.Logger
}

func NewOrderHandler(db *sql.DB, producer sarama.SyncProducer, sender email.Sender, topic string, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		db:       db,
		producer: producer,
		sender:   sender,
		topic:    topic,
		logger:   logger,
	}
}

func scanOrder(row interface{ Scan(...any) error }) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.ShippingAddress,
		&o.PaymentMethod, &o.Status, &o.Subtotal, &o.Shipping, &o.Tax, &o.Total,
		&o.TrackingNumber, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (h *OrderHandler) loadItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT i.id, i.order_id, i.product_id, COALESCE(p.name, ''), i.quantity, i.price
		 FROM order_items i LEFT JOIN products p ON p.id = i.product_id
		 WHERE i.order_id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "GetOrders")
	defer span.End()

	query := "SELECT " + orderColumns + " FROM orders"
	args := []any{}
	if customerEmail := c.Query("customer_email"); customerEmail != "" {
		query += " WHERE customer_email = $1"
		args = append(args, customerEmail)
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to fetch orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			span.RecordError(err)
			h.logger.Error("Failed to scan order", zap.Error(err))
			continue
		}
		orders = append(orders, o)
	}
	rows.Close()

	for i := range orders {
		items, err := h.loadItems(ctx, orders[i].ID)
		if err != nil {
			h.logger.Warn("Failed to load order items", zap.String("order_id", orders[i].ID), zap.Error(err))
			continue
		}
		orders[i].Items = items
	}

	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "GetOrder")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("order.id", id))

	order, err := scanOrder(h.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		span.RecordError(err)
		h.logger.Error("Failed to fetch order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	items, err := h.loadItems(ctx, order.ID)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to load order items", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}
	order.Items = items

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CreateOrder inserts the order row and its item rows in one transaction, so
// an item insertion failure leaves no orphan order behind. The notification
// email and the Kafka event are best-effort side effects fired after commit.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "CreateOrder")
	defer span.End()

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if math.Abs(req.Subtotal+req.Shipping+req.Tax-req.Total) > 0.005 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Total does not match subtotal + shipping + tax"})
		return
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "pending"
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to begin transaction", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}
	defer tx.Rollback()

	order, err := scanOrder(tx.QueryRowContext(ctx,
		`INSERT INTO orders (customer_name, customer_email, customer_phone, shipping_address, payment_method, status, subtotal, shipping, tax, total)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING `+orderColumns,
		req.CustomerName, req.CustomerEmail, req.CustomerPhone, req.ShippingAddress,
		paymentMethod, models.OrderStatusPending, req.Subtotal, req.Shipping, req.Tax, req.Total))
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to create order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	for _, item := range req.Items {
		var created models.OrderItem
		err := tx.QueryRowContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price)
			 VALUES ($1, $2, $3, $4) RETURNING id, order_id, product_id, quantity, price`,
			order.ID, item.ProductID, item.Quantity, item.Price,
		).Scan(&created.ID, &created.OrderID, &created.ProductID, &created.Quantity, &created.Price)
		if err != nil {
			// rollback removes the order row too: order creation is all-or-nothing
			span.RecordError(err)
			h.logger.Error("Failed to create order items, rolling back order",
				zap.String("order_id", order.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order items"})
			return
		}
		order.Items = append(order.Items, created)
	}

	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to commit order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	span.SetAttributes(attribute.String("order.id", order.ID))
	middleware.RecordOrderCreated()
	h.notifyOrderCreated(order)

	h.logger.Info("Order created", zap.String("order_id", order.ID), zap.Float64("total", order.Total))
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// notifyOrderCreated fires the side effects. Failures are logged; order
// creation never fails because a notification could not be delivered.
func (h *OrderHandler) notifyOrderCreated(order models.Order) {
	if h.producer != nil {
		event := models.OrderEvent{
			OrderID:       order.ID,
			CustomerEmail: order.CustomerEmail,
			Status:        order.Status,
			Total:         order.Total,
			EventType:     "order_created",
		}
		if err := kafka.PublishOrderEvent(context.Background(), h.producer, h.topic, event, h.logger); err != nil {
			h.logger.Error("Failed to publish order_created event", zap.Error(err))
		}
	}

	if h.sender != nil {
		go func() {
			err := h.sender.SendOrderNotification(order)
			middleware.RecordEmailSent("order", err == nil)
			if err != nil {
				h.logger.Error("Failed to send order notification email",
					zap.String("order_id", order.ID), zap.Error(err))
			}
		}()
	}
}

// UpdateOrder is a partial update. A status change must be a legal workflow
// transition; anything else is rejected with 409 and the row is untouched.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "UpdateOrder")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("order.id", id))

	var req models.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := "UPDATE orders SET updated_at = NOW()"
	args := []any{}
	argPos := 1

	if req.Status != nil {
		var current models.OrderStatus
		err := h.db.QueryRowContext(ctx, "SELECT status FROM orders WHERE id = $1", id).Scan(&current)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			span.RecordError(err)
			h.logger.Error("Failed to fetch order status", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
			return
		}

		next, err := workflow.Transition(current, *req.Status)
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Illegal status transition"})
			return
		}

		query += ", status = $" + strconv.Itoa(argPos)
		args = append(args, next)
		argPos++
	}
	if req.PaymentMethod != nil {
		query += ", payment_method = $" + strconv.Itoa(argPos)
		args = append(args, *req.PaymentMethod)
		argPos++
	}
	if req.TrackingNumber != nil {
		query += ", tracking_number = $" + strconv.Itoa(argPos)
		args = append(args, *req.TrackingNumber)
		argPos++
	}

	query += " WHERE id = $" + strconv.Itoa(argPos) + " RETURNING " + orderColumns
	args = append(args, id)

	order, err := scanOrder(h.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		span.RecordError(err)
		h.logger.Error("Failed to update order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	if req.Status != nil && h.producer != nil {
		event := models.OrderEvent{
			OrderID:       order.ID,
			CustomerEmail: order.CustomerEmail,
			Status:        order.Status,
			Total:         order.Total,
			EventType:     "order_status_changed",
		}
		if err := kafka.PublishOrderEvent(ctx, h.producer, h.topic, event, h.logger); err != nil {
			h.logger.Error("Failed to publish order_status_changed event", zap.Error(err))
		}
	}

	h.logger.Info("Order updated", zap.String("order_id", order.ID), zap.String("status", string(order.Status)))
	c.JSON(http.StatusOK, gin.H{"order": order})
}
