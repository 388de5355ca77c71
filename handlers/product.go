package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mawlid1431/Arts/cache"
	"github.com/mawlid1431/Arts/circuitbreaker"
	"github.com/mawlid1431/Arts/models"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const productColumns = "id, name, description, price, original_price, discount, image, category, in_stock, created_at, updated_at"

type ProductHandler struct {
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
	breaker     *circuitbreaker.CircuitBreaker
}

func NewProductHandler(db *sql.DB, redisClient *redis.Client, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		db:          db,
		redisClient: redisClient,
		logger:      logger,
		breaker: circuitbreaker.New(5, 30*time.Second, func(err error) bool {
			return errors.Is(err, sql.ErrNoRows)
		}),
	}
}

func scanProduct(row interface{ Scan(...any) error }) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.OriginalPrice, &p.Discount,
		&p.Image, &p.Category, &p.InStock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "GetProducts")
	defer span.End()

	rows, err := h.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY created_at DESC")
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to fetch products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			span.RecordError(err)
			h.logger.Error("Failed to scan product", zap.Error(err))
			continue
		}
		products = append(products, p)
	}

	span.SetAttributes(attribute.Int("products.count", len(products)))
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "GetProduct")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("product.id", id))

	if h.redisClient != nil {
		if cached, err := cache.GetProduct(ctx, h.redisClient, id); err == nil {
			var product models.Product
			if err := json.Unmarshal(cached, &product); err == nil {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				c.JSON(http.StatusOK, gin.H{"product": product})
				return
			}
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	var product models.Product
	dbErr := h.breaker.Execute(ctx, func() error {
		var err error
		product, err = scanProduct(h.db.QueryRowContext(ctx,
			"SELECT "+productColumns+" FROM products WHERE id = $1", id))
		return err
	})

	if dbErr != nil {
		if errors.Is(dbErr, circuitbreaker.ErrCircuitOpen) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
			return
		}
		if errors.Is(dbErr, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		span.RecordError(dbErr)
		h.logger.Error("Failed to fetch product", zap.Error(dbErr))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	if h.redisClient != nil {
		if err := cache.SetProduct(ctx, h.redisClient, id, product, 5*time.Minute); err != nil {
			h.logger.Warn("Failed to cache product", zap.String("product_id", id), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "CreateProduct")
	defer span.End()

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	product, err := scanProduct(h.db.QueryRowContext(ctx,
		`INSERT INTO products (name, description, price, original_price, discount, image, category, in_stock)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+productColumns,
		req.Name, req.Description, req.Price, req.OriginalPrice, req.Discount, req.Image, req.Category, inStock))
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID))
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "UpdateProduct")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("product.id", id))

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Category != nil && !models.ValidCategory(*req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	// Build the partial update; nil fields stay unchanged.
	query := "UPDATE products SET updated_at = NOW()"
	args := []any{}
	argPos := 1

	setField := func(column string, value any) {
		query += ", " + column + " = $" + strconv.Itoa(argPos)
		args = append(args, value)
		argPos++
	}

	if req.Name != nil {
		setField("name", *req.Name)
	}
	if req.Description != nil {
		setField("description", *req.Description)
	}
	if req.Price != nil {
		setField("price", *req.Price)
	}
	if req.OriginalPrice != nil {
		setField("original_price", *req.OriginalPrice)
	}
	if req.Discount != nil {
		setField("discount", *req.Discount)
	}
	if req.Image != nil {
		setField("image", *req.Image)
	}
	if req.Category != nil {
		setField("category", *req.Category)
	}
	if req.InStock != nil {
		setField("in_stock", *req.InStock)
	}

	query += " WHERE id = $" + strconv.Itoa(argPos) + " RETURNING " + productColumns
	args = append(args, id)

	product, err := scanProduct(h.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		span.RecordError(err)
		h.logger.Error("Failed to update product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	if h.redisClient != nil {
		if err := cache.DeleteProduct(ctx, h.redisClient, id); err != nil {
			h.logger.Warn("Failed to invalidate product cache", zap.String("product_id", id), zap.Error(err))
		}
	}

	h.logger.Info("Product updated", zap.String("product_id", id))
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "DeleteProduct")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("product.id", id))

	result, err := h.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to delete product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if h.redisClient != nil {
		if err := cache.DeleteProduct(ctx, h.redisClient, id); err != nil {
			h.logger.Warn("Failed to invalidate product cache", zap.String("product_id", id), zap.Error(err))
		}
	}

	h.logger.Info("Product deleted", zap.String("product_id", id))
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
