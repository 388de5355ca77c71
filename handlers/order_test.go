package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mawlid1431/Arts/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func setupOrderTest(t *testing.T) (*OrderHandler, sqlmock.Sqlmock, *gin.Engine) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	// Kafka producer and email sender are nil: side effects are skipped, the
	// order flow itself must not depend on them.
	handler := NewOrderHandler(db, nil, nil, "order_events", logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/orders", handler.GetOrders)
	router.GET("/api/orders/:id", handler.GetOrder)
	router.POST("/api/orders", handler.CreateOrder)
	router.PATCH("/api/orders/:id", handler.UpdateOrder)

	return handler, mock, router
}

func orderRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "customer_name", "customer_email", "customer_phone",
		"shipping_address", "payment_method", "status", "subtotal", "shipping", "tax", "total",
		"tracking_number", "created_at", "updated_at"})
}

func itemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "order_id", "product_id", "name", "quantity", "price"})
}

func validOrderBody() []byte {
	body, _ := json.Marshal(models.CreateOrderRequest{
		CustomerName:    "Amina Yusuf",
		CustomerEmail:   "amina@example.com",
		CustomerPhone:   "+252615551234",
		ShippingAddress: "12 Harbor Road, Hargeisa",
		Items: []models.CreateOrderItem{
			{ProductID: "p1", Quantity: 2, Price: 100},
		},
		Subtotal: 200,
		Shipping: 25,
		Total:    225,
	})
	return body
}

func TestOrderHandler_CreateOrder_Success(t *testing.T) {
	handler, mock, router := setupOrderTest(t)
	defer handler.db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(orderRows().
			AddRow("o1", "Amina Yusuf", "amina@example.com", "+252615551234",
				"12 Harbor Road, Hargeisa", "pending", "pending", 200.0, 25.0, 0.0, 225.0,
				"", time.Now(), time.Now()))
	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs("o1", "p1", 2, 100.0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "price"}).
			AddRow("i1", "o1", "p1", 2, 100.0))
	mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(validOrderBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var resp struct {
		Order models.Order `json:"order"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Order.ID != "o1" {
		t.Errorf("Expected order id o1, got %q", resp.Order.ID)
	}
	if len(resp.Order.Items) != 1 {
		t.Errorf("Expected 1 order item, got %d", len(resp.Order.Items))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

// Item insertion failure must roll the whole transaction back, removing the
// order row: order creation is all-or-nothing.
func TestOrderHandler_CreateOrder_ItemFailureRollsBack(t *testing.T) {
	handler, mock, router := setupOrderTest(t)
	defer handler.db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(orderRows().
			AddRow("o1", "Amina Yusuf", "amina@example.com", "+252615551234",
				"12 Harbor Road, Hargeisa", "pending", "pending", 200.0, 25.0, 0.0, 225.0,
				"", time.Now(), time.Now()))
	mock.ExpectQuery("INSERT INTO order_items").
		WillReturnError(errors.New("foreign key violation"))
	mock.ExpectRollback()

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(validOrderBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestOrderHandler_CreateOrder_TotalMismatchRejected(t *testing.T) {
	handler, mock, router := setupOrderTest(t)
	defer handler.db.Close()

	body, _ := json.Marshal(models.CreateOrderRequest{
		CustomerName:    "Amina Yusuf",
		CustomerEmail:   "amina@example.com",
		ShippingAddress: "12 Harbor Road",
		Items:           []models.CreateOrderItem{{ProductID: "p1", Quantity: 1, Price: 100}},
		Subtotal:        100,
		Shipping:        25,
		Total:           999,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("No database call expected: %v", err)
	}
}

func TestOrderHandler_CreateOrder_EmptyItemsRejected(t *testing.T) {
	handler, _, router := setupOrderTest(t)
	defer handler.db.Close()

	body, _ := json.Marshal(map[string]any{
		"customerName":    "Amina Yusuf",
		"customerEmail":   "amina@example.com",
		"shippingAddress": "12 Harbor Road",
		"items":           []any{},
		"subtotal":        0, "shipping": 0, "total": 0,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestOrderHandler_GetOrder_Success(t *testing.T) {
	handler, mock, router := setupOrderTest(t)
	defer handler.db.Close()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id = \\$1").
		WithArgs("o1").
		WillReturnRows(orderRows().
			AddRow("o1", "Amina Yusuf", "amina@example.com", "",
				"12 Harbor Road", "pending", "pending", 200.0, 25.0, 0.0, 225.0,
				"", time.Now(), time.Now()))
	mock.ExpectQuery("SELECT (.+) FROM order_items").
		WithArgs("o1").
		WillReturnRows(itemRows().AddRow("i1", "o1", "p1", "Desert Dawn", 2, 100.0))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/o1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp struct {
		Order models.Order `json:"order"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Order.Items) != 1 || resp.Order.Items[0].ProductName != "Desert Dawn" {
		t.Errorf("Unexpected items: %+v", resp.Order.Items)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestOrderHandler_GetOrder_NotFound(t *testing.T) {
	handler, mock, router := setupOrderTest(t)
	defer handler.db.Close()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/missing", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestOrderHandler_UpdateOrder_LegalTransition(t *testing.T) {
	handler, mock, router := setupOrderTest(t)
	defer handler.db.Close()

	mock.ExpectQuery("SELECT status FROM orders WHERE id = \\$1").
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
	mock.ExpectQuery("UPDATE orders SET updated_at").
		WillReturnRows(orderRows().
			AddRow("o1", "Amina Yusuf", "amina@example.com", "",
				"12 Harbor Road", "pending", "accepted", 200.0, 25.0, 0.0, 225.0,
				"", time.Now(), time.Now()))

	body, _ := json.Marshal(map[string]string{"status": "accepted"})
	req := httptest.NewRequest(http.MethodPatch, "/api/orders/o1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

// Accept on an already-rejected order is outside the legal transition set;
// the backend must refuse and leave the row untouched.
func TestOrderHandler_UpdateOrder_IllegalTransitionConflicts(t *testing.T) {
	handler, mock, router := setupOrderTest(t)
	defer handler.db.Close()

	mock.ExpectQuery("SELECT status FROM orders WHERE id = \\$1").
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("rejected"))

	body, _ := json.Marshal(map[string]string{"status": "accepted"})
	req := httptest.NewRequest(http.MethodPatch, "/api/orders/o1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d, got %d", http.StatusConflict, w.Code)
	}

	// no UPDATE statement may have run
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestOrderHandler_UpdateOrder_TrackingNumberOnly(t *testing.T) {
	handler, mock, router := setupOrderTest(t)
	defer handler.db.Close()

	mock.ExpectQuery("UPDATE orders SET updated_at").
		WithArgs("TRACK123", "o1").
		WillReturnRows(orderRows().
			AddRow("o1", "Amina Yusuf", "amina@example.com", "",
				"12 Harbor Road", "pending", "accepted", 200.0, 25.0, 0.0, 225.0,
				"TRACK123", time.Now(), time.Now()))

	body, _ := json.Marshal(map[string]string{"trackingNumber": "TRACK123"})
	req := httptest.NewRequest(http.MethodPatch, "/api/orders/o1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}
