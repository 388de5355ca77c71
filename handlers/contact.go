package handlers

import (
	"database/sql"
	"net/http"
	"regexp"
	"strings"

	"github.com/mawlid1431/Arts/email"
	"github.com/mawlid1431/Arts/middleware"
	"github.com/mawlid1431/Arts/models"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var contactEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type ContactHandler struct {
	db     *sql.DB
	sender email.Sender
	logger *zap.Logger
}

func NewContactHandler(db *sql.DB, sender email.Sender, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{db: db, sender: sender, logger: logger}
}

// SubmitContact validates and stores a contact message and notifies the shop
// owner. The email is best-effort: a failed send is logged, the submission
// still succeeds.
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "SubmitContact")
	defer span.End()

	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: name, email, message"})
		return
	}
	if !contactEmailPattern.MatchString(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	msg := models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
		Status:  "new",
	}

	// A storage failure does not abort the submission as long as the
	// notification can still go out.
	id := "email-only"
	err := h.db.QueryRowContext(ctx,
		`INSERT INTO contact_messages (name, email, phone, subject, message, status)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		msg.Name, msg.Email, msg.Phone, msg.Subject, msg.Message, msg.Status,
	).Scan(&msg.ID)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to save contact message", zap.Error(err))
	} else {
		id = msg.ID
	}

	if h.sender != nil {
		go func() {
			err := h.sender.SendContactNotification(msg)
			middleware.RecordEmailSent("contact", err == nil)
			if err != nil {
				h.logger.Error("Failed to send contact notification email", zap.Error(err))
			}
		}()
	}

	h.logger.Info("Contact form submitted", zap.String("email", req.Email))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Contact form submitted successfully",
		"id":      id,
	})
}

// GetMessages lists contact messages for the admin, optionally filtered by
// status.
func (h *ContactHandler) GetMessages(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "GetMessages")
	defer span.End()

	query := "SELECT id, name, email, phone, subject, message, status, created_at FROM contact_messages"
	args := []any{}
	if status := c.Query("status"); status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to fetch contact messages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	defer rows.Close()

	messages := []models.ContactMessage{}
	for rows.Next() {
		var m models.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &m.Status, &m.CreatedAt); err != nil {
			h.logger.Error("Failed to scan contact message", zap.Error(err))
			continue
		}
		messages = append(messages, m)
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
