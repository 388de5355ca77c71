// Package cart implements the shopping cart: one line per product, merged on
// add, persisted in full to durable storage after every mutation.
package cart

import (
	"context"

	"github.com/mawlid1431/Arts/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// keyNamespace prefixes every persisted cart.
const keyNamespace = "nujuumarts_cart"

// NewCartID mints the identifier a visitor's cart is keyed under. The caller
// is responsible for handing the same id back on subsequent requests.
func NewCartID() string {
	return uuid.NewString()
}

// Storage persists serialized cart lines. Load returns (nil, nil) when no cart
// exists for the key.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Store holds the lines of a single cart. Lines keep insertion order so
// persisted snapshots are stable. Not safe for concurrent use; the owning
// request flow serializes access.
type Store struct {
	storage Storage
	logger  *zap.Logger
	key     string
	lines   []models.CartLine
}

// New rehydrates the cart for cartID from storage. A missing or malformed
// payload yields an empty cart, never an error.
func New(ctx context.Context, storage Storage, cartID string, logger *zap.Logger) *Store {
	s := &Store{
		storage: storage,
		logger:  logger,
		key:     keyNamespace + ":" + cartID,
	}
	data, err := storage.Load(ctx, s.key)
	if err != nil {
		logger.Warn("Failed to load cart, starting empty", zap.String("key", s.key), zap.Error(err))
		return s
	}
	if len(data) == 0 {
		return s
	}
	lines, err := decodeLines(data)
	if err != nil {
		logger.Warn("Malformed cart payload, starting empty", zap.String("key", s.key), zap.Error(err))
		return s
	}
	s.lines = lines
	return s
}

func (s *Store) find(productID string) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem inserts a line for the product or increments the existing one.
// Quantity is not clamped against stock here; that is the caller's concern.
func (s *Store) AddItem(ctx context.Context, productID, name string, price float64, image string, qty int) {
	if qty < 1 {
		qty = 1
	}
	if i := s.find(productID); i >= 0 {
		s.lines[i].Quantity += qty
	} else {
		s.lines = append(s.lines, models.CartLine{
			ProductID: productID,
			Name:      name,
			Price:     price,
			Image:     image,
			Quantity:  qty,
		})
	}
	s.persist(ctx)
}

// UpdateQuantity sets the line's quantity, floored at 1. Removing a line is a
// distinct operation. Unknown product ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, qty int) {
	i := s.find(productID)
	if i < 0 {
		return
	}
	if qty < 1 {
		qty = 1
	}
	s.lines[i].Quantity = qty
	s.persist(ctx)
}

// RemoveItem deletes the line if present.
func (s *Store) RemoveItem(ctx context.Context, productID string) {
	i := s.find(productID)
	if i < 0 {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.persist(ctx)
}

// Clear empties the cart. Called once, after a successful order submission.
func (s *Store) Clear(ctx context.Context) {
	s.lines = nil
	if err := s.storage.Delete(ctx, s.key); err != nil {
		s.logger.Warn("Failed to clear persisted cart", zap.String("key", s.key), zap.Error(err))
	}
}

// Total is the sum of price x quantity over all lines.
func (s *Store) Total() float64 {
	var total float64
	for _, line := range s.lines {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

// Count is the sum of quantities, not the number of lines.
func (s *Store) Count() int {
	var count int
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

func (s *Store) InCart(productID string) bool {
	return s.find(productID) >= 0
}

func (s *Store) Quantity(productID string) int {
	if i := s.find(productID); i >= 0 {
		return s.lines[i].Quantity
	}
	return 0
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []models.CartLine {
	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) persist(ctx context.Context) {
	data, err := encodeLines(s.lines)
	if err != nil {
		s.logger.Error("Failed to encode cart", zap.String("key", s.key), zap.Error(err))
		return
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		s.logger.Warn("Failed to persist cart", zap.String("key", s.key), zap.Error(err))
	}
}
