package models

import "time"

// Category is the fixed set of artwork categories.
type Category string

const (
	CategoryPainting     Category = "Painting"
	CategoryPrint        Category = "Print"
	CategoryIllustration Category = "Illustration"
	CategoryPhotography  Category = "Photography"
	CategoryDigitalArt   Category = "Digital Art"
)

func ValidCategory(c Category) bool {
	switch c {
	case CategoryPainting, CategoryPrint, CategoryIllustration, CategoryPhotography, CategoryDigitalArt:
		return true
	}
	return false
}

type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"original_price,omitempty"`
	Discount      *int      `json:"discount,omitempty"`
	Image         string    `json:"image"`
	Category      Category  `json:"category"`
	InStock       bool      `json:"in_stock"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateProductRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"required,gte=0"`
	OriginalPrice *float64 `json:"original_price"`
	Discount      *int     `json:"discount" binding:"omitempty,gte=0,lte=100"`
	Image         string   `json:"image"`
	Category      Category `json:"category" binding:"required"`
	InStock       *bool    `json:"in_stock"`
}

type UpdateProductRequest struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Price         *float64  `json:"price" binding:"omitempty,gte=0"`
	OriginalPrice *float64  `json:"original_price"`
	Discount      *int      `json:"discount" binding:"omitempty,gte=0,lte=100"`
	Image         *string   `json:"image"`
	Category      *Category `json:"category"`
	InStock       *bool     `json:"in_stock"`
}
