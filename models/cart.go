package models

// CartLine is one product in the cart. Name, price and image are denormalized
// snapshots taken when the product was added.
type CartLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}
