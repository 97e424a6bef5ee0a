package models

import "github.com/shopspring/decimal"

// MenuItem represents one item on a restaurant's public menu. Menu data
// is owned by the restaurant and read-only on this side.
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	IsAvailable bool            `json:"isAvailable"`
}

// Restaurant represents the public descriptor of a restaurant.
type Restaurant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
