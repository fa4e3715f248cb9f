package models

import "time"

// RawItem is an unclassified listing as produced by the source fetcher.
type RawItem struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Price         string `json:"price"`
	ShippingPrice string `json:"shippingPrice"`
	Image         string `json:"image"`
	Link          string `json:"link"`
}

// Item is a classified listing. ID is derived from the link once and never
// recomputed from mutated fields.
type Item struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         string    `json:"price"`
	ShippingPrice string    `json:"shippingPrice"`
	Image         string    `json:"image"`
	Link          string    `json:"link"`
	Category      Category  `json:"category"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CategoryMap groups items by their category.
type CategoryMap map[Category][]Item
