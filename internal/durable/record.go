package durable

import (
	"time"

	"github.com/dealhound/dealhound/internal/models"
)

// Table is the durable store table holding classified listings.
const Table = "categorized_articles"

// Record is the persisted form of a classified item. Column names follow the
// categorized_articles schema; article_id is the primary key and writes go
// through upsert-on-conflict rather than bare inserts.
type Record struct {
	ArticleID     string    `json:"article_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         string    `json:"price"`
	ShippingPrice string    `json:"shipping_price"`
	Image         string    `json:"image"`
	Link          string    `json:"link"`
	Category      string    `json:"category"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromItem converts an item into its persisted form.
func FromItem(item models.Item) Record {
	return Record{
		ArticleID:     item.ID,
		Title:         item.Title,
		Description:   item.Description,
		Price:         item.Price,
		ShippingPrice: item.ShippingPrice,
		Image:         item.Image,
		Link:          item.Link,
		Category:      string(item.Category),
		CreatedAt:     item.CreatedAt,
	}
}

// Item converts a record back into the API-facing item shape. Stored labels
// outside the enumeration resolve to the default category.
func (r Record) Item() models.Item {
	return models.Item{
		ID:            r.ArticleID,
		Title:         r.Title,
		Description:   r.Description,
		Price:         r.Price,
		ShippingPrice: r.ShippingPrice,
		Image:         r.Image,
		Link:          r.Link,
		Category:      models.ParseCategory(r.Category),
		CreatedAt:     r.CreatedAt,
	}
}
