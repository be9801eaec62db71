package supplier

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the stable product shape exposed to callers, decoupled from the
// platform's field names and nesting.
type Product struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	Price        decimal.Decimal `json:"price"`
	CategoryID   string          `json:"categoryId,omitempty"`
	CategoryName string          `json:"categoryName,omitempty"`
	SourceFrom   string          `json:"sourceFrom,omitempty"`
	ListedAt     time.Time       `json:"listedAt,omitzero"`
}

// Variant is a purchasable variation of a product.
type Variant struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price"`
	WeightG   int64           `json:"weightG,omitempty"`
	ImageURL  string          `json:"imageUrl,omitempty"`
}

// Category is a flat {id, name} pair from the top level of the platform's
// category tree. Deeper traversal goes through CategoryNode.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryNode is one node of the platform's multi-level category tree.
type CategoryNode struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Children []CategoryNode `json:"children,omitempty"`
}

// SearchRequest describes a product search against the platform catalog.
type SearchRequest struct {
	Keyword    string
	CategoryID string
	PageNum    int
	PageSize   int
	MinPrice   decimal.Decimal
	MaxPrice   decimal.Decimal
}

// Validate checks paging bounds and applies defaults.
func (r *SearchRequest) Validate() error {
	if r.PageNum == 0 {
		r.PageNum = 1
	}
	if r.PageSize == 0 {
		r.PageSize = 20
	}
	if r.PageNum < 1 || r.PageSize < 1 || r.PageSize > 200 {
		return ErrInvalidPage
	}
	return nil
}

// SearchPage is one page of search results, flattened into a single ordered
// sequence of products with the envelope's paging metadata preserved.
type SearchPage struct {
	Products     []Product `json:"products"`
	TotalRecords int64     `json:"totalRecords"`
	PageNum      int       `json:"pageNum"`
	PageSize     int       `json:"pageSize"`
}

// ProductCache is the read-through cache port for product detail records.
// Get returns ErrCacheMiss when the key is absent or expired.
type ProductCache interface {
	Get(ctx context.Context, productID string) (*Product, error)
	Put(ctx context.Context, productID string, product *Product, ttl time.Duration) error
}

// CategoryCache is the read-through cache port for the category tree.
// Get returns ErrCacheMiss when no live entry exists.
type CategoryCache interface {
	Get(ctx context.Context) ([]CategoryNode, error)
	Put(ctx context.Context, tree []CategoryNode, ttl time.Duration) error
}
