package supplier

import "time"

// WarehouseStock is the stock level in a single platform warehouse.
type WarehouseStock struct {
	WarehouseCode string `json:"warehouseCode"`
	CountryCode   string `json:"countryCode,omitempty"`
	Quantity      int64  `json:"quantity"`
}

// InventorySnapshot is a single point-in-time stock read for one variant.
// Snapshots are never persisted or cached; correctness depends on the data
// being live.
type InventorySnapshot struct {
	VariantID  string           `json:"variantId,omitempty"`
	SKU        string           `json:"sku,omitempty"`
	Warehouses []WarehouseStock `json:"warehouses"`
	Total      int64            `json:"total"`
	CheckedAt  time.Time        `json:"checkedAt"`
}
