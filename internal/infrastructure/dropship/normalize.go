package dropship

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/launchlab/backend/internal/domain/supplier"
)

// priceRangeSeparator splits range-form price strings like "4.99 -- 9.99".
const priceRangeSeparator = "--"

// parsePrice converts a platform price string to a decimal. Range values take
// the lower bound; absent or unparsable values map to zero.
func parsePrice(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, priceRangeSeparator); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parsePlatformTime parses a platform timestamp, tolerating both the RFC3339
// form and the date-time form some endpoints use. Returns the zero time on
// failure; callers treat the field as optional.
func parsePlatformTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
		return t
	}
	return time.Time{}
}

// normalizeTokenData converts an authentication payload to a token pair.
// Expiry timestamps are mandatory; a payload without them is a contract
// violation.
func normalizeTokenData(data *tokenData) (*supplier.TokenPair, error) {
	accessExp, err := time.Parse(time.RFC3339, data.AccessTokenExpiryDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad access expiry %q", supplier.ErrMalformedResponse, data.AccessTokenExpiryDate)
	}
	refreshExp, err := time.Parse(time.RFC3339, data.RefreshTokenExpiryDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad refresh expiry %q", supplier.ErrMalformedResponse, data.RefreshTokenExpiryDate)
	}
	return &supplier.TokenPair{
		AccessToken:      data.AccessToken,
		RefreshToken:     data.RefreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// normalizeProduct converts a platform product to the stable shape.
func normalizeProduct(p *platformProduct) supplier.Product {
	return supplier.Product{
		ID:           p.Pid,
		SKU:          p.ProductSku,
		Name:         p.ProductNameEn,
		Description:  p.Description,
		ImageURL:     p.ProductImage,
		Price:        parsePrice(p.SellPrice),
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		SourceFrom:   p.SourceFrom,
		ListedAt:     parsePlatformTime(p.CreateTime),
	}
}

// flattenSearch flattens the grouped search payload into a single ordered
// product sequence, preserving the envelope's total count and paging fields.
func flattenSearch(data *productListData) supplier.SearchPage {
	page := supplier.SearchPage{
		Products:     make([]supplier.Product, 0),
		TotalRecords: data.TotalRecords,
		PageNum:      data.PageNum,
		PageSize:     data.PageSize,
	}
	for _, group := range data.Content {
		for i := range group.ProductList {
			page.Products = append(page.Products, normalizeProduct(&group.ProductList[i]))
		}
	}
	return page
}

// normalizeVariants converts platform variants to the stable shape.
func normalizeVariants(rows []platformVariant) []supplier.Variant {
	variants := make([]supplier.Variant, 0, len(rows))
	for _, row := range rows {
		variants = append(variants, supplier.Variant{
			ID:        row.Vid,
			ProductID: row.Pid,
			SKU:       row.VariantSku,
			Name:      row.VariantNameEn,
			Price:     parsePrice(row.VariantSellPrice),
			WeightG:   row.VariantWeight,
			ImageURL:  row.VariantImage,
		})
	}
	return variants
}

// normalizeCategoryTree converts the platform's three-level category payload
// into the domain tree.
func normalizeCategoryTree(rows []categoryFirst) []supplier.CategoryNode {
	tree := make([]supplier.CategoryNode, 0, len(rows))
	for _, first := range rows {
		node := supplier.CategoryNode{
			ID:   first.CategoryFirstID,
			Name: first.CategoryFirstName,
		}
		for _, second := range first.CategoryFirstList {
			child := supplier.CategoryNode{
				ID:   second.CategorySecondID,
				Name: second.CategorySecondName,
			}
			for _, third := range second.CategorySecondList {
				child.Children = append(child.Children, supplier.CategoryNode{
					ID:   third.CategoryID,
					Name: third.CategoryName,
				})
			}
			node.Children = append(node.Children, child)
		}
		tree = append(tree, node)
	}
	return tree
}

// topCategories exposes only the top level of the tree as {id, name} pairs.
func topCategories(tree []supplier.CategoryNode) []supplier.Category {
	categories := make([]supplier.Category, 0, len(tree))
	for _, node := range tree {
		categories = append(categories, supplier.Category{ID: node.ID, Name: node.Name})
	}
	return categories
}

// normalizeStock converts warehouse stock rows into a point-in-time snapshot.
func normalizeStock(rows []platformStock, checkedAt time.Time) supplier.InventorySnapshot {
	snapshot := supplier.InventorySnapshot{
		Warehouses: make([]supplier.WarehouseStock, 0, len(rows)),
		CheckedAt:  checkedAt,
	}
	for _, row := range rows {
		if snapshot.VariantID == "" {
			snapshot.VariantID = row.Vid
		}
		if snapshot.SKU == "" {
			snapshot.SKU = row.Sku
		}
		snapshot.Warehouses = append(snapshot.Warehouses, supplier.WarehouseStock{
			WarehouseCode: row.AreaEn,
			CountryCode:   row.CountryCode,
			Quantity:      row.StorageNum,
		})
		snapshot.Total += row.StorageNum
	}
	return snapshot
}

// normalizeOrder converts a platform order to the stable shape.
func normalizeOrder(o *platformOrder) supplier.Order {
	order := supplier.Order{
		ID:             o.OrderID,
		OrderNumber:    o.OrderNum,
		Status:         mapOrderStatus(o.OrderStatus),
		ProductAmount:  parsePrice(o.ProductAmount),
		PostageAmount:  parsePrice(o.PostageAmount),
		TotalAmount:    parsePrice(o.OrderAmount),
		TrackingNumber: o.TrackNumber,
		LogisticsName:  o.LogisticName,
		CreatedAt:      parsePlatformTime(o.CreateDate),
	}
	if paidAt := parsePlatformTime(o.PaymentDate); !paidAt.IsZero() {
		order.PaidAt = &paidAt
	}
	return order
}

// mapOrderStatus maps platform order status strings to domain statuses.
func mapOrderStatus(status string) supplier.OrderStatus {
	switch strings.ToUpper(status) {
	case "CREATED":
		return supplier.OrderStatusCreated
	case "UNPAID":
		return supplier.OrderStatusUnpaid
	case "UNSHIPPED", "PROCESSING":
		return supplier.OrderStatusProcessing
	case "SHIPPED":
		return supplier.OrderStatusShipped
	case "DELIVERED":
		return supplier.OrderStatusDelivered
	case "CANCELLED":
		return supplier.OrderStatusCancelled
	default:
		return supplier.OrderStatusCreated
	}
}
