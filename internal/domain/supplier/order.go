package supplier

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfillment status of a platform order.
type OrderStatus string

const (
	// OrderStatusCreated indicates the order was created but not yet paid
	OrderStatusCreated OrderStatus = "CREATED"
	// OrderStatusUnpaid indicates the order is awaiting payment
	OrderStatusUnpaid OrderStatus = "UNPAID"
	// OrderStatusProcessing indicates the platform is preparing the shipment
	OrderStatusProcessing OrderStatus = "PROCESSING"
	// OrderStatusShipped indicates the order has been dispatched
	OrderStatusShipped OrderStatus = "SHIPPED"
	// OrderStatusDelivered indicates the order reached the buyer
	OrderStatusDelivered OrderStatus = "DELIVERED"
	// OrderStatusCancelled indicates the order was cancelled
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// String returns the string representation of OrderStatus.
func (s OrderStatus) String() string {
	return string(s)
}

// IsFinal returns true if the status is a terminal state.
func (s OrderStatus) IsFinal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// OrderItem is one line of an order to be placed on the platform.
type OrderItem struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest describes an order to place with the platform.
// OrderNumber is the caller's idempotency handle; when empty the client
// assigns one.
type CreateOrderRequest struct {
	OrderNumber  string
	CountryCode  string
	Province     string
	City         string
	Address      string
	CustomerName string
	Phone        string
	ZipCode      string
	Note         string
	Items        []OrderItem
}

// Validate checks that the request carries everything the platform requires.
func (r *CreateOrderRequest) Validate() error {
	if r.CountryCode == "" {
		return fmt.Errorf("%w: country code is required", ErrInvalidOrder)
	}
	if r.Address == "" {
		return fmt.Errorf("%w: address is required", ErrInvalidOrder)
	}
	if r.CustomerName == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidOrder)
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidOrder)
	}
	for i, item := range r.Items {
		if item.VariantID == "" {
			return fmt.Errorf("%w: item %d has no variant id", ErrInvalidOrder, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d has non-positive quantity", ErrInvalidOrder, i)
		}
	}
	return nil
}

// Order is the stable order shape exposed to callers.
type Order struct {
	ID             string          `json:"id"`
	OrderNumber    string          `json:"orderNumber"`
	Status         OrderStatus     `json:"status"`
	ProductAmount  decimal.Decimal `json:"productAmount"`
	PostageAmount  decimal.Decimal `json:"postageAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	TrackingNumber string          `json:"trackingNumber,omitempty"`
	LogisticsName  string          `json:"logisticsName,omitempty"`
	CreatedAt      time.Time       `json:"createdAt,omitzero"`
	PaidAt         *time.Time      `json:"paidAt,omitempty"`
}

// OrderListRequest describes a paged order listing query.
type OrderListRequest struct {
	PageNum  int
	PageSize int
	Status   OrderStatus
}

// Validate checks paging bounds and applies defaults.
func (r *OrderListRequest) Validate() error {
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

// OrderList is one page of orders.
type OrderList struct {
	Orders       []Order `json:"orders"`
	TotalRecords int64   `json:"totalRecords"`
	PageNum      int     `json:"pageNum"`
	PageSize     int     `json:"pageSize"`
}
