package dropship

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/launchlab/backend/internal/domain/supplier"
)

// ClientDeps bundles constructor inputs for the catalog client.
type ClientDeps struct {
	TokenStore    supplier.TokenStore
	ProductCache  supplier.ProductCache
	CategoryCache supplier.CategoryCache
	HTTPClient    *http.Client
	Logger        *zap.Logger
	Clock         func() time.Time
}

// Client is the facade over the dropship supplier platform: catalog search
// and lookups, inventory reads, and order placement. All operations accept a
// context that bounds throttle waits, backoff sleeps, and each HTTP attempt.
type Client struct {
	cfg           *Config
	executor      *Executor
	tokens        *TokenManager
	productCache  supplier.ProductCache
	categoryCache supplier.CategoryCache
	clock         func() time.Time
	logger        *zap.Logger

	// closer releases resources owned by the factory wiring, if any
	closer func() error
}

// NewClient creates a catalog client. TokenStore is required; the caches are
// optional and disabled when nil.
func NewClient(cfg *Config, deps ClientDeps) (*Client, error) {
	if cfg == nil {
		return nil, supplier.ErrNotConfigured
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", supplier.ErrNotConfigured, err)
	}
	if deps.TokenStore == nil {
		return nil, errors.New("dropship: token store is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		cfg:           cfg,
		executor:      NewExecutor(cfg, NewThrottler(cfg.MaxConcurrent), deps.HTTPClient, logger),
		productCache:  deps.ProductCache,
		categoryCache: deps.CategoryCache,
		clock:         clock,
		logger:        logger,
	}

	tokens, err := NewTokenManager(TokenManagerDeps{
		Store:             deps.TokenStore,
		Authenticate:      c.authenticate,
		Refresh:           c.refreshToken,
		Clock:             clock,
		Logger:            logger,
		RefreshBuffer:     cfg.RefreshBuffer,
		StaleServeCeiling: cfg.StaleServeCeiling,
	})
	if err != nil {
		return nil, err
	}
	c.tokens = tokens
	return c, nil
}

// Close releases resources owned by the client's wiring (the redis client
// when the client was built through NewClientFromConfig).
func (c *Client) Close() error {
	if c.closer != nil {
		return c.closer()
	}
	return nil
}

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

func (c *Client) authenticate(ctx context.Context) (*supplier.TokenPair, error) {
	resp, err := c.executor.Execute(ctx, apiCall{
		Method: http.MethodPost,
		Path:   "authentication/getAccessToken",
		Body:   accessTokenRequest{Email: c.cfg.Email, Password: c.cfg.APIKey},
	})
	if err != nil {
		return nil, err
	}
	return decodeTokenData(resp)
}

func (c *Client) refreshToken(ctx context.Context, refreshToken string) (*supplier.TokenPair, error) {
	resp, err := c.executor.Execute(ctx, apiCall{
		Method: http.MethodPost,
		Path:   "authentication/refreshAccessToken",
		Body:   refreshTokenRequest{RefreshToken: refreshToken},
	})
	if err != nil {
		return nil, err
	}
	return decodeTokenData(resp)
}

func decodeTokenData(resp *platformResponse) (*supplier.TokenPair, error) {
	var data tokenData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", supplier.ErrMalformedResponse, err)
	}
	return normalizeTokenData(&data)
}

// call performs an authenticated platform request and decodes its data
// payload into out when out is non-nil.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}
	resp, err := c.executor.Execute(ctx, apiCall{
		Method: method,
		Path:   path,
		Query:  query,
		Body:   body,
		Token:  token,
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(resp.Data) == 0 {
		return fmt.Errorf("%w: empty data payload", supplier.ErrMalformedResponse)
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("%w: %v", supplier.ErrMalformedResponse, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Catalog Operations
// ---------------------------------------------------------------------------

// SearchProducts searches the platform catalog and returns one flattened page.
func (c *Client) SearchProducts(ctx context.Context, req supplier.SearchRequest) (*supplier.SearchPage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("pageNum", strconv.Itoa(req.PageNum))
	query.Set("pageSize", strconv.Itoa(req.PageSize))
	if req.Keyword != "" {
		query.Set("keyWord", req.Keyword)
	}
	if req.CategoryID != "" {
		query.Set("categoryId", req.CategoryID)
	}
	if req.MinPrice.IsPositive() {
		query.Set("minPrice", req.MinPrice.String())
	}
	if req.MaxPrice.IsPositive() {
		query.Set("maxPrice", req.MaxPrice.String())
	}

	var data productListData
	if err := c.call(ctx, http.MethodGet, "product/listV2", query, nil, &data); err != nil {
		return nil, err
	}
	page := flattenSearch(&data)
	if page.PageNum == 0 {
		page.PageNum = req.PageNum
	}
	if page.PageSize == 0 {
		page.PageSize = req.PageSize
	}
	return &page, nil
}

// GetProduct returns one product detail record, read through the product
// cache when one is configured.
func (c *Client) GetProduct(ctx context.Context, productID string) (*supplier.Product, error) {
	if productID == "" {
		return nil, supplier.ErrInvalidProductID
	}

	if c.productCache != nil {
		cached, err := c.productCache.Get(ctx, productID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, supplier.ErrCacheMiss) {
			c.logger.Warn("product cache read failed", zap.Error(err))
		}
	}

	query := url.Values{}
	query.Set("pid", productID)
	var data platformProduct
	if err := c.call(ctx, http.MethodGet, "product/query", query, nil, &data); err != nil {
		return nil, err
	}
	product := normalizeProduct(&data)

	if c.productCache != nil {
		if err := c.productCache.Put(ctx, productID, &product, c.cfg.ProductCacheTTL); err != nil {
			c.logger.Warn("product cache write failed", zap.Error(err))
		}
	}
	return &product, nil
}

// GetCategories returns the top level of the platform category tree as flat
// {id, name} pairs.
func (c *Client) GetCategories(ctx context.Context) ([]supplier.Category, error) {
	tree, err := c.GetCategoryTree(ctx)
	if err != nil {
		return nil, err
	}
	return topCategories(tree), nil
}

// GetCategoryTree returns the full category tree, read through the category
// cache when one is configured.
func (c *Client) GetCategoryTree(ctx context.Context) ([]supplier.CategoryNode, error) {
	if c.categoryCache != nil {
		cached, err := c.categoryCache.Get(ctx)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, supplier.ErrCacheMiss) {
			c.logger.Warn("category cache read failed", zap.Error(err))
		}
	}

	var data []categoryFirst
	if err := c.call(ctx, http.MethodGet, "product/getCategory", nil, nil, &data); err != nil {
		return nil, err
	}
	tree := normalizeCategoryTree(data)

	if c.categoryCache != nil {
		if err := c.categoryCache.Put(ctx, tree, c.cfg.CategoryCacheTTL); err != nil {
			c.logger.Warn("category cache write failed", zap.Error(err))
		}
	}
	return tree, nil
}

// GetVariants returns the variants of a product.
func (c *Client) GetVariants(ctx context.Context, productID string) ([]supplier.Variant, error) {
	if productID == "" {
		return nil, supplier.ErrInvalidProductID
	}
	query := url.Values{}
	query.Set("pid", productID)
	var data []platformVariant
	if err := c.call(ctx, http.MethodGet, "product/variant/query", query, nil, &data); err != nil {
		return nil, err
	}
	return normalizeVariants(data), nil
}

// ---------------------------------------------------------------------------
// Inventory Operations
// ---------------------------------------------------------------------------

// InventoryByVariant returns a live stock snapshot for a variant. Inventory
// reads never touch the cache; correctness depends on the data being live.
func (c *Client) InventoryByVariant(ctx context.Context, variantID string) (*supplier.InventorySnapshot, error) {
	if variantID == "" {
		return nil, supplier.ErrInvalidVariantID
	}
	query := url.Values{}
	query.Set("vid", variantID)
	var rows []platformStock
	if err := c.call(ctx, http.MethodGet, "product/stock/queryByVid", query, nil, &rows); err != nil {
		return nil, err
	}
	snapshot := normalizeStock(rows, c.clock())
	if snapshot.VariantID == "" {
		snapshot.VariantID = variantID
	}
	return &snapshot, nil
}

// InventoryBySKU returns a live stock snapshot for a SKU, uncached.
func (c *Client) InventoryBySKU(ctx context.Context, sku string) (*supplier.InventorySnapshot, error) {
	if sku == "" {
		return nil, supplier.ErrInvalidSKU
	}
	query := url.Values{}
	query.Set("sku", sku)
	var rows []platformStock
	if err := c.call(ctx, http.MethodGet, "product/stock/queryBySku", query, nil, &rows); err != nil {
		return nil, err
	}
	snapshot := normalizeStock(rows, c.clock())
	if snapshot.SKU == "" {
		snapshot.SKU = sku
	}
	return &snapshot, nil
}

// ---------------------------------------------------------------------------
// Order Operations
// ---------------------------------------------------------------------------

// createOrderData is the payload returned by shopping/order/createOrderV2.
type createOrderData struct {
	OrderID string `json:"orderId"`
}

// CreateOrder places an order with the platform. When the request carries no
// order number one is assigned, so the caller always gets an idempotency
// handle back.
func (c *Client) CreateOrder(ctx context.Context, req supplier.CreateOrderRequest) (*supplier.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.OrderNumber == "" {
		req.OrderNumber = uuid.NewString()
	}

	body := createOrderRequest{
		OrderNumber:          req.OrderNumber,
		ShippingZip:          req.ZipCode,
		ShippingCountryCode:  req.CountryCode,
		ShippingProvince:     req.Province,
		ShippingCity:         req.City,
		ShippingAddress:      req.Address,
		ShippingCustomerName: req.CustomerName,
		ShippingPhone:        req.Phone,
		Remark:               req.Note,
		Products:             make([]orderProduct, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		body.Products = append(body.Products, orderProduct{Vid: item.VariantID, Quantity: item.Quantity})
	}

	var data createOrderData
	if err := c.call(ctx, http.MethodPost, "shopping/order/createOrderV2", nil, body, &data); err != nil {
		return nil, err
	}
	if data.OrderID == "" {
		return nil, fmt.Errorf("%w: create order returned no order id", supplier.ErrMalformedResponse)
	}

	c.logger.Info("platform order created",
		zap.String("orderId", data.OrderID),
		zap.String("orderNumber", req.OrderNumber),
	)
	return &supplier.Order{
		ID:          data.OrderID,
		OrderNumber: req.OrderNumber,
		Status:      supplier.OrderStatusCreated,
		CreatedAt:   c.clock(),
	}, nil
}

// GetOrder returns the current state of one platform order.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*supplier.Order, error) {
	if orderID == "" {
		return nil, supplier.ErrInvalidOrderID
	}
	query := url.Values{}
	query.Set("orderId", orderID)
	var data platformOrder
	if err := c.call(ctx, http.MethodGet, "shopping/order/getOrderDetail", query, nil, &data); err != nil {
		return nil, err
	}
	order := normalizeOrder(&data)
	return &order, nil
}

// ListOrders returns one page of the account's platform orders.
func (c *Client) ListOrders(ctx context.Context, req supplier.OrderListRequest) (*supplier.OrderList, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("pageNum", strconv.Itoa(req.PageNum))
	query.Set("pageSize", strconv.Itoa(req.PageSize))
	if req.Status != "" {
		query.Set("status", req.Status.String())
	}
	var data orderListData
	if err := c.call(ctx, http.MethodGet, "shopping/order/list", query, nil, &data); err != nil {
		return nil, err
	}

	list := supplier.OrderList{
		Orders:       make([]supplier.Order, 0, len(data.List)),
		TotalRecords: data.Total,
		PageNum:      data.PageNum,
		PageSize:     data.PageSize,
	}
	for i := range data.List {
		list.Orders = append(list.Orders, normalizeOrder(&data.List[i]))
	}
	if list.PageNum == 0 {
		list.PageNum = req.PageNum
	}
	if list.PageSize == 0 {
		list.PageSize = req.PageSize
	}
	return &list, nil
}
