package dropship

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchlab/backend/internal/domain/supplier"
	"github.com/launchlab/backend/internal/infrastructure/cache"
)

// ---------------------------------------------------------------------------
// Test doubles
// ---------------------------------------------------------------------------

// countingProductCache records how often the client reads and writes it.
type countingProductCache struct {
	mu      sync.Mutex
	entries map[string]*supplier.Product
	gets    int32
	puts    int32
	getErr  error
}

func newCountingProductCache() *countingProductCache {
	return &countingProductCache{entries: make(map[string]*supplier.Product)}
}

func (c *countingProductCache) Get(_ context.Context, productID string) (*supplier.Product, error) {
	atomic.AddInt32(&c.gets, 1)
	if c.getErr != nil {
		return nil, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.entries[productID]; ok {
		return p, nil
	}
	return nil, supplier.ErrCacheMiss
}

func (c *countingProductCache) Put(_ context.Context, productID string, product *supplier.Product, _ time.Duration) error {
	atomic.AddInt32(&c.puts, 1)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[productID] = product
	return nil
}

// fakePlatform is an in-process stand-in for the supplier API. It issues a
// single long-lived token and counts hits per endpoint.
type fakePlatform struct {
	mux    *http.ServeMux
	server *httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

func newFakePlatform() *fakePlatform {
	p := &fakePlatform{mux: http.NewServeMux(), hits: make(map[string]int)}
	p.handle("/authentication/getAccessToken", func(w http.ResponseWriter, r *http.Request) {
		p.writeData(w, tokenData{
			AccessToken:            "acc-test",
			AccessTokenExpiryDate:  time.Now().Add(15 * 24 * time.Hour).Format(time.RFC3339),
			RefreshToken:           "ref-test",
			RefreshTokenExpiryDate: time.Now().Add(180 * 24 * time.Hour).Format(time.RFC3339),
		})
	})
	p.server = httptest.NewServer(p.mux)
	return p
}

func (p *fakePlatform) handle(path string, fn http.HandlerFunc) {
	p.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.hits[path]++
		p.mu.Unlock()
		fn(w, r)
	})
}

func (p *fakePlatform) hitCount(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[path]
}

func (p *fakePlatform) writeData(w http.ResponseWriter, v any) {
	data, _ := json.Marshal(v)
	_ = json.NewEncoder(w).Encode(platformResponse{
		Code:      codeSuccess,
		Result:    true,
		Message:   "Success",
		Data:      data,
		RequestID: "req-test",
	})
}

func (p *fakePlatform) close() { p.server.Close() }

func (p *fakePlatform) client(t *testing.T, deps ClientDeps) *Client {
	t.Helper()
	cfg := NewConfig("ops@launchlab.dev", "k-123")
	cfg.APIBaseURL = p.server.URL
	if deps.TokenStore == nil {
		deps.TokenStore = cache.NewMemoryTokenStore()
	}
	c, err := NewClient(cfg, deps)
	require.NoError(t, err)
	return c
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNewClient_RequiresConfig(t *testing.T) {
	_, err := NewClient(nil, ClientDeps{TokenStore: cache.NewMemoryTokenStore()})
	assert.ErrorIs(t, err, supplier.ErrNotConfigured)

	_, err = NewClient(&Config{}, ClientDeps{TokenStore: cache.NewMemoryTokenStore()})
	assert.ErrorIs(t, err, supplier.ErrNotConfigured)
}

func TestNewClient_RequiresTokenStore(t *testing.T) {
	_, err := NewClient(NewConfig("ops@launchlab.dev", "k-123"), ClientDeps{})
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

func TestClient_SearchProducts(t *testing.T) {
	platform := newFakePlatform()
	defer platform.close()

	var gotQuery map[string]string
	platform.handle("/product/listV2", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"keyWord":  r.URL.Query().Get("keyWord"),
			"pageNum":  r.URL.Query().Get("pageNum"),
			"pageSize": r.URL.Query().Get("pageSize"),
		}
		platform.writeData(w, productListData{
			TotalRecords: 2,
			PageNum:      1,
			PageSize:     20,
			Content: []productGroup{
				{ProductList: []platformProduct{{Pid: "p-1", ProductNameEn: "Mug", SellPrice: "4.99 -- 9.99"}}},
				{ProductList: []platformProduct{{Pid: "p-2", ProductNameEn: "Cap", SellPrice: "7.50"}}},
			},
		})
	})

	client := platform.client(t, ClientDeps{})
	page, err := client.SearchProducts(context.Background(), supplier.SearchRequest{Keyword: "mug"})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"keyWord": "mug", "pageNum": "1", "pageSize": "20"}, gotQuery)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "p-1", page.Products[0].ID)
	assert.True(t, page.Products[0].Price.Equal(decimal.RequireFromString("4.99")))
	assert.Equal(t, "p-2", page.Products[1].ID)
	assert.Equal(t, int64(2), page.TotalRecords)
}

func TestClient_SearchProducts_InvalidPage(t *testing.T) {
	platform := newFakePlatform()
	defer platform.close()

	client := platform.client(t, ClientDeps{})
	_, err := client.SearchProducts(context.Background(), supplier.SearchRequest{PageSize: 500})
	assert.ErrorIs(t, err, supplier.ErrInvalidPage)
	assert.Equal(t, 0, platform.hitCount("/product/listV2"))
}

func TestClient_GetProduct_ReadsThroughCache(t *testing.T) {
	platform := newFakePlatform()
	defer platform.close()
	platform.handle("/product/query", func(w http.ResponseWriter, r *http.Request) {
		platform.writeData(w, platformProduct{Pid: r.URL.Query().Get("pid"), ProductNameEn: "Mug", SellPrice: "4.99"})
	})

	productCache := newCountingProductCache()
	client := platform.client(t, ClientDeps{ProductCache: productCache})

	first, err := client.GetProduct(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Mug", first.Name)
	assert.Equal(t, 1, platform.hitCount("/product/query"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&productCache.puts))

	// Second read is served from the cache; exactly one upstream fetch total.
	second, err := client.GetProduct(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, 1, platform.hitCount("/product/query"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&productCache.gets))
}

func TestClient_GetProduct_CacheFailureFallsThrough(t *testing.T) {
	platform := newFakePlatform()
	defer platform.close()
	platform.handle("/product/query", func(w http.ResponseWriter, r *http.Request) {
		platform.writeData(w, platformProduct{Pid: "p-1", ProductNameEn: "Mug", SellPrice: "4.99"})
	})

	productCache := newCountingProductCache()
	productCache.getErr = context.DeadlineExceeded // any non-miss cache failure
	client := platform.client(t, ClientDeps{ProductCache: productCache})

	product, err := client.GetProduct(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Mug", product.Name)
	assert.Equal(t, 1, platform.hitCount("/product/query"))
}

func TestClient_GetProduct_EmptyID(t *testing.T) {
	platform := newFakePlatform()
	defer platform.close()

	client := platform.client(t, ClientDeps{})
	_, err := client.GetProduct(context.Background(), "")
	assert.ErrorIs(t, err, supplier.ErrInvalidProductID)
}

func TestClient_Categories_CachedTree(t *testing.T) {
	platform := newFakePlatform()
	defer platform.close()
	platform.handle("/product/getCategory", func(w http.ResponseWriter, r *http.Request) {
		platform.writeData(w, []categoryFirst{
			{
				CategoryFirstID:   "c1",
				CategoryFirstName: "Apparel",
				CategoryFirstList: []categorySecond{{CategorySecondID: "c1-1", CategorySecondName: "Shirts"}},
			},
		})
	})

	client := platform.client(t, ClientDeps{CategoryCache: cache.NewMemoryCategoryCache()})

	tree, err := client.GetCategoryTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "Apparel", tree[0].Name)

	// Flat top level and a second tree read both come from the cache.
	top, err := client.GetCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []supplier.Category{{ID: "c1", Name: "Apparel"}}, top)
	assert.Equal(t, 1, platform.hitCount("/product/getCategory"))
}

func TestClient_GetVariants(t *testing.T) {
	platform := newFakePlatform()
	defer platform.close()
	platform.handle("/product/variant/query", func(w http.ResponseWriter, r *http.Request) {
		platform.writeData(w, []platformVariant{
			{Vid: "v-1", Pid: r.URL.Query().Get("pid"), VariantSku: "SKU-1", VariantSellPrice: "4.99"},
			{Vid: "v-2", Pid: r.URL.Query().Get("pid"), VariantSku: "SKU-2", VariantSellPrice: "5.99"},
		})
	})

	client := platform.client(t, ClientDeps{})
	variants, err := client.GetVariants(context.Background(), "p-1")

	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.Equal(t, "v-1", variants[0].ID)
	assert.Equal(t, "p-1", variants[0].ProductID)
}

// ---------------------------------------------------------------------------
// Inventory
// ---------------------------------------------------------------------------

func TestClient_Inventory_NeverCached(t *testing.T) {
	platform := newFakePlatform()
	defer platform.close()
	platform.handle("/product/stock/queryByVid", func(w http.ResponseWriter, r *http.Request) {
		platform.writeData(w, []platformStock{
			{Vid: r.URL.Query().Get("vid"), Sku: "SKU-1", AreaEn: "US Warehouse", CountryCode: "US", StorageNum: 5},
			{Vid: r.URL.Query().Get("vid"), Sku: "SKU-1", AreaEn: "CN Warehouse", CountryCode: "CN", StorageNum: 7},
		})
	})

	productCache := newCountingProductCache()
	client := platform.client(t, ClientDeps{ProductCache: productCache})

	// Every inventory read goes upstream, even with a cache configured.
	for i := 0; i < 3; i++ {
		snapshot, err := client.InventoryByVariant(context.Background(), "v-1")
		require.NoError(t, err)
		assert.Equal(t, int64(12), snapshot.Total)
		assert.Equal(t, "v-1", snapshot.VariantID)
		assert.Len(t, snapshot.Warehouses, 2)
	}
	assert.Equal(t, 3, platform.hitCount("/product/stock/queryByVid"))
	assert.Equal(t, int32(0), atomic.LoadInt32(&productCache.gets))
	assert.Equal(t, int32(0), atomic.LoadInt32(&productCache.puts))
}

func TestClient_InventoryBySKU(t *testing.T) {
	platform := newFakePlatform()
	defer platform.close()
	platform.handle("/product/stock/queryBySku", func(w http.ResponseWriter, r *http.Request) {
		platform.writeData(w, []platformStock{})
	})

	client := platform.client(t, ClientDeps{})
	snapshot, err := client.InventoryBySKU(context.Background(), "SKU-404")

	require.NoError(t, err)
	assert.Equal(t, "SKU-404", snapshot.SKU)
	assert.Equal(t, int64(0), snapshot.Total)

	_, err = client.InventoryBySKU(context.Background(), "")
	assert.ErrorIs(t, err, supplier.ErrInvalidSKU)
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

func TestClient_CreateOrder(t *testing.T) {
	platform := newFakePlatform()
	defer platform.close()

	var gotBody createOrderRequest
	platform.handle("/shopping/order/createOrderV2", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		platform.writeData(w, createOrderData{OrderID: "ord-1"})
	})

	client := platform.client(t, ClientDeps{})
	order, err := client.CreateOrder(context.Background(), supplier.CreateOrderRequest{
		OrderNumber:  "LL-0001",
		CountryCode:  "US",
		Address:      "1 Main St",
		CustomerName: "Pat Doe",
		Items:        []supplier.OrderItem{{VariantID: "v-1", Quantity: 2}},
	})

	require.NoError(t, err)
	assert.Equal(t, "ord-1", order.ID)
	assert.Equal(t, "LL-0001", order.OrderNumber)
	assert.Equal(t, supplier.OrderStatusCreated, order.Status)
	assert.Equal(t, "LL-0001", gotBody.OrderNumber)
	assert.Equal(t, "US", gotBody.ShippingCountryCode)
	require.Len(t, gotBody.Products, 1)
	assert.Equal(t, orderProduct{Vid: "v-1", Quantity: 2}, gotBody.Products[0])
}

func TestClient_CreateOrder_AssignsOrderNumber(t *testing.T) {
	platform := newFakePlatform()
	defer platform.close()
	platform.handle("/shopping/order/createOrderV2", func(w http.ResponseWriter, r *http.Request) {
		platform.writeData(w, createOrderData{OrderID: "ord-2"})
	})

	client := platform.client(t, ClientDeps{})
	order, err := client.CreateOrder(context.Background(), supplier.CreateOrderRequest{
		CountryCode:  "US",
		Address:      "1 Main St",
		CustomerName: "Pat Doe",
		Items:        []supplier.OrderItem{{VariantID: "v-1", Quantity: 1}},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, order.OrderNumber)
}

func TestClient_CreateOrder_Validation(t *testing.T) {
	platform := newFakePlatform()
	defer platform.close()

	client := platform.client(t, ClientDeps{})
	_, err := client.CreateOrder(context.Background(), supplier.CreateOrderRequest{
		CountryCode:  "US",
		Address:      "1 Main St",
		CustomerName: "Pat Doe",
	})
	assert.ErrorIs(t, err, supplier.ErrInvalidOrder)
}

func TestClient_GetOrder(t *testing.T) {
	platform := newFakePlatform()
	defer platform.close()
	platform.handle("/shopping/order/getOrderDetail", func(w http.ResponseWriter, r *http.Request) {
		platform.writeData(w, platformOrder{
			OrderID:      r.URL.Query().Get("orderId"),
			OrderNum:     "LL-0001",
			OrderStatus:  "SHIPPED",
			OrderAmount:  "12.50",
			TrackNumber:  "TRK123",
			LogisticName: "CJPacket",
		})
	})

	client := platform.client(t, ClientDeps{})
	order, err := client.GetOrder(context.Background(), "ord-1")

	require.NoError(t, err)
	assert.Equal(t, "ord-1", order.ID)
	assert.Equal(t, supplier.OrderStatusShipped, order.Status)
	assert.Equal(t, "TRK123", order.TrackingNumber)

	_, err = client.GetOrder(context.Background(), "")
	assert.ErrorIs(t, err, supplier.ErrInvalidOrderID)
}

func TestClient_ListOrders(t *testing.T) {
	platform := newFakePlatform()
	defer platform.close()
	platform.handle("/shopping/order/list", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SHIPPED", r.URL.Query().Get("status"))
		platform.writeData(w, orderListData{
			Total: 1,
			List:  []platformOrder{{OrderID: "ord-1", OrderStatus: "SHIPPED"}},
		})
	})

	client := platform.client(t, ClientDeps{})
	list, err := client.ListOrders(context.Background(), supplier.OrderListRequest{Status: supplier.OrderStatusShipped})

	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, "ord-1", list.Orders[0].ID)
	assert.Equal(t, int64(1), list.TotalRecords)
	assert.Equal(t, 1, list.PageNum)
	assert.Equal(t, 20, list.PageSize)
}

// ---------------------------------------------------------------------------
// Token reuse across operations
// ---------------------------------------------------------------------------

func TestClient_AuthenticatesOnceAcrossOperations(t *testing.T) {
	platform := newFakePlatform()
	defer platform.close()
	platform.handle("/product/query", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "acc-test", r.Header.Get(accessTokenHeader))
		platform.writeData(w, platformProduct{Pid: "p-1", ProductNameEn: "Mug", SellPrice: "4.99"})
	})

	client := platform.client(t, ClientDeps{})
	for i := 0; i < 5; i++ {
		_, err := client.GetProduct(context.Background(), "p-1")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, platform.hitCount("/authentication/getAccessToken"))
	assert.Equal(t, 5, platform.hitCount("/product/query"))
}
