package dropship

import "encoding/json"

// ---------------------------------------------------------------------------
// Common Platform Response Types
// ---------------------------------------------------------------------------

// platformResponse is the envelope every platform endpoint wraps its payload in.
// A call can fail inside an HTTP 200: code carries the application-level result.
type platformResponse struct {
	Code      int             `json:"code"`
	Result    bool            `json:"result"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
}

const (
	// codeSuccess is the application-level success code
	codeSuccess = 200
	// codeTooManyRequests is the in-body rate-limit signal, treated the same
	// as HTTP 429
	codeTooManyRequests = 1600200
)

// IsSuccess returns true if the response indicates success.
func (r *platformResponse) IsSuccess() bool {
	return r.Result && r.Code == codeSuccess
}

// IsRateLimited returns true if the body carries the too-many-requests code.
func (r *platformResponse) IsRateLimited() bool {
	return r.Code == codeTooManyRequests
}

// ---------------------------------------------------------------------------
// Authentication Types
// ---------------------------------------------------------------------------

// accessTokenRequest is the body for authentication/getAccessToken.
type accessTokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// refreshTokenRequest is the body for authentication/refreshAccessToken.
type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// tokenData is the payload both authentication endpoints return.
// Expiry timestamps are absolute, in the platform's date layout.
type tokenData struct {
	AccessToken            string `json:"accessToken"`
	AccessTokenExpiryDate  string `json:"accessTokenExpiryDate"`
	RefreshToken           string `json:"refreshToken"`
	RefreshTokenExpiryDate string `json:"refreshTokenExpiryDate"`
}

// platformTimeLayout is the timestamp layout used in platform payloads.
const platformTimeLayout = "2006-01-02T15:04:05-07:00"

// ---------------------------------------------------------------------------
// Product Types
// ---------------------------------------------------------------------------

// productListData is the payload of product/listV2: a paginated envelope whose
// content is a list of groups, each holding its own product list.
type productListData struct {
	TotalRecords int64          `json:"totalRecords"`
	PageNum      int            `json:"pageNum"`
	PageSize     int            `json:"pageSize"`
	Content      []productGroup `json:"content,omitempty"`
}

// productGroup is one group inside the search payload.
type productGroup struct {
	ProductList []platformProduct `json:"productList,omitempty"`
}

// platformProduct is a product as the platform returns it. SellPrice is
// numeric-as-string and may be a range of the form "low -- high".
type platformProduct struct {
	Pid           string `json:"pid"`
	ProductSku    string `json:"productSku"`
	ProductNameEn string `json:"productNameEn"`
	ProductImage  string `json:"productImage,omitempty"`
	SellPrice     string `json:"sellPrice"`
	CategoryID    string `json:"categoryId,omitempty"`
	CategoryName  string `json:"categoryName,omitempty"`
	Description   string `json:"description,omitempty"`
	SourceFrom    string `json:"sourceFrom,omitempty"`
	CreateTime    string `json:"createTime,omitempty"`
}

// platformVariant is a variant as returned by product/variant/query.
type platformVariant struct {
	Vid          string `json:"vid"`
	Pid          string `json:"pid"`
	VariantSku   string `json:"variantSku"`
	VariantNameEn string `json:"variantNameEn,omitempty"`
	VariantSellPrice string `json:"variantSellPrice"`
	VariantWeight int64  `json:"variantWeight,omitempty"`
	VariantImage  string `json:"variantImage,omitempty"`
}

// ---------------------------------------------------------------------------
// Category Types
// ---------------------------------------------------------------------------

// categoryFirst is one first-level node of product/getCategory's three-level tree.
type categoryFirst struct {
	CategoryFirstID   string           `json:"categoryFirstId"`
	CategoryFirstName string           `json:"categoryFirstName"`
	CategoryFirstList []categorySecond `json:"categoryFirstList,omitempty"`
}

type categorySecond struct {
	CategorySecondID   string          `json:"categorySecondId"`
	CategorySecondName string          `json:"categorySecondName"`
	CategorySecondList []categoryThird `json:"categorySecondList,omitempty"`
}

type categoryThird struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
}

// ---------------------------------------------------------------------------
// Inventory Types
// ---------------------------------------------------------------------------

// platformStock is one warehouse row from product/stock/queryByVid or queryBySku.
type platformStock struct {
	Vid           string `json:"vid,omitempty"`
	Sku           string `json:"sku,omitempty"`
	AreaEn        string `json:"areaEn,omitempty"`
	CountryCode   string `json:"countryCode,omitempty"`
	StorageNum    int64  `json:"storageNum"`
}

// ---------------------------------------------------------------------------
// Order Types
// ---------------------------------------------------------------------------

// createOrderRequest is the body for shopping/order/createOrderV2.
type createOrderRequest struct {
	OrderNumber   string             `json:"orderNumber"`
	ShippingZip   string             `json:"shippingZip,omitempty"`
	ShippingCountryCode string       `json:"shippingCountryCode"`
	ShippingProvince    string       `json:"shippingProvince,omitempty"`
	ShippingCity        string       `json:"shippingCity,omitempty"`
	ShippingAddress     string       `json:"shippingAddress"`
	ShippingCustomerName string      `json:"shippingCustomerName"`
	ShippingPhone       string       `json:"shippingPhone,omitempty"`
	Remark              string       `json:"remark,omitempty"`
	Products            []orderProduct `json:"products"`
}

// orderProduct is one line item in a create-order request.
type orderProduct struct {
	Vid      string `json:"vid"`
	Quantity int    `json:"quantity"`
}

// platformOrder is an order as returned by the order endpoints.
type platformOrder struct {
	OrderID        string `json:"orderId"`
	OrderNum       string `json:"orderNum"`
	OrderStatus    string `json:"orderStatus"`
	ProductAmount  string `json:"productAmount,omitempty"`
	PostageAmount  string `json:"postageAmount,omitempty"`
	OrderAmount    string `json:"orderAmount,omitempty"`
	TrackNumber    string `json:"trackNumber,omitempty"`
	LogisticName   string `json:"logisticName,omitempty"`
	CreateDate     string `json:"createDate,omitempty"`
	PaymentDate    string `json:"paymentDate,omitempty"`
}

// orderListData is the payload of shopping/order/list.
type orderListData struct {
	Total    int64           `json:"total"`
	PageNum  int             `json:"pageNum"`
	PageSize int             `json:"pageSize"`
	List     []platformOrder `json:"list,omitempty"`
}
