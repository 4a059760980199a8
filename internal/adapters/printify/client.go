package printify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
)

// Client talks to the Printify REST API for one shop.
type Client struct {
	baseURL    string
	shopID     string
	token      string
	httpClient *http.Client
}

var (
	_ portssvc.CatalogProvider     = (*Client)(nil)
	_ portssvc.FulfillmentProvider = (*Client)(nil)
)

func NewClient(baseURL string, shopID string, token string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		shopID:     shopID,
		token:      token,
		httpClient: httpClient,
	}
}

type productResponse struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Variants []variantResponse `json:"variants"`
	Images   []imageResponse   `json:"images"`
}

type variantResponse struct {
	ID          int64  `json:"id"`
	SKU         string `json:"sku"`
	Title       string `json:"title"`
	Price       int64  `json:"price"`
	IsEnabled   bool   `json:"is_enabled"`
	IsAvailable bool   `json:"is_available"`
}

type imageResponse struct {
	Src        string  `json:"src"`
	VariantIDs []int64 `json:"variant_ids"`
	Position   string  `json:"position"`
	IsDefault  bool    `json:"is_default"`
}

// GetProductCatalog fetches a product with its variants and mockup images.
// Prices come back in cents.
func (c *Client) GetProductCatalog(ctx context.Context, externalProductID string) (*domain.RemoteProduct, error) {
	var resp productResponse
	path := fmt.Sprintf("/shops/%s/products/%s.json", c.shopID, externalProductID)
	if err := c.do(ctx, "get_product", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	out := &domain.RemoteProduct{ExternalID: resp.ID, Title: resp.Title}
	for _, v := range resp.Variants {
		out.Variants = append(out.Variants, domain.RemoteVariant{
			ExternalID:  strconv.FormatInt(v.ID, 10),
			Title:       v.Title,
			SKU:         v.SKU,
			Price:       decimal.New(v.Price, -2),
			IsAvailable: v.IsAvailable,
			IsEnabled:   v.IsEnabled,
		})
	}
	for _, img := range resp.Images {
		ids := make([]string, 0, len(img.VariantIDs))
		for _, id := range img.VariantIDs {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		out.Images = append(out.Images, domain.RemoteImage{
			Src:               img.Src,
			Position:          img.Position,
			IsDefault:         img.IsDefault,
			VariantExternalID: ids,
		})
	}
	return out, nil
}

type lineItem struct {
	ProductID string `json:"product_id"`
	VariantID int64  `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type addressTo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Country   string `json:"country"`
	Region    string `json:"region"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
}

type orderRequest struct {
	ExternalID               string     `json:"external_id,omitempty"`
	Label                    string     `json:"label,omitempty"`
	LineItems                []lineItem `json:"line_items"`
	ShippingMethod           int        `json:"shipping_method,omitempty"`
	SendShippingNotification bool       `json:"send_shipping_notification"`
	AddressTo                addressTo  `json:"address_to"`
}

func buildOrderRequest(req domain.FulfillmentRequest) (orderRequest, error) {
	out := orderRequest{
		ExternalID: req.ExternalOrderID,
		AddressTo: addressTo{
			FirstName: req.Address.FirstName,
			LastName:  req.Address.LastName,
			Email:     req.Address.Email,
			Phone:     req.Address.Phone,
			Country:   req.Address.Country,
			Region:    req.Address.Region,
			Address1:  req.Address.Address1,
			Address2:  req.Address.Address2,
			City:      req.Address.City,
			Zip:       req.Address.Zip,
		},
	}
	for _, l := range req.Lines {
		vid, err := strconv.ParseInt(l.ExternalVariantID, 10, 64)
		if err != nil {
			return out, fmt.Errorf("%w: printify variant id %q is not numeric", apperrors.ErrValidation, l.ExternalVariantID)
		}
		out.LineItems = append(out.LineItems, lineItem{ProductID: l.ExternalProductID, VariantID: vid, Quantity: l.Quantity})
	}
	return out, nil
}

// SubmitOrder creates a Printify order for a paid checkout and returns its id.
func (c *Client) SubmitOrder(ctx context.Context, req domain.FulfillmentRequest) (string, error) {
	body, err := buildOrderRequest(req)
	if err != nil {
		return "", err
	}
	body.Label = req.ExternalOrderID
	body.ShippingMethod = 1
	body.SendShippingNotification = true

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, "create_order", http.MethodPost, fmt.Sprintf("/shops/%s/orders.json", c.shopID), body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", apperrors.NewRemoteError("printify create_order", fmt.Errorf("response carried no order id"))
	}
	return resp.ID, nil
}

// QuoteShipping asks Printify what shipping the lines would cost.
func (c *Client) QuoteShipping(ctx context.Context, req domain.FulfillmentRequest) (*domain.ShippingQuote, error) {
	body, err := buildOrderRequest(req)
	if err != nil {
		return nil, err
	}
	body.ExternalID = ""

	var resp struct {
		Standard int64  `json:"standard"`
		Express  *int64 `json:"express"`
	}
	if err := c.do(ctx, "calculate_shipping", http.MethodPost, fmt.Sprintf("/shops/%s/orders/shipping.json", c.shopID), body, &resp); err != nil {
		return nil, err
	}
	return &domain.ShippingQuote{StandardCents: resp.Standard, ExpressCents: resp.Express}, nil
}

func (c *Client) do(ctx context.Context, operation string, method string, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode printify %s request: %w", operation, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build printify %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewRemoteError("printify "+operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return apperrors.NewRemoteError("printify "+operation, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: printify %s %s", apperrors.ErrNotFound, operation, path)
	case resp.StatusCode >= 300:
		return apperrors.NewRemoteError("printify "+operation, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(raw, 512)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewRemoteError("printify "+operation, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
