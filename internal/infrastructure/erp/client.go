// Package erp implements the gateway to the external ERP over its JSON
// HTTP API. Transport failures surface as integration_unavailable so
// callers can retry; a 404 on the pull key maps to not_found.
package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/unicef/etools-sub003/internal/domain/integration"
	"github.com/unicef/etools-sub003/internal/domain/shared"
	"github.com/unicef/etools-sub003/internal/infrastructure/config"
)

// maxResponseSize caps ERP response bodies (10MB).
const maxResponseSize = 10 * 1024 * 1024

// Client talks to the upstream ERP.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.ERPConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type purchaseOrderPayload struct {
	OrderNumber       string   `json:"purchase_order"`
	VendorNumber      string   `json:"vendor_number"`
	VendorName        string   `json:"vendor_name"`
	VendorEmail       string   `json:"vendor_email"`
	VendorPhone       string   `json:"vendor_phone"`
	VendorCountry     string   `json:"vendor_country"`
	ContractStartDate string   `json:"contract_start_date"`
	ContractEndDate   string   `json:"contract_end_date"`
	ItemNumbers       []string `json:"po_items"`
}

type tpmPartnerPayload struct {
	VendorNumber string `json:"vendor_number"`
	Name         string `json:"vendor_name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number"`
	Address      string `json:"street_address"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Blocked      bool   `json:"blocked"`
	Deleted      bool   `json:"deleted_flag"`
}

// FetchPurchaseOrder pulls one purchase order by its order number.
func (c *Client) FetchPurchaseOrder(ctx context.Context, orderNumber string) (*integration.ERPPurchaseOrder, error) {
	var payload purchaseOrderPayload
	endpoint := fmt.Sprintf("purchase-orders/%s", url.PathEscape(orderNumber))
	if err := c.get(ctx, endpoint, "purchase order", &payload); err != nil {
		return nil, err
	}
	po := &integration.ERPPurchaseOrder{
		OrderNumber:   payload.OrderNumber,
		VendorNumber:  payload.VendorNumber,
		VendorName:    payload.VendorName,
		VendorEmail:   payload.VendorEmail,
		VendorPhone:   payload.VendorPhone,
		VendorCountry: payload.VendorCountry,
		ItemNumbers:   payload.ItemNumbers,
	}
	po.ContractStartDate = parseDate(payload.ContractStartDate)
	po.ContractEndDate = parseDate(payload.ContractEndDate)
	return po, nil
}

// FetchTPMPartner pulls one vendor record by its vendor number.
func (c *Client) FetchTPMPartner(ctx context.Context, vendorNumber string) (*integration.ERPTPMPartner, error) {
	var payload tpmPartnerPayload
	endpoint := fmt.Sprintf("partners/%s", url.PathEscape(vendorNumber))
	if err := c.get(ctx, endpoint, "tpm partner", &payload); err != nil {
		return nil, err
	}
	return &integration.ERPTPMPartner{
		VendorNumber: payload.VendorNumber,
		Name:         payload.Name,
		Email:        payload.Email,
		PhoneNumber:  payload.PhoneNumber,
		Address:      payload.Address,
		City:         payload.City,
		Country:      payload.Country,
		Blocked:      payload.Blocked,
		Deleted:      payload.Deleted,
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint, resource string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", c.baseURL, endpoint), nil)
	if err != nil {
		return shared.NewIntegrationUnavailable("erp")
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("erp request failed",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return shared.NewIntegrationUnavailable("erp")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return shared.NewNotFound(resource)
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("erp returned unexpected status",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode))
		return shared.NewIntegrationUnavailable("erp")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return shared.NewIntegrationUnavailable("erp")
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Warn("erp response not parseable",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return shared.NewIntegrationUnavailable("erp")
	}
	return nil
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}

var _ integration.ERPGateway = (*Client)(nil)
