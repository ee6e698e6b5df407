package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// InvoiceLine mirrors one order line in a gateway invoice request.
type InvoiceLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Amount   int64  `json:"amount"`
}

type InvoiceRequest struct {
	Reference   string        `json:"reference"`
	Amount      int64         `json:"amount"`
	Currency    string        `json:"currency"`
	Description string        `json:"description"`
	Phone       string        `json:"phone"`
	CallbackURL string        `json:"callback_url"`
	Lines       []InvoiceLine `json:"lines"`
}

// InvoiceSession is the gateway's answer to a created invoice: a token
// identifying it and the URL the customer is redirected to.
type InvoiceSession struct {
	Token      string `json:"token"`
	PaymentURL string `json:"payment_url"`
}

type InvoiceStatus struct {
	Token      string `json:"token"`
	Status     string `json:"status"`
	ReceiptURL string `json:"receipt_url"`
	TxnCode    string `json:"txn_code"`
}

// Gateway is the mobile-money aggregator surface. Webhook handling
// re-verifies through VerifyInvoice instead of trusting the callback
// payload.
type Gateway interface {
	CreateInvoice(req InvoiceRequest) (*InvoiceSession, error)
	VerifyInvoice(token string) (*InvoiceStatus, error)
}

// MobileMoneyClient talks to the aggregator over HTTPS, signing each
// request body with HMAC-SHA256 keyed by the mode-selected master key.
// There is no retry or circuit breaker, only the client timeout.
type MobileMoneyClient struct {
	http     *resty.Client
	baseURL  string
	appToken string
	secret   []byte
}

// NewMobileMoneyClientFromEnv picks the test or live key pair according
// to GATEWAY_MODE.
func NewMobileMoneyClientFromEnv() *MobileMoneyClient {
	mode := os.Getenv("GATEWAY_MODE")
	suffix := "_TEST"
	if mode == "live" {
		suffix = "_LIVE"
	}
	return &MobileMoneyClient{
		http:     resty.New().SetTimeout(30 * time.Second),
		baseURL:  os.Getenv("GATEWAY_BASE_URL"),
		appToken: os.Getenv("GATEWAY_APP_TOKEN" + suffix),
		secret:   []byte(os.Getenv("GATEWAY_APP_SECRET" + suffix)),
	}
}

func (c *MobileMoneyClient) sign(body []byte) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *MobileMoneyClient) CreateInvoice(req InvoiceRequest) (*InvoiceSession, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode invoice request: %w", err)
	}

	resp, err := c.http.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-App-Token", c.appToken).
		SetHeader("X-Signature", c.sign(body)).
		SetBody(body).
		Post(c.baseURL + "/api/v1/invoices")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		return nil, fmt.Errorf("gateway invoice request failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var session InvoiceSession
	if err := json.Unmarshal(resp.Body(), &session); err != nil {
		return nil, fmt.Errorf("failed to parse invoice response: %w", err)
	}
	if session.Token == "" || session.PaymentURL == "" {
		return nil, fmt.Errorf("incomplete invoice response: %s", string(resp.Body()))
	}
	return &session, nil
}

func (c *MobileMoneyClient) VerifyInvoice(token string) (*InvoiceStatus, error) {
	resp, err := c.http.R().
		SetHeader("Accept", "application/json").
		SetHeader("X-App-Token", c.appToken).
		Get(c.baseURL + "/api/v1/invoices/" + token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("gateway status request failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var status InvoiceStatus
	if err := json.Unmarshal(resp.Body(), &status); err != nil {
		return nil, fmt.Errorf("failed to parse invoice status: %w", err)
	}
	return &status, nil
}
