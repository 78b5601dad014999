// Package payments wraps the Flutterwave v3 REST API. The rest of the
// application only sees the Provider interface: open a hosted charge,
// verify a transaction by reference.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// StatusSuccessful is the only provider status that activates a
// subscription; every other status is a final failure, not a fault.
const StatusSuccessful = "successful"

type ChargeRequest struct {
	TxRef       string `json:"tx_ref"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	RedirectURL string `json:"redirect_url"`
	Customer    struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"customer"`
	Customizations struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"customizations"`
}

type Charge struct {
	// Link is the hosted payment page the user is redirected to.
	Link string
}

type Verification struct {
	Status   string
	TxRef    string
	Amount   int64
	Currency string
}

// Provider is the payment boundary the subscription service talks to.
type Provider interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	VerifyTransaction(ctx context.Context, txRef string) (*Verification, error)
}

type Client struct {
	SecretKey string
	BaseURL   string
	Client    *http.Client
}

func New(secretKey string) *Client {
	return &Client{
		SecretKey: secretKey,
		BaseURL:   "https://api.flutterwave.com/v3",
		Client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type chargeResp struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var cr chargeResp
	if err := c.do(ctx, http.MethodPost, "/payments", body, &cr); err != nil {
		return nil, err
	}
	if cr.Status != "success" || cr.Data.Link == "" {
		return nil, fmt.Errorf("flutterwave charge rejected: %s", cr.Message)
	}
	return &Charge{Link: cr.Data.Link}, nil
}

type verifyResp struct {
	Status string `json:"status"`
	Data   struct {
		Status   string  `json:"status"`
		TxRef    string  `json:"tx_ref"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	} `json:"data"`
}

func (c *Client) VerifyTransaction(ctx context.Context, txRef string) (*Verification, error) {
	path := "/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(txRef)

	var vr verifyResp
	if err := c.do(ctx, http.MethodGet, path, nil, &vr); err != nil {
		return nil, err
	}
	return &Verification{
		Status:   vr.Data.Status,
		TxRef:    vr.Data.TxRef,
		Amount:   int64(vr.Data.Amount),
		Currency: vr.Data.Currency,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, dest any) error {
	var rdr *bytes.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("flutterwave status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
