package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/psfhyd/memberportal/internal/pkg/env"
)

const defaultRazorpayAPIBaseURL = "https://api.razorpay.com/v1"

// RazorpayClient talks to the payment gateway's REST API. Requests carry
// HTTP basic auth with the key id/secret pair.
type RazorpayClient struct {
	KeyID      string
	KeySecret  string
	APIBaseURL string

	HTTPClient *http.Client
}

// Gateway is the remote-side surface the reconciliation service needs.
// RazorpayClient is the production implementation; tests substitute fakes.
type Gateway interface {
	CreateOrder(ctx context.Context, p CreateOrderParams) (*GatewayOrder, error)
	CreatePlan(ctx context.Context, p CreatePlanParams) (*GatewayPlan, error)
	CreateSubscription(ctx context.Context, p CreateSubscriptionParams) (*GatewaySubscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string, atCycleEnd bool) error
	PauseSubscription(ctx context.Context, subscriptionID string) error
	ResumeSubscription(ctx context.Context, subscriptionID string) error
}

// CreateOrderParams describes a gateway order. Amount is in paise.
type CreateOrderParams struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// GatewayOrder is the gateway's order representation.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreatePlanParams describes a recurring price point on the gateway.
type CreatePlanParams struct {
	Period   string
	Interval int
	Name     string
	Amount   int64
	Currency string
}

// GatewayPlan is the gateway's plan representation.
type GatewayPlan struct {
	ID       string `json:"id"`
	Period   string `json:"period"`
	Interval int    `json:"interval"`
}

// CreateSubscriptionParams starts a recurring agreement on a plan.
type CreateSubscriptionParams struct {
	PlanID     string            `json:"plan_id"`
	TotalCount int               `json:"total_count"`
	Notes      map[string]string `json:"notes,omitempty"`
}

// GatewaySubscription is the gateway's subscription representation.
type GatewaySubscription struct {
	ID         string `json:"id"`
	PlanID     string `json:"plan_id"`
	Status     string `json:"status"`
	TotalCount int    `json:"total_count"`
	ShortURL   string `json:"short_url"`
}

// NewRazorpayClientFromEnv builds a gateway client from RAZORPAY_* settings.
func NewRazorpayClientFromEnv() *RazorpayClient {
	return &RazorpayClient{
		KeyID:      strings.TrimSpace(env.GetEnv("RAZORPAY_KEY_ID", "")),
		KeySecret:  strings.TrimSpace(env.GetEnv("RAZORPAY_KEY_SECRET", "")),
		APIBaseURL: strings.TrimRight(env.GetEnv("RAZORPAY_API_BASE_URL", defaultRazorpayAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// CreateOrder creates a remote order for a one-off payment.
func (c *RazorpayClient) CreateOrder(ctx context.Context, p CreateOrderParams) (*GatewayOrder, error) {
	if p.Amount <= 0 {
		return nil, errors.New("order amount must be positive")
	}
	if strings.TrimSpace(p.Currency) == "" {
		p.Currency = "INR"
	}

	var out GatewayOrder
	if err := c.doJSON(ctx, http.MethodPost, "/orders", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePlan registers a recurring price point.
func (c *RazorpayClient) CreatePlan(ctx context.Context, p CreatePlanParams) (*GatewayPlan, error) {
	if p.Interval <= 0 {
		p.Interval = 1
	}
	if strings.TrimSpace(p.Currency) == "" {
		p.Currency = "INR"
	}

	body := map[string]interface{}{
		"period":   p.Period,
		"interval": p.Interval,
		"item": map[string]interface{}{
			"name":     p.Name,
			"amount":   p.Amount,
			"currency": p.Currency,
		},
	}

	var out GatewayPlan
	if err := c.doJSON(ctx, http.MethodPost, "/plans", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSubscription starts a recurring agreement on an existing plan.
func (c *RazorpayClient) CreateSubscription(ctx context.Context, p CreateSubscriptionParams) (*GatewaySubscription, error) {
	if strings.TrimSpace(p.PlanID) == "" {
		return nil, errors.New("plan id is required")
	}

	var out GatewaySubscription
	if err := c.doJSON(ctx, http.MethodPost, "/subscriptions", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelSubscription cancels the remote agreement, optionally at cycle end.
func (c *RazorpayClient) CancelSubscription(ctx context.Context, subscriptionID string, atCycleEnd bool) error {
	if strings.TrimSpace(subscriptionID) == "" {
		return errors.New("subscription id is required")
	}
	body := map[string]interface{}{"cancel_at_cycle_end": boolToInt(atCycleEnd)}
	return c.doJSON(ctx, http.MethodPost, "/subscriptions/"+subscriptionID+"/cancel", body, nil)
}

// PauseSubscription pauses recurring charges at the end of the current cycle.
func (c *RazorpayClient) PauseSubscription(ctx context.Context, subscriptionID string) error {
	if strings.TrimSpace(subscriptionID) == "" {
		return errors.New("subscription id is required")
	}
	body := map[string]interface{}{"pause_at": "now"}
	return c.doJSON(ctx, http.MethodPost, "/subscriptions/"+subscriptionID+"/pause", body, nil)
}

// ResumeSubscription resumes a paused agreement.
func (c *RazorpayClient) ResumeSubscription(ctx context.Context, subscriptionID string) error {
	if strings.TrimSpace(subscriptionID) == "" {
		return errors.New("subscription id is required")
	}
	body := map[string]interface{}{"resume_at": "now"}
	return c.doJSON(ctx, http.MethodPost, "/subscriptions/"+subscriptionID+"/resume", body, nil)
}

type gatewayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *RazorpayClient) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	if strings.TrimSpace(c.KeyID) == "" || strings.TrimSpace(c.KeySecret) == "" {
		return errors.New("RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET are not configured")
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.APIBaseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.KeyID, c.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var gwErr gatewayErrorResponse
		if json.Unmarshal(raw, &gwErr) == nil && gwErr.Error.Description != "" {
			return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, gwErr.Error.Description)
		}
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid gateway response: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
