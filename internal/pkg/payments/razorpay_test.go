package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*RazorpayClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &RazorpayClient{
		KeyID:      "rzp_test_key",
		KeySecret:  "rzp_test_secret",
		APIBaseURL: srv.URL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}, srv
}

func TestRazorpayCreateOrder(t *testing.T) {
	var gotAuthUser, gotPath string
	var gotBody CreateOrderParams

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuthUser, _, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(GatewayOrder{
			ID:       "order_test1",
			Amount:   50000,
			Currency: "INR",
			Receipt:  gotBody.Receipt,
			Status:   "created",
		})
	})

	order, err := client.CreateOrder(context.Background(), CreateOrderParams{
		Amount:   50000,
		Currency: "INR",
		Receipt:  "rcpt_abc",
		Notes:    map[string]string{"purpose": "membership"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/orders", gotPath)
	assert.Equal(t, "rzp_test_key", gotAuthUser)
	assert.Equal(t, int64(50000), gotBody.Amount)
	assert.Equal(t, "order_test1", order.ID)
	assert.Equal(t, "rcpt_abc", order.Receipt)
}

func TestRazorpayCreateOrder_Validation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("gateway must not be called for an invalid amount")
	})

	_, err := client.CreateOrder(context.Background(), CreateOrderParams{Amount: 0})
	assert.Error(t, err)
}

func TestRazorpayCreatePlan(t *testing.T) {
	var gotBody map[string]interface{}

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/plans", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(GatewayPlan{ID: "plan_test1", Period: "yearly", Interval: 1})
	})

	plan, err := client.CreatePlan(context.Background(), CreatePlanParams{
		Period: "yearly",
		Name:   "Yearly membership",
		Amount: 120000,
	})
	require.NoError(t, err)

	assert.Equal(t, "plan_test1", plan.ID)
	// Interval defaults to 1 and the item block carries name and amount.
	assert.Equal(t, float64(1), gotBody["interval"])
	item, ok := gotBody["item"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Yearly membership", item["name"])
	assert.Equal(t, float64(120000), item["amount"])
}

func TestRazorpaySubscriptionLifecycleCalls(t *testing.T) {
	var paths []string
	var bodies []map[string]interface{}

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	ctx := context.Background()
	require.NoError(t, client.CancelSubscription(ctx, "sub_1", true))
	require.NoError(t, client.PauseSubscription(ctx, "sub_1"))
	require.NoError(t, client.ResumeSubscription(ctx, "sub_1"))

	require.Equal(t, []string{
		"/subscriptions/sub_1/cancel",
		"/subscriptions/sub_1/pause",
		"/subscriptions/sub_1/resume",
	}, paths)
	assert.Equal(t, float64(1), bodies[0]["cancel_at_cycle_end"])
	assert.Equal(t, "now", bodies[1]["pause_at"])
	assert.Equal(t, "now", bodies[2]["resume_at"])

	assert.Error(t, client.CancelSubscription(ctx, "", false))
}

func TestRazorpayGatewayError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Order amount less than minimum"}}`))
	})

	_, err := client.CreateOrder(context.Background(), CreateOrderParams{Amount: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Order amount less than minimum")
}

func TestRazorpayMissingCredentials(t *testing.T) {
	client := &RazorpayClient{HTTPClient: http.DefaultClient, APIBaseURL: "http://localhost:0"}

	_, err := client.CreateOrder(context.Background(), CreateOrderParams{Amount: 100})
	assert.Error(t, err)
}
