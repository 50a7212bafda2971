package phone

import (
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

const defaultLookupURL = "https://identitytoolkit.googleapis.com/v1/accounts:lookup"

// Client validates phone-verification ID tokens against the provider's
// account lookup endpoint. The OTP exchange itself happens on the client;
// the backend only confirms the resulting token and records the number.
type Client struct {
	APIKey    string
	LookupURL string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a phone verification client from the environment.
func NewClientFromEnv() *Client {
	return &Client{
		APIKey:    strings.TrimSpace(env.GetEnv("PHONE_VERIFY_API_KEY", "")),
		LookupURL: strings.TrimSpace(env.GetEnv("PHONE_VERIFY_LOOKUP_URL", defaultLookupURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type lookupRequest struct {
	IDToken string `json:"idToken"`
}

type lookupResponse struct {
	Users []struct {
		LocalID     string `json:"localId"`
		PhoneNumber string `json:"phoneNumber"`
	} `json:"users"`
}

// VerifyIDToken confirms a provider-issued ID token and returns the verified
// phone number it is bound to.
func (c *Client) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", errors.New("PHONE_VERIFY_API_KEY is not configured")
	}
	if strings.TrimSpace(idToken) == "" {
		return "", errors.New("id token is required")
	}

	body, err := json.Marshal(lookupRequest{IDToken: strings.TrimSpace(idToken)})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", c.LookupURL, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("phone verification lookup failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("phone verification lookup returned status %d", resp.StatusCode)
	}

	var out lookupResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("invalid lookup response: %w", err)
	}
	if len(out.Users) == 0 || strings.TrimSpace(out.Users[0].PhoneNumber) == "" {
		return "", errors.New("token is not bound to a verified phone number")
	}

	return out.Users[0].PhoneNumber, nil
}
