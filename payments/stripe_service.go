package payments

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	config "github.com/eadflow/academy_backend/configs"
)

type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

func stripeAPIBase() string {
	base := config.Config("STRIPE_API_BASE_URL")
	if base == "" {
		base = "https://api.stripe.com"
	}
	return base
}

// CreateCheckoutSession opens a Stripe Checkout session for the given
// amount. The user and course ids go into session metadata here, on the
// server, and settlement later trusts only that metadata.
func CreateCheckoutSession(amountCents int64, currency, description, userID string, courseIDs []string, successURL, cancelURL string) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	form.Set("line_items[0][price_data][currency]", currency)
	form.Set("line_items[0][price_data][product_data][name]", description)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(amountCents, 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("metadata[user_id]", userID)
	form.Set("metadata[course_ids]", strings.Join(courseIDs, ","))

	req, err := http.NewRequest("POST", fmt.Sprintf("%s/v1/checkout/sessions", stripeAPIBase()), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(config.Config("STRIPE_SECRET_KEY"), "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to create checkout session: %s", string(respBody))
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// RetrieveCheckoutSession fetches the provider's view of a session.
// Settlement decisions are made only against this object, never against
// anything the client sent.
func RetrieveCheckoutSession(sessionID string) (*CheckoutSession, error) {
	req, err := http.NewRequest("GET", fmt.Sprintf("%s/v1/checkout/sessions/%s", stripeAPIBase(), url.PathEscape(sessionID)), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(config.Config("STRIPE_SECRET_KEY"), "")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to retrieve checkout session, status %d: %s", resp.StatusCode, string(respBody))
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	return &session, nil
}
