package stripe

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNormalizeAndValidateConfig(t *testing.T) {
	cfg := &Config{
		SecretKey:          " sk_test_123 ",
		WebhookSecret:      " whsec_123 ",
		PaymentMethodTypes: []string{" Card "},
	}
	cfg.Normalize()
	if cfg.SecretKey != "sk_test_123" {
		t.Fatalf("unexpected secret key: %s", cfg.SecretKey)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("unexpected default api base url: %s", cfg.APIBaseURL)
	}
	if cfg.WebhookToleranceSeconds != defaultWebhookToleranceS {
		t.Fatalf("unexpected default tolerance: %d", cfg.WebhookToleranceSeconds)
	}
	if len(cfg.PaymentMethodTypes) != 1 || cfg.PaymentMethodTypes[0] != "card" {
		t.Fatalf("unexpected payment method types: %v", cfg.PaymentMethodTypes)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("validate config failed: %v", err)
	}
}

func TestVerifyAndParseWebhookIntentSucceeded(t *testing.T) {
	now := time.Unix(1760000000, 0)
	cfg := &Config{
		WebhookSecret:           "whsec_test_abc",
		WebhookToleranceSeconds: 300,
	}
	payload := map[string]interface{}{
		"id":   "evt_test_1",
		"type": "payment_intent.succeeded",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"object":          "payment_intent",
				"id":              "pi_test_123",
				"status":          "succeeded",
				"currency":        "usd",
				"amount_received": 4919,
				"created":         now.Unix(),
				"metadata": map[string]interface{}{
					"checkout_session_id": "b9c1e7a0-6c1f-4e52-9a51-2d9f5d2f0c11",
					"order_no":            "NM20260831120000123456",
				},
			},
		},
	}
	body, _ := json.Marshal(payload)
	sig := computeSignature(cfg.WebhookSecret, now.Unix(), body)
	headers := map[string]string{
		"Stripe-Signature": "t=1760000000,v1=" + sig,
	}

	result, err := VerifyAndParseWebhook(cfg, headers, body, now)
	if err != nil {
		t.Fatalf("verify and parse webhook failed: %v", err)
	}
	if result.EventType != "payment_intent.succeeded" {
		t.Fatalf("unexpected event type: %s", result.EventType)
	}
	if result.CheckoutSessionID != "b9c1e7a0-6c1f-4e52-9a51-2d9f5d2f0c11" {
		t.Fatalf("unexpected checkout session id: %s", result.CheckoutSessionID)
	}
	if result.PaymentIntentID != "pi_test_123" {
		t.Fatalf("unexpected payment intent id: %s", result.PaymentIntentID)
	}
	if result.Status != "success" {
		t.Fatalf("unexpected status: %s", result.Status)
	}
	if result.Amount != "49.19" {
		t.Fatalf("unexpected amount: %s", result.Amount)
	}
}

func TestVerifyAndParseWebhookInvalidSignature(t *testing.T) {
	now := time.Unix(1760000000, 0)
	cfg := &Config{
		WebhookSecret:           "whsec_test_abc",
		WebhookToleranceSeconds: 300,
	}
	payload := map[string]interface{}{
		"id":   "evt_test_1",
		"type": "payment_intent.succeeded",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"object": "payment_intent",
				"id":     "pi_test_123",
			},
		},
	}
	body, _ := json.Marshal(payload)
	headers := map[string]string{
		"Stripe-Signature": "t=1760000000,v1=invalid-signature",
	}

	_, err := VerifyAndParseWebhook(cfg, headers, body, now)
	if err == nil {
		t.Fatalf("expected verify error")
	}
}

func TestVerifyAndParseWebhookTimestampOutsideTolerance(t *testing.T) {
	eventAt := time.Unix(1760000000, 0)
	now := eventAt.Add(time.Hour)
	cfg := &Config{
		WebhookSecret:           "whsec_test_abc",
		WebhookToleranceSeconds: 300,
	}
	payload := map[string]interface{}{
		"id":   "evt_test_1",
		"type": "payment_intent.succeeded",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"object": "payment_intent",
				"id":     "pi_test_123",
			},
		},
	}
	body, _ := json.Marshal(payload)
	sig := computeSignature(cfg.WebhookSecret, eventAt.Unix(), body)
	headers := map[string]string{
		"Stripe-Signature": "t=1760000000,v1=" + sig,
	}

	_, err := VerifyAndParseWebhook(cfg, headers, body, now)
	if err == nil {
		t.Fatalf("expected tolerance error")
	}
}

func TestMapPaymentIntentStatus(t *testing.T) {
	if got := mapPaymentIntentStatus("succeeded"); got != "success" {
		t.Fatalf("expected success, got %s", got)
	}
	if got := mapPaymentIntentStatus("processing"); got != "pending" {
		t.Fatalf("expected pending, got %s", got)
	}
	if got := mapPaymentIntentStatus("canceled"); got != "failed" {
		t.Fatalf("expected failed, got %s", got)
	}
}

func TestMinorAmountConversion(t *testing.T) {
	minor, err := toMinorAmount("49.19", "USD")
	if err != nil {
		t.Fatalf("to minor amount failed: %v", err)
	}
	if minor != 4919 {
		t.Fatalf("minor amount want 4919 got %d", minor)
	}
	if got := fromMinorAmount(4919, "USD"); got != "49.19" {
		t.Fatalf("from minor amount want 49.19 got %s", got)
	}

	minor, err = toMinorAmount("500", "JPY")
	if err != nil {
		t.Fatalf("to minor amount jpy failed: %v", err)
	}
	if minor != 500 {
		t.Fatalf("jpy minor amount want 500 got %d", minor)
	}
}
