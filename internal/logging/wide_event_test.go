package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func emitToJSON(t *testing.T, event *WideEvent) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	event.Emit(logger)

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal emitted record: %v", err)
	}
	return record
}

func TestEmitIncludesPopulatedFields(t *testing.T) {
	event := NewWideEvent("http_request")
	event.HTTPMethod = "GET"
	event.HTTPPath = "/documents"
	event.HTTPStatusCode = 307
	event.HTTPDurationMs = 12
	event.UserID = "42"
	event.UserEmail = "alice@example.com"
	event.UserType = "TEAM_ADMIN"
	event.DocumentID = "doc_7"
	event.InviteMethod = "link"
	event.StripeCustomerID = "cus_123"
	event.SubscriptionID = "sub_456"
	event.WebhookEventType = "invoice.paid"
	event.RedirectTarget = "/checkout"
	event.Metadata["plan"] = "team"

	record := emitToJSON(t, event)

	want := map[string]string{
		"http_method":        "GET",
		"http_path":          "/documents",
		"user_id":            "42",
		"user_email":         "alice@example.com",
		"user_type":          "TEAM_ADMIN",
		"document_id":        "doc_7",
		"invite_method":      "link",
		"stripe_customer_id": "cus_123",
		"subscription_id":    "sub_456",
		"webhook_event_type": "invoice.paid",
		"redirect_target":    "/checkout",
	}
	for key, value := range want {
		if record[key] != value {
			t.Errorf("record[%q] = %v, want %q", key, record[key], value)
		}
	}
	if record["http_status_code"] != float64(307) {
		t.Errorf("http_status_code = %v, want 307", record["http_status_code"])
	}
	if record["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", record["level"])
	}
	metadata, ok := record["metadata"].(map[string]interface{})
	if !ok || metadata["plan"] != "team" {
		t.Errorf("metadata = %v, want plan=team", record["metadata"])
	}
}

func TestEmitOmitsZeroFields(t *testing.T) {
	event := NewWideEvent("http_request")
	event.HTTPMethod = "GET"
	event.HTTPPath = "/health"

	record := emitToJSON(t, event)

	for _, key := range []string{"redirect_target", "document_id", "error", "panic_recovered", "metadata"} {
		if _, present := record[key]; present {
			t.Errorf("record unexpectedly contains %q", key)
		}
	}
}

func TestEmitEscalatesLevel(t *testing.T) {
	event := NewWideEvent("http_request")
	event.Error = "boom"

	record := emitToJSON(t, event)
	if record["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR for event with error", record["level"])
	}

	event = NewWideEvent("http_request")
	event.PanicRecovered = true

	record = emitToJSON(t, event)
	if record["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR for recovered panic", record["level"])
	}
}
