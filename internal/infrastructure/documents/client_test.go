package documents

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

func rateServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/currency-exchange-rates" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetchRate_StringValue(t *testing.T) {
	srv := rateServer(t, `{"exchange_rate": "1,0735"}`)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	raw, err := client.FetchRate(context.Background(), "token", "2026-01-15", "USD")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if raw != "1,0735" {
		t.Fatalf("expected raw comma value, got %q", raw)
	}
}

func TestFetchRate_NumericValue(t *testing.T) {
	srv := rateServer(t, `{"exchange_rate": 1.0735}`)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	raw, err := client.FetchRate(context.Background(), "token", "2026-01-15", "USD")
	if err != nil {
		t.Fatalf("numeric exchange_rate must parse: %v", err)
	}
	if raw != "1.0735" {
		t.Fatalf("expected 1.0735, got %q", raw)
	}
}

func TestFetchRate_MissingValue(t *testing.T) {
	srv := rateServer(t, `{}`)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	if _, err := client.FetchRate(context.Background(), "token", "2026-01-15", "USD"); !errors.Is(err, domain.ErrRateUnavailable) {
		t.Fatalf("expected ErrRateUnavailable, got %v", err)
	}
}

func TestFetchRate_Unconfigured(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.FetchRate(context.Background(), "token", "2026-01-15", "USD"); !errors.Is(err, domain.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestFetchBarcode_FallsBackToPost(t *testing.T) {
	image := []byte{0x89, 'P', 'N', 'G'}
	var gets, posts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/invoices/inv-1/2d-barcode.png" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		switch r.Method {
		case http.MethodGet:
			gets++
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPost:
			posts++
			_, _ = w.Write(image)
		}
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	body, err := client.FetchBarcode(context.Background(), "token", "inv-1", ports.PaymentDescriptor{Amount: 100})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !bytes.Equal(body, image) {
		t.Fatalf("expected rendered image bytes, got %v", body)
	}
	if gets != 1 || posts != 1 {
		t.Fatalf("expected GET then POST fallback, got %d/%d", gets, posts)
	}
}
