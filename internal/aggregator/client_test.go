package aggregator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClientInjectsCredentials(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"accounts": []interface{}{}})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "client-id", "client-secret", server.Client())
	_, err := client.GetAccounts(context.Background(), "access-token")
	if err != nil {
		t.Fatalf("GetAccounts: %v", err)
	}

	if got["client_id"] != "client-id" || got["secret"] != "client-secret" || got["access_token"] != "access-token" {
		t.Errorf("credentials missing from request body: %v", got)
	}
}

func TestHTTPClientTransactionPagination(t *testing.T) {
	pages := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		var req struct {
			Options struct {
				Offset int `json:"offset"`
				Count  int `json:"count"`
			} `json:"options"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		// 750 total: a full page then a partial one.
		size := 500
		if req.Options.Offset >= 500 {
			size = 250
		}
		txns := make([]map[string]interface{}, size)
		for i := range txns {
			txns[i] = map[string]interface{}{
				"transaction_id": "txn",
				"account_id":     "acct",
				"amount":         1.5,
				"date":           "2026-08-01",
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"transactions":       txns,
			"total_transactions": 750,
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "id", "secret", server.Client())
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	all, err := client.GetTransactions(context.Background(), "token", start, end)
	if err != nil {
		t.Fatalf("GetTransactions: %v", err)
	}
	if len(all) != 750 {
		t.Errorf("expected 750 transactions, got %d", len(all))
	}
	if pages != 2 {
		t.Errorf("expected 2 pages, got %d", pages)
	}
}

func TestHTTPClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "id", "secret", server.Client())
	if _, err := client.GetAccounts(context.Background(), "token"); err == nil {
		t.Error("expected error for non-200 status")
	}
}

func TestHTTPClientRecurringStreamsMerge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"inflow_streams": []map[string]interface{}{
				{"stream_id": "s-in", "account_id": "acct", "description": "Payroll"},
			},
			"outflow_streams": []map[string]interface{}{
				{"stream_id": "s-out", "account_id": "acct", "description": "Rent"},
			},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "id", "secret", server.Client())
	streams, err := client.GetRecurringStreams(context.Background(), "token")
	if err != nil {
		t.Fatalf("GetRecurringStreams: %v", err)
	}
	if len(streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(streams))
	}
	for _, s := range streams {
		if s.StreamID == "s-in" && !s.IsIncome {
			t.Error("inflow stream should be marked income")
		}
		if s.StreamID == "s-out" && s.IsIncome {
			t.Error("outflow stream should not be marked income")
		}
	}
}
