// Package aggregator provides the client for the upstream financial-data
// aggregator. The wire protocol is treated as a black box: the client
// returns structured records keyed by externally stable unique ids, with
// enum-like values already coerced to plain strings.
package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client is the contract the reconciliation pipeline consumes. All calls
// block on network I/O and honor the supplied context for timeout and
// cancellation.
type Client interface {
	GetAccounts(ctx context.Context, accessToken string) ([]AccountRecord, error)
	GetTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]TransactionRecord, error)
	GetHoldings(ctx context.Context, accessToken string) (*HoldingsResponse, error)
	GetInvestmentTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]InvestmentTransactionRecord, error)
	GetLiabilities(ctx context.Context, accessToken string) (*LiabilitiesResponse, error)
	GetRecurringStreams(ctx context.Context, accessToken string) ([]RecurringStreamRecord, error)
	RemoveItem(ctx context.Context, accessToken string) error
}

// HTTPClient talks to the aggregator's REST API.
type HTTPClient struct {
	baseURL    string
	clientID   string
	secret     string
	httpClient *http.Client
}

// NewHTTPClient creates a new aggregator HTTP client.
func NewHTTPClient(baseURL, clientID, secret string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		clientID:   clientID,
		secret:     secret,
		httpClient: httpClient,
	}
}

// post sends a JSON request with credentials and decodes the response into out.
func (c *HTTPClient) post(ctx context.Context, path string, body map[string]any, out any) error {
	body["client_id"] = c.clientID
	body["secret"] = c.secret

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("calling %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// GetAccounts fetches current accounts with balances for an access token.
func (c *HTTPClient) GetAccounts(ctx context.Context, accessToken string) ([]AccountRecord, error) {
	var result struct {
		Accounts []AccountRecord `json:"accounts"`
	}
	body := map[string]any{"access_token": accessToken}
	if err := c.post(ctx, "/accounts/balance/get", body, &result); err != nil {
		return nil, err
	}
	return result.Accounts, nil
}

// GetTransactions fetches all transactions in the date range, following the
// upstream's offset pagination until the reported total is reached.
func (c *HTTPClient) GetTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]TransactionRecord, error) {
	const pageSize = 500

	var all []TransactionRecord
	for {
		var result struct {
			Transactions      []TransactionRecord `json:"transactions"`
			TotalTransactions int                 `json:"total_transactions"`
		}
		body := map[string]any{
			"access_token": accessToken,
			"start_date":   startDate.Format("2006-01-02"),
			"end_date":     endDate.Format("2006-01-02"),
			"options":      map[string]any{"count": pageSize, "offset": len(all)},
		}
		if err := c.post(ctx, "/transactions/get", body, &result); err != nil {
			return nil, err
		}
		all = append(all, result.Transactions...)
		if len(all) >= result.TotalTransactions || len(result.Transactions) == 0 {
			return all, nil
		}
	}
}

// GetHoldings fetches investment holdings and their securities.
func (c *HTTPClient) GetHoldings(ctx context.Context, accessToken string) (*HoldingsResponse, error) {
	var result HoldingsResponse
	body := map[string]any{"access_token": accessToken}
	if err := c.post(ctx, "/investments/holdings/get", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetInvestmentTransactions fetches investment transactions in the date range.
func (c *HTTPClient) GetInvestmentTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]InvestmentTransactionRecord, error) {
	var result struct {
		InvestmentTransactions []InvestmentTransactionRecord `json:"investment_transactions"`
	}
	body := map[string]any{
		"access_token": accessToken,
		"start_date":   startDate.Format("2006-01-02"),
		"end_date":     endDate.Format("2006-01-02"),
	}
	if err := c.post(ctx, "/investments/transactions/get", body, &result); err != nil {
		return nil, err
	}
	return result.InvestmentTransactions, nil
}

// GetLiabilities fetches liability detail grouped by type.
func (c *HTTPClient) GetLiabilities(ctx context.Context, accessToken string) (*LiabilitiesResponse, error) {
	var result struct {
		Liabilities LiabilitiesResponse `json:"liabilities"`
	}
	body := map[string]any{"access_token": accessToken}
	if err := c.post(ctx, "/liabilities/get", body, &result); err != nil {
		return nil, err
	}
	return &result.Liabilities, nil
}

// GetRecurringStreams fetches detected recurring transaction streams.
func (c *HTTPClient) GetRecurringStreams(ctx context.Context, accessToken string) ([]RecurringStreamRecord, error) {
	var result struct {
		InflowStreams  []RecurringStreamRecord `json:"inflow_streams"`
		OutflowStreams []RecurringStreamRecord `json:"outflow_streams"`
	}
	body := map[string]any{"access_token": accessToken}
	if err := c.post(ctx, "/transactions/recurring/get", body, &result); err != nil {
		return nil, err
	}
	streams := make([]RecurringStreamRecord, 0, len(result.InflowStreams)+len(result.OutflowStreams))
	for _, s := range result.InflowStreams {
		s.IsIncome = true
		streams = append(streams, s)
	}
	streams = append(streams, result.OutflowStreams...)
	return streams, nil
}

// RemoveItem unlinks an institution connection upstream.
func (c *HTTPClient) RemoveItem(ctx context.Context, accessToken string) error {
	var result struct {
		Removed bool `json:"removed"`
	}
	body := map[string]any{"access_token": accessToken}
	return c.post(ctx, "/item/remove", body, &result)
}
