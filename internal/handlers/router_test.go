package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"moneta/internal/services"
	"moneta/internal/testutil"
	"moneta/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeAggregatorStub) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fake := &fakeAggregatorStub{}

	syncService := services.NewSyncService(db, fake)
	linkService := services.NewLinkService(db, fake, syncService)
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)

	router := NewRouter(Handlers{
		Auth:         NewAuthHandler(userService, auditService),
		Links:        NewLinkHandler(linkService, syncService, auditService),
		Accounts:     NewAccountHandler(services.NewAccountService(db), auditService),
		Transactions: NewTransactionHandler(services.NewTransactionService(db)),
		Analytics:    NewAnalyticsHandler(services.NewNetWorthService(db), services.NewCashFlowService(db)),
		Portfolio:    NewPortfolioHandler(services.NewPortfolioService(db)),
	})
	return router, fake
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding request: %v", err)
		}
		payload = bytes.NewReader(encoded)
	} else {
		payload = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, router *gin.Engine) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":      "handler-test@example.com",
		"password":   "long-enough-pass",
		"first_name": "Handler",
		"last_name":  "Test",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("no token in register response: %s", rec.Body.String())
	}
	return resp.Token
}

func TestAuthFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	token := registerAndLogin(t, router)

	t.Run("login works with registered credentials", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "handler-test@example.com",
			"password": "long-enough-pass",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("wrong password is rejected with the generic error", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "handler-test@example.com",
			"password": "wrong-password",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decoding error body: %v", err)
		}
		if body.Error.Code != "INVALID_CREDENTIALS" {
			t.Errorf("expected INVALID_CREDENTIALS, got %s", body.Error.Code)
		}
	})

	t.Run("me returns the profile", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/me", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("me failed: %d %s", rec.Code, rec.Body.String())
		}
		if bytes.Contains(rec.Body.Bytes(), []byte("long-enough-pass")) {
			t.Error("password material leaked in profile response")
		}
	})

	t.Run("protected routes reject missing token", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/analytics/net-worth", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("protected routes reject garbage token", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/analytics/net-worth", "not-a-jwt", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAnalyticsEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	token := registerAndLogin(t, router)

	t.Run("net worth for a fresh user is zeroed", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/analytics/net-worth", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
		var body struct {
			NetWorth    json.Number `json:"net_worth"`
			TotalAssets json.Number `json:"total_assets"`
		}
		dec := json.NewDecoder(bytes.NewReader(rec.Body.Bytes()))
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if body.NetWorth.String() != "0" {
			t.Errorf("expected zero net worth, got %s", body.NetWorth)
		}
	})

	t.Run("cash flow rejects malformed dates", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/analytics/cash-flow?start_date=garbage", token, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("portfolio summary for a fresh user", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/portfolio/summary", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
	})
}

func TestTransactionListing(t *testing.T) {
	router, _ := newTestRouter(t)
	token := registerAndLogin(t, router)

	t.Run("empty listing", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/transactions", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown cash flow type is rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/transactions?cash_flow_type=windfall", token, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("valid cash flow type passes validation", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/transactions?cash_flow_type=income", token, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
	})
}

func TestWebhookEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("unknown item is still acknowledged", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/webhooks/aggregator", "", map[string]string{
			"webhook_type": "TRANSACTIONS",
			"webhook_code": "DEFAULT_UPDATE",
			"item_id":      "item-that-does-not-exist",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("webhooks must return 200, got %d", rec.Code)
		}
		var receipt services.WebhookReceipt
		if err := json.Unmarshal(rec.Body.Bytes(), &receipt); err != nil {
			t.Fatalf("decoding receipt: %v", err)
		}
		if !receipt.Received {
			t.Error("expected received=true")
		}
	})

	t.Run("malformed payload is still acknowledged", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/aggregator", bytes.NewReader([]byte("{broken")))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("webhooks must return 200, got %d", rec.Code)
		}
	})
}
