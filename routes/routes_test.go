package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"scrap-collect/database"
	"scrap-collect/database/seeders"
	listingModel "scrap-collect/models/listing"
	"scrap-collect/middleware"
	"scrap-collect/services/analytics"
	"scrap-collect/services/assessment"
	"scrap-collect/services/lifecycle"
	"scrap-collect/services/listing_store"
	"scrap-collect/services/notification"
	"scrap-collect/services/payout"
	"scrap-collect/services/pricing"
	"scrap-collect/services/upload"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "routes-test-secret"

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(ctx context.Context, image []byte, mimeType string) (*assessment.RawSuggestion, error) {
	return &assessment.RawSuggestion{Category: "cardboard", EstimatedKg: 4.5, Title: "Flattened boxes"}, nil
}

type apiResponse struct {
	Message string          `json:"message"`
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
}

type listingBody struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	SellerID     string  `json:"seller_id"`
	DispatcherID *string `json:"dispatcher_id"`
	PricePerKg   int64   `json:"price_per_kg"`
	PayoutTxnID  *string `json:"payout_txn_id"`
	PayoutAmount *string `json:"payout_amount"`
	CategoryName string  `json:"category_name"`
}

type testServer struct {
	app     *fiber.App
	payouts *payout.MockProcessor
}

func newTestServer(t *testing.T, analyzer assessment.Analyzer) *testServer {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenInMemory("routes_" + name)
	require.NoError(t, err)

	prices := pricing.NewStaticTable()
	require.NoError(t, seeders.SeedFixtures(context.Background(), db, prices))

	store := listing_store.NewGormStore(db)
	payouts := payout.NewMockProcessor()
	app := fiber.New()
	asyncLogger := SetupRoutes(app, Dependencies{
		DB:          db,
		Verifier:    middleware.NewTokenVerifier(testSecret, ""),
		Manager:     lifecycle.NewManager(store, store, prices, payouts, notification.LogGateway{}),
		Prices:      prices,
		Uploads:     upload.NewService(t.TempDir()),
		Analytics:   analytics.NewService(store),
		Assessments: assessment.NewService(db, analyzer, prices),
	})

	t.Cleanup(func() {
		asyncLogger.Close()
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return &testServer{app: app, payouts: payouts}
}

func token(t *testing.T, sub, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) (int, apiResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (int, apiResponse) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func decodeListing(t *testing.T, r apiResponse) listingBody {
	t.Helper()
	var l listingBody
	require.NoError(t, json.Unmarshal(r.Data, &l))
	return l
}

func createBody() map[string]any {
	return map[string]any{
		"title":        "Old newspapers",
		"category":     "PAPER",
		"estimated_kg": "10.5",
		"location": map[string]any{
			"address": "12 MG Road",
			"city":    "Bengaluru",
			"state":   "Karnataka",
			"pincode": "560001",
		},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	status, body := s.do(t, "GET", "/api/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body.Message)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)
	status, _ := s.do(t, "GET", "/api/listings", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestListingLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	seller := token(t, seeders.SellerID, "SELLER")
	staff := token(t, seeders.StaffID, "STAFF")

	status, body := s.do(t, "POST", "/api/listings", seller, createBody())
	require.Equal(t, fiber.StatusCreated, status, body.Message)
	created := decodeListing(t, body)
	assert.Equal(t, "PENDING", created.Status)
	assert.Equal(t, seeders.SellerID, created.SellerID)
	assert.Equal(t, "Paper", created.CategoryName)
	assert.Positive(t, created.PricePerKg)

	pickupAt := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	status, body = s.do(t, "POST", "/api/listings/"+created.ID+"/schedule", staff,
		map[string]any{"pickup_at": pickupAt.Format(time.RFC3339)})
	require.Equal(t, fiber.StatusOK, status, body.Message)
	scheduled := decodeListing(t, body)
	assert.Equal(t, "SCHEDULED", scheduled.Status)
	require.NotNil(t, scheduled.DispatcherID)
	assert.Equal(t, seeders.StaffID, *scheduled.DispatcherID)

	status, body = s.do(t, "POST", "/api/listings/"+created.ID+"/collect", staff,
		map[string]any{"actual_kg": "9.5"})
	require.Equal(t, fiber.StatusOK, status, body.Message)
	collected := decodeListing(t, body)
	assert.Equal(t, "COLLECTED", collected.Status)
	require.NotNil(t, collected.PayoutTxnID)
	require.NotNil(t, collected.PayoutAmount)
	require.Len(t, s.payouts.Calls(), 1)

	status, _ = s.do(t, "POST", "/api/listings/"+created.ID+"/cancel", staff, nil)
	assert.Equal(t, fiber.StatusConflict, status)

	status, body = s.do(t, "GET", "/api/listings/"+created.ID, seller, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "COLLECTED", decodeListing(t, body).Status)

	status, body = s.do(t, "GET", "/api/listings/"+created.ID+"/history", seller, nil)
	require.Equal(t, fiber.StatusOK, status, body.Message)
	var events []listingModel.ListingStatusEvent
	require.NoError(t, json.Unmarshal(body.Data, &events))
	require.Len(t, events, 3)
	assert.Equal(t, listingModel.StatusCollected, events[2].ToStatus)
	require.NotNil(t, events[2].PayoutTxnID)
	assert.Equal(t, *collected.PayoutTxnID, *events[2].PayoutTxnID)

	status, _ = s.do(t, "GET", "/api/listings/"+created.ID+"/history", token(t, "another-seller", "SELLER"), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestRoleGuards(t *testing.T) {
	s := newTestServer(t, nil)
	seller := token(t, seeders.SellerID, "SELLER")
	staff := token(t, seeders.StaffID, "STAFF")

	status, _ := s.do(t, "POST", "/api/listings", staff, createBody())
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = s.do(t, "POST", "/api/listings/10000000-0000-4000-8000-000000000001/collect", seller,
		map[string]any{"actual_kg": "1"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = s.do(t, "GET", "/api/dashboard/analytics", seller, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestCollectPendingListingIsConflict(t *testing.T) {
	s := newTestServer(t, nil)
	staff := token(t, seeders.StaffID, "STAFF")

	status, _ := s.do(t, "POST", "/api/listings/10000000-0000-4000-8000-000000000001/collect", staff,
		map[string]any{"actual_kg": "1"})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Empty(t, s.payouts.Calls())
}

func TestCollectRejectsWeightBeyondStoredScale(t *testing.T) {
	s := newTestServer(t, nil)
	staff := token(t, seeders.StaffID, "STAFF")
	id := "10000000-0000-4000-8000-000000000003"

	pickupAt := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	status, _ := s.do(t, "POST", "/api/listings/"+id+"/schedule", staff,
		map[string]any{"pickup_at": pickupAt.Format(time.RFC3339)})
	require.Equal(t, fiber.StatusOK, status)

	status, _ = s.do(t, "POST", "/api/listings/"+id+"/collect", staff, map[string]any{"actual_kg": "0.0004"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Empty(t, s.payouts.Calls())
}

func TestPayoutFailureIsBadGateway(t *testing.T) {
	s := newTestServer(t, nil)
	staff := token(t, seeders.StaffID, "STAFF")
	id := "10000000-0000-4000-8000-000000000002"

	pickupAt := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	status, _ := s.do(t, "POST", "/api/listings/"+id+"/schedule", staff,
		map[string]any{"pickup_at": pickupAt.Format(time.RFC3339)})
	require.Equal(t, fiber.StatusOK, status)

	s.payouts.FailWith("beneficiary account closed")
	status, body := s.do(t, "POST", "/api/listings/"+id+"/collect", staff, map[string]any{"actual_kg": "2"})
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Contains(t, body.Message, "beneficiary account closed")

	status, body = s.do(t, "GET", "/api/listings/"+id, staff, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "SCHEDULED", decodeListing(t, body).Status)
}

func TestScheduleValidation(t *testing.T) {
	s := newTestServer(t, nil)
	staff := token(t, seeders.StaffID, "STAFF")
	id := "10000000-0000-4000-8000-000000000001"

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing", map[string]any{}},
		{"past", map[string]any{"pickup_at": time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)}},
		{"beyond window", map[string]any{"pickup_at": time.Now().AddDate(0, 0, 45).UTC().Format(time.RFC3339)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := s.do(t, "POST", "/api/listings/"+id+"/schedule", staff, tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
		})
	}
}

func TestListingVisibility(t *testing.T) {
	s := newTestServer(t, nil)
	other := token(t, "another-seller", "SELLER")
	staff := token(t, seeders.StaffID, "STAFF")

	status, body := s.do(t, "GET", "/api/listings", other, nil)
	require.Equal(t, fiber.StatusOK, status)
	var listings []listingBody
	require.NoError(t, json.Unmarshal(body.Data, &listings))
	assert.Empty(t, listings)

	status, _ = s.do(t, "GET", "/api/listings/10000000-0000-4000-8000-000000000001", other, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = s.do(t, "GET", "/api/listings?status=PENDING", staff, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body.Data, &listings))
	assert.Len(t, listings, 3)

	status, _ = s.do(t, "GET", "/api/listings?status=LOST", staff, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestAnalyticsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	admin := token(t, seeders.AdminID, "ADMIN")

	status, body := s.do(t, "GET", "/api/dashboard/analytics?month="+time.Now().UTC().Format("2006-01"), admin, nil)
	require.Equal(t, fiber.StatusOK, status, body.Message)
	var summary analytics.MonthlySummary
	require.NoError(t, json.Unmarshal(body.Data, &summary))
	assert.Equal(t, 3, summary.Pending)

	status, _ = s.do(t, "GET", "/api/dashboard/analytics?month=March", admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestPricingAndProfile(t *testing.T) {
	s := newTestServer(t, nil)
	seller := token(t, seeders.SellerID, "SELLER")

	status, body := s.do(t, "GET", "/api/pricing", seller, nil)
	require.Equal(t, fiber.StatusOK, status)
	var entries []pricing.Entry
	require.NoError(t, json.Unmarshal(body.Data, &entries))
	assert.Len(t, entries, len(listingModel.GetAllScrapTypes()))

	status, body = s.do(t, "GET", "/api/auth/profile", seller, nil)
	require.Equal(t, fiber.StatusOK, status)
	var profile map[string]any
	require.NoError(t, json.Unmarshal(body.Data, &profile))
	assert.Equal(t, seeders.SellerID, profile["id"])
	assert.Equal(t, "seller@scrap-collect.local", profile["email"])
}

func multipartImage(t *testing.T, path, bearer, mimeType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="scrap.png"`)
	header.Set("Content-Type", mimeType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+bearer)
	return req
}

func TestUploadImage(t *testing.T) {
	s := newTestServer(t, nil)
	seller := token(t, seeders.SellerID, "SELLER")

	status, body := s.send(t, multipartImage(t, "/api/uploads/images", seller, "image/png", []byte("\x89PNG fake")))
	require.Equal(t, fiber.StatusCreated, status, body.Message)
	var stored upload.StoredImage
	require.NoError(t, json.Unmarshal(body.Data, &stored))
	assert.True(t, strings.HasPrefix(stored.Reference, "/uploads/listings/"+seeders.SellerID+"/"))

	status, _ = s.send(t, multipartImage(t, "/api/uploads/images", seller, "application/pdf", []byte("%PDF")))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestAssessmentEndpoint(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		s := newTestServer(t, nil)
		seller := token(t, seeders.SellerID, "SELLER")
		status, _ := s.send(t, multipartImage(t, "/api/assessments", seller, "image/jpeg", []byte("jpeg")))
		assert.Equal(t, fiber.StatusServiceUnavailable, status)
	})

	t.Run("enabled", func(t *testing.T) {
		s := newTestServer(t, stubAnalyzer{})
		seller := token(t, seeders.SellerID, "SELLER")
		status, body := s.send(t, multipartImage(t, "/api/assessments", seller, "image/jpeg", []byte("jpeg")))
		require.Equal(t, fiber.StatusOK, status, body.Message)

		var suggestion map[string]any
		require.NoError(t, json.Unmarshal(body.Data, &suggestion))
		assert.Equal(t, "CARDBOARD", suggestion["category"])
	})
}
