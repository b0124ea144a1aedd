package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ticket-chain/internal/status"
	"ticket-chain/models"
)

type MockPurchaseFlow struct {
	mock.Mock
}

func (m *MockPurchaseFlow) Buy(ctx context.Context, buyer, eventID string, intent models.PurchaseIntent, remaining int64) (*models.PurchaseResult, error) {
	args := m.Called(ctx, buyer, eventID, intent, remaining)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseResult), args.Error(1)
}

func (m *MockPurchaseFlow) RetryReport(ctx context.Context, buyer, eventID, txHash string) error {
	args := m.Called(ctx, buyer, eventID, txHash)
	return args.Error(0)
}

func postJSON(t *testing.T, path string, body map[string]any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	e := echo.New()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func purchaseBody() map[string]any {
	return map[string]any{
		"buyer_address":      "0xbuyer",
		"event_id":           "ev-1",
		"ticket_type_id":     "7",
		"schedule_id":        "3",
		"unit_price":         "100000",
		"quantity":           2,
		"remaining_quantity": 10,
	}
}

func TestPurchaseHandler_Buy_Success(t *testing.T) {
	flow := &MockPurchaseFlow{}
	handler := NewPurchaseHandler(flow)

	flow.On("Buy", mock.Anything, "0xbuyer", "ev-1", mock.Anything, int64(10)).
		Return(&models.PurchaseResult{TxHash: "0xabc", Recorded: true}, nil)

	c, rec := postJSON(t, "/api/purchase", purchaseBody())
	require.NoError(t, handler.Buy(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["status"])
	flow.AssertExpectations(t)
}

func TestPurchaseHandler_Buy_PaidButUnrecorded(t *testing.T) {
	flow := &MockPurchaseFlow{}
	handler := NewPurchaseHandler(flow)

	result := &models.PurchaseResult{TxHash: "0xabc", Recorded: false}
	flowErr := &status.FlowError{
		Stage:  status.StageReportingToBackend,
		TxHash: "0xabc",
		Err:    status.ErrPaidButUnrecorded,
	}
	flow.On("Buy", mock.Anything, "0xbuyer", "ev-1", mock.Anything, int64(10)).Return(result, flowErr)

	c, rec := postJSON(t, "/api/purchase", purchaseBody())
	require.NoError(t, handler.Buy(c))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["status"])
	assert.Equal(t, true, body["paid"])
	assert.Equal(t, "report", body["retriable"])
	assert.Equal(t, "0xabc", body["tx_hash"])
}

func TestPurchaseHandler_Buy_AttemptInFlight(t *testing.T) {
	flow := &MockPurchaseFlow{}
	handler := NewPurchaseHandler(flow)

	flow.On("Buy", mock.Anything, "0xbuyer", "ev-1", mock.Anything, int64(10)).
		Return(nil, status.ErrAttemptInFlight)

	c, rec := postJSON(t, "/api/purchase", purchaseBody())
	require.NoError(t, handler.Buy(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPurchaseHandler_Buy_UserRejected(t *testing.T) {
	flow := &MockPurchaseFlow{}
	handler := NewPurchaseHandler(flow)

	flowErr := &status.FlowError{Stage: status.StageSubmitting, Err: status.ErrUserRejected}
	flow.On("Buy", mock.Anything, "0xbuyer", "ev-1", mock.Anything, int64(10)).Return(nil, flowErr)

	c, rec := postJSON(t, "/api/purchase", purchaseBody())
	require.NoError(t, handler.Buy(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPurchaseHandler_Buy_ValidationFailure(t *testing.T) {
	flow := &MockPurchaseFlow{}
	handler := NewPurchaseHandler(flow)

	flowErr := &status.FlowError{Stage: status.StageValidatingInput, Err: status.ErrInsufficientInventory}
	flow.On("Buy", mock.Anything, "0xbuyer", "ev-1", mock.Anything, int64(10)).Return(nil, flowErr)

	c, rec := postJSON(t, "/api/purchase", purchaseBody())
	require.NoError(t, handler.Buy(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPurchaseHandler_Buy_ChainFailure(t *testing.T) {
	flow := &MockPurchaseFlow{}
	handler := NewPurchaseHandler(flow)

	flowErr := &status.FlowError{Stage: status.StageAwaitingConfirm, TxHash: "0xabc", Err: errors.New("transaction reverted")}
	flow.On("Buy", mock.Anything, "0xbuyer", "ev-1", mock.Anything, int64(10)).Return(nil, flowErr)

	c, rec := postJSON(t, "/api/purchase", purchaseBody())
	require.NoError(t, handler.Buy(c))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeBody(t, rec)
	// A pre-payment chain failure never carries the paid marker.
	assert.Nil(t, body["paid"])
}

func TestPurchaseHandler_RetryReport_RequiresTxHash(t *testing.T) {
	flow := &MockPurchaseFlow{}
	handler := NewPurchaseHandler(flow)

	c, rec := postJSON(t, "/api/purchase/retry-report", map[string]any{
		"buyer_address": "0xbuyer",
		"event_id":      "ev-1",
	})
	require.NoError(t, handler.RetryReport(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	flow.AssertNotCalled(t, "RetryReport", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseHandler_RetryReport_Success(t *testing.T) {
	flow := &MockPurchaseFlow{}
	handler := NewPurchaseHandler(flow)

	flow.On("RetryReport", mock.Anything, "0xbuyer", "ev-1", "0xabc").Return(nil)

	c, rec := postJSON(t, "/api/purchase/retry-report", map[string]any{
		"buyer_address": "0xbuyer",
		"event_id":      "ev-1",
		"tx_hash":       "0xabc",
	})
	require.NoError(t, handler.RetryReport(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	flow.AssertExpectations(t)
}

func TestPurchaseHandler_RetryReport_StillFailing(t *testing.T) {
	flow := &MockPurchaseFlow{}
	handler := NewPurchaseHandler(flow)

	flow.On("RetryReport", mock.Anything, "0xbuyer", "ev-1", "0xabc").
		Return(errors.New("backend unavailable"))

	c, rec := postJSON(t, "/api/purchase/retry-report", map[string]any{
		"buyer_address": "0xbuyer",
		"event_id":      "ev-1",
		"tx_hash":       "0xabc",
	})
	require.NoError(t, handler.RetryReport(c))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "0xabc", body["tx_hash"])
}
