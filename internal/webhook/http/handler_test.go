package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/httputil"
	orderDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/order/domain"
	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/http/dto"
	webhookUsecase "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/usecase"
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/usecase/mocks"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newWebhookRouter(uc webhookUsecase.SettlementUseCase, maxBody int64) *gin.Engine {
	router := gin.New()
	router.POST("/payments/webhook", NewWebhookHandler(uc, maxBody, discardLogger()).SettleHandler)
	return router
}

func postWebhook(router *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookHandler_Settled(t *testing.T) {
	uc := &mocks.MockSettlementUseCase{}
	body := `{"provider":"telebirr","status":"completed","paymentReference":"PAY-1001"}`
	paidAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	order := &orderDomain.Order{
		ID:            uuid.Must(uuid.NewV7()),
		OrderNumber:   "ORD-1001",
		PaymentStatus: orderDomain.PaymentStatusCompleted,
		Status:        orderDomain.OrderStatusPaid,
		TotalAmount:   decimal.RequireFromString("150"),
		PaidAt:        &paidAt,
	}

	uc.On("Settle", mock.Anything, mock.MatchedBy(func(in webhookUsecase.SettleInput) bool {
		return string(in.Body) == body &&
			in.Headers.Get("X-Telebirr-Signature") == "abc123" &&
			in.SourceIP != ""
	})).Return(&webhookUsecase.SettleResult{
		Outcome:  webhookUsecase.OutcomeSettled,
		Provider: "telebirr",
		Order:    order,
	}, nil).Once()

	w := postWebhook(newWebhookRouter(uc, 1<<20), body, map[string]string{"X-Telebirr-Signature": "abc123"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.SettleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "settled", resp.Outcome)
	require.NotNil(t, resp.Order)
	assert.Equal(t, "ORD-1001", resp.Order.OrderNumber)
	assert.Equal(t, "completed", resp.Order.PaymentStatus)
	assert.Equal(t, "150.00", resp.Order.TotalAmount)
	uc.AssertExpectations(t)
}

func TestWebhookHandler_AlreadyCompleted(t *testing.T) {
	uc := &mocks.MockSettlementUseCase{}
	uc.On("Settle", mock.Anything, mock.Anything).Return(&webhookUsecase.SettleResult{
		Outcome: webhookUsecase.OutcomeAlreadyCompleted,
		Message: "Already completed",
	}, nil)

	w := postWebhook(newWebhookRouter(uc, 1<<20), `{}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"outcome":"already_completed","message":"Already completed"}`, w.Body.String())
}

func TestWebhookHandler_BodyTooLarge(t *testing.T) {
	uc := &mocks.MockSettlementUseCase{}

	w := postWebhook(newWebhookRouter(uc, 16), `{"provider":"telebirr","status":"completed"}`, nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "payload_too_large", resp.Error)
	uc.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything)
}

func TestWebhookHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"InvalidSignature", webhookDomain.ErrInvalidSignature, http.StatusUnauthorized, "unauthorized"},
		{"MissingSignature", webhookDomain.ErrMissingSignature, http.StatusUnauthorized, "unauthorized"},
		{"SecretMissing", webhookDomain.ErrWebhookSecretMissing, http.StatusInternalServerError, "server_misconfigured"},
		{"InvalidPayload", webhookDomain.ErrInvalidPayload, http.StatusUnprocessableEntity, "invalid_input"},
		{"OrderNotFound", orderDomain.ErrOrderNotFound, http.StatusNotFound, "not_found"},
		{
			"AmountMismatch",
			apperrors.Wrapf(orderDomain.ErrAmountMismatch, "declared 900.00, expected 1000.00"),
			http.StatusBadRequest,
			"precondition_failed",
		},
		{"Unexpected", apperrors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mocks.MockSettlementUseCase{}
			uc.On("Settle", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := postWebhook(newWebhookRouter(uc, 1<<20), `{"provider":"cbe","status":"completed"}`, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp httputil.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error)
		})
	}
}

func newEventRouter(uc webhookUsecase.EventUseCase) *gin.Engine {
	handler := NewEventHandler(uc, discardLogger())
	router := gin.New()
	router.GET("/v1/webhook-events", handler.ListHandler)
	router.GET("/v1/webhook-events/:id", handler.GetHandler)
	return router
}

func getJSON(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func ledgerRow() *webhookDomain.Event {
	now := time.Now().UTC()
	key := "evt-1"
	orderID := uuid.Must(uuid.NewV7())
	return &webhookDomain.Event{
		ID:             uuid.Must(uuid.NewV7()),
		Provider:       "chapa",
		EventID:        &key,
		Payload:        []byte(`{"secret":"do not leak"}`),
		AuthMethod:     webhookDomain.AuthMethodProviderHMAC,
		Status:         webhookDomain.EventStatusProcessed,
		OrderID:        &orderID,
		Attempts:       1,
		Deliveries:     3,
		LastDeliveryAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestEventHandler_List(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}
		row := ledgerRow()
		uc.On("List", mock.Anything, webhookDomain.ListFilter{
			Status:   webhookDomain.EventStatusProcessed,
			Provider: "chapa",
		}, 10, 5).Return([]*webhookDomain.Event{row}, nil).Once()

		w := getJSON(newEventRouter(uc), "/v1/webhook-events?status=processed&provider=chapa&offset=10&limit=5")

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.ListEventsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, row.ID.String(), resp.Data[0].ID)
		assert.Equal(t, 3, resp.Data[0].Deliveries)
		assert.Equal(t, 10, resp.Offset)
		assert.Equal(t, 5, resp.Limit)
		assert.Nil(t, resp.NextOffset)
		assert.NotContains(t, w.Body.String(), "do not leak")
		uc.AssertExpectations(t)
	})

	t.Run("Defaults", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}
		uc.On("List", mock.Anything, webhookDomain.ListFilter{}, 0, 50).
			Return([]*webhookDomain.Event{}, nil).Once()

		w := getJSON(newEventRouter(uc), "/v1/webhook-events")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[],"offset":0,"limit":50}`, w.Body.String())
	})

	t.Run("FullPageAdvertisesNextOffset", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}
		uc.On("List", mock.Anything, webhookDomain.ListFilter{}, 0, 2).
			Return([]*webhookDomain.Event{ledgerRow(), ledgerRow()}, nil).Once()

		w := getJSON(newEventRouter(uc), "/v1/webhook-events?limit=2")

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.ListEventsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.NextOffset)
		assert.Equal(t, 2, *resp.NextOffset)
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}

		w := getJSON(newEventRouter(uc), "/v1/webhook-events?status=settled")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		uc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidLimit", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}

		w := getJSON(newEventRouter(uc), "/v1/webhook-events?limit=1000")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "limit: must be an integer between 1 and 100")
		uc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestEventHandler_Get(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}
		row := ledgerRow()
		uc.On("Get", mock.Anything, row.ID).Return(row, nil).Once()

		w := getJSON(newEventRouter(uc), "/v1/webhook-events/"+row.ID.String())

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.EventResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "processed", resp.Status)
		assert.Equal(t, "provider_hmac", resp.AuthMethod)
		require.NotNil(t, resp.OrderID)
		assert.Equal(t, row.OrderID.String(), *resp.OrderID)
	})

	t.Run("NotFound", func(t *testing.T) {
		uc := &mocks.MockEventUseCase{}
		id := uuid.Must(uuid.NewV7())
		uc.On("Get", mock.Anything, id).Return(nil, webhookDomain.ErrEventNotFound).Once()

		w := getJSON(newEventRouter(uc), "/v1/webhook-events/"+id.String())

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		w := getJSON(newEventRouter(&mocks.MockEventUseCase{}), "/v1/webhook-events/not-a-uuid")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
