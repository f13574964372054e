package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	bookingapp "github.com/freightcore/backend/internal/application/booking"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== Create ====================

func TestBookingHandler_Create_PricesFromContract(t *testing.T) {
	env := newTestEnv(t)

	b := env.createBooking()

	wantPrefix := fmt.Sprintf("MUM-%02d-", time.Now().UTC().Year()%100)
	assert.True(t, strings.HasPrefix(b.LRNumber, wantPrefix), b.LRNumber)
	assert.True(t, strings.HasSuffix(b.LRNumber, "-001"), b.LRNumber)
	assert.Equal(t, "booked", b.Status)
	assert.Equal(t, "contract", b.RateSource)
	assert.Equal(t, env.sender.ID, b.BillingCustomerID)
	require.NotNil(t, b.ContractID)
	require.Len(t, b.Articles, 1)
	assert.True(t, b.Articles[0].FreightAmount.Equal(decimal.NewFromInt(1300)), b.Articles[0].FreightAmount.String())

	sum := decimal.Zero
	for _, a := range b.Articles {
		sum = sum.Add(a.TotalAmount)
	}
	assert.True(t, b.TotalAmount.Sub(sum).Abs().LessThan(decimal.RequireFromString("0.01")))
}

func TestBookingHandler_Create_SequentialLRNumbers(t *testing.T) {
	env := newTestEnv(t)

	first := env.createBooking()
	second := env.createBooking()
	assert.NotEqual(t, first.LRNumber, second.LRNumber)
	assert.True(t, strings.HasSuffix(second.LRNumber, "-002"), second.LRNumber)
}

func TestBookingHandler_Create_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	body := env.bookingBody()
	body["articles"] = []map[string]any{}
	body["payment_type"] = "cash"

	w := env.do(http.MethodPost, "/api/v1/bookings", env.tokens[tenancy.RoleOperator], body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	info := errorOf(t, w)
	assert.Equal(t, "VALIDATION_ERROR", info.Code)
	assert.NotEmpty(t, info.Details)
}

func TestBookingHandler_Create_DeclaredTotalMismatch(t *testing.T) {
	env := newTestEnv(t)

	body := env.bookingBody()
	body["declared_total"] = "1"

	w := env.do(http.MethodPost, "/api/v1/bookings", env.tokens[tenancy.RoleOperator], body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "TOTAL_MISMATCH", errorOf(t, w).Code)
}

func TestBookingHandler_Create_WeightOutsideStoredRange(t *testing.T) {
	env := newTestEnv(t)

	for _, weight := range []string{"0.0004", "10000000000"} {
		body := env.bookingBody()
		body["articles"] = []map[string]any{{"name": "Cotton bales", "quantity": 1, "weight": weight}}

		w := env.do(http.MethodPost, "/api/v1/bookings", env.tokens[tenancy.RoleOperator], body)
		assert.Equal(t, http.StatusBadRequest, w.Code, weight)
		assert.Equal(t, "VALIDATION_ERROR", errorOf(t, w).Code, weight)
	}

	w := env.do(http.MethodGet, "/api/v1/bookings", env.tokens[tenancy.RoleOperator], nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp APIResponse[[]bookingapp.BookingResponse]
	require.NoError(t, jsonUnmarshal(w, &resp))
	assert.Empty(t, resp.Data)
}

func TestBookingHandler_Create_NoApplicableRate(t *testing.T) {
	env := newTestEnv(t)

	body := env.bookingBody()
	body["to_location"] = "Chennai"

	w := env.do(http.MethodPost, "/api/v1/bookings", env.tokens[tenancy.RoleOperator], body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_Create_ManualRateFallback(t *testing.T) {
	env := newTestEnv(t)

	body := env.bookingBody()
	body["to_location"] = "Chennai"
	body["manual_rate"] = map[string]any{"rate_type": "weight", "rate_value": "10"}

	w := env.do(http.MethodPost, "/api/v1/bookings", env.tokens[tenancy.RoleOperator], body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := decode[bookingapp.BookingResponse](t, w)
	assert.Equal(t, "manual", b.RateSource)
	assert.Nil(t, b.ContractID)
}

func TestBookingHandler_Create_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/bookings", "", env.bookingBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ==================== Read ====================

func TestBookingHandler_GetAndLookup(t *testing.T) {
	env := newTestEnv(t)
	created := env.createBooking()
	token := env.tokens[tenancy.RoleOperator]

	w := env.do(http.MethodGet, "/api/v1/bookings/"+created.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, created.LRNumber, decode[bookingapp.BookingResponse](t, w).LRNumber)

	w = env.do(http.MethodGet, "/api/v1/bookings/lr/"+created.LRNumber, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, created.ID, decode[bookingapp.BookingResponse](t, w).ID)

	w = env.do(http.MethodGet, "/api/v1/bookings/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_Get_OtherOrgIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	created := env.createBooking()

	w := env.do(http.MethodGet, "/api/v1/bookings/"+created.ID.String(), env.outsider, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorOf(t, w).Code)

	w = env.do(http.MethodGet, "/api/v1/bookings/lr/"+created.LRNumber, env.outsider, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_List(t *testing.T) {
	env := newTestEnv(t)
	env.createBooking()
	env.createBooking()

	w := env.do(http.MethodGet, "/api/v1/bookings?page=1&page_size=1&status=booked", env.tokens[tenancy.RoleOperator], nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp APIResponse[[]bookingapp.BookingResponse]
	require.NoError(t, jsonUnmarshal(w, &resp))
	assert.Len(t, resp.Data, 1)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)

	w = env.do(http.MethodGet, "/api/v1/bookings", env.outsider, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]bookingapp.BookingResponse](t, w))

	w = env.do(http.MethodGet, "/api/v1/bookings?from_date=10-03-2026", env.tokens[tenancy.RoleOperator], nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ==================== Status ====================

func TestBookingHandler_UpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	created := env.createBooking()
	token := env.tokens[tenancy.RoleOperator]
	path := "/api/v1/bookings/" + created.ID.String() + "/status"

	w := env.do(http.MethodPatch, path, token, map[string]any{"status": "loaded", "workflow_context": "loading"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorOf(t, w).Code)

	w = env.do(http.MethodPatch, path, token, map[string]any{"status": "delivered", "expected_status": "booked"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_STATE_TRANSITION", errorOf(t, w).Code)

	w = env.do(http.MethodPatch, path, token, map[string]any{"status": "loaded", "workflow_context": "general", "expected_status": "booked"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "WRONG_WORKFLOW_CONTEXT", errorOf(t, w).Code)

	w = env.do(http.MethodPatch, path, token, map[string]any{"status": "loaded", "workflow_context": "loading", "expected_status": "in_transit"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONCURRENCY_CONFLICT", errorOf(t, w).Code)

	w = env.do(http.MethodPatch, path, token, map[string]any{"status": "loaded", "workflow_context": "loading", "expected_status": "booked"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "loaded", decode[bookingapp.BookingResponse](t, w).Status)

	w = env.do(http.MethodGet, "/api/v1/bookings/"+created.ID.String()+"/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]bookingapp.StatusChangeResponse](t, w)
	require.NotEmpty(t, history)
	last := history[len(history)-1]
	assert.Equal(t, "booked", last.FromStatus)
	assert.Equal(t, "loaded", last.ToStatus)
	assert.Equal(t, "loading", last.WorkflowContext)
}

// ==================== Articles ====================

func TestBookingHandler_AddArticle(t *testing.T) {
	env := newTestEnv(t)
	created := env.createBooking()
	token := env.tokens[tenancy.RoleOperator]
	path := "/api/v1/bookings/" + created.ID.String() + "/articles"

	w := env.do(http.MethodPost, path, token, map[string]any{"name": "Yarn cones", "quantity": 1, "weight": "10"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	b := decode[bookingapp.BookingResponse](t, w)
	require.Len(t, b.Articles, 2)
	assert.True(t, b.TotalAmount.GreaterThan(created.TotalAmount))

	cancel := env.do(http.MethodPatch, "/api/v1/bookings/"+created.ID.String()+"/status", token, map[string]any{"status": "cancelled", "expected_status": "booked"})
	require.Equal(t, http.StatusOK, cancel.Code, cancel.Body.String())

	w = env.do(http.MethodPost, path, token, map[string]any{"name": "Yarn cones", "quantity": 1, "weight": "10"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_STATE", errorOf(t, w).Code)
}

// ==================== Rate lookup ====================

func TestBookingHandler_LookupRate(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokens[tenancy.RoleOperator]

	w := env.do(http.MethodPost, "/api/v1/rates/lookup", token, map[string]any{
		"customer_id":   env.sender.ID,
		"from_location": "Mumbai",
		"to_location":   "Delhi",
		"weight":        "26",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[bookingapp.RateLookupResult](t, w)
	assert.True(t, res.HasContract)
	assert.True(t, res.HasRate)
	require.NotNil(t, res.RateContract)
	assert.Equal(t, "RC-2026-001", res.RateContract.ContractNumber)
	require.NotNil(t, res.Estimate)

	w = env.do(http.MethodPost, "/api/v1/rates/lookup", token, map[string]any{
		"customer_id":   env.recv.ID,
		"from_location": "Mumbai",
		"to_location":   "Delhi",
		"weight":        "26",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res = decode[bookingapp.RateLookupResult](t, w)
	assert.False(t, res.HasContract)
	assert.False(t, res.HasRate)
	assert.NotEmpty(t, res.Message)
}
