package handler

import (
	"net/http"
	"testing"

	rateapp "github.com/freightcore/backend/internal/application/rate"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) contractBody(number string) map[string]any {
	return map[string]any{
		"customer_id":     e.recv.ID,
		"contract_number": number,
		"valid_from":      "2026-01-01",
		"valid_until":     "2026-12-31",
		"slabs": []map[string]any{{
			"from_location": "Delhi",
			"to_location":   "Mumbai",
			"weight_from":   "0",
			"weight_to":     "100",
			"charge_basis":  "weight",
			"rate_per_kg":   "40",
		}},
	}
}

func TestRateContractHandler_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokens[tenancy.RoleAdmin]

	w := env.do(http.MethodPost, "/api/v1/rate-contracts", token, env.contractBody("RC-2026-002"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[rateapp.ContractResponse](t, w)
	assert.Equal(t, "draft", created.Status)
	require.Len(t, created.Slabs, 1)
	base := "/api/v1/rate-contracts/" + created.ID.String()

	w = env.do(http.MethodPost, base+"/slabs", token, map[string]any{
		"from_location": "Delhi",
		"to_location":   "Mumbai",
		"weight_from":   "100",
		"weight_to":     "500",
		"charge_basis":  "weight",
		"rate_per_kg":   "35",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[rateapp.ContractResponse](t, w).Slabs, 2)

	w = env.do(http.MethodPost, base+"/activate", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "active", decode[rateapp.ContractResponse](t, w).Status)

	w = env.do(http.MethodPost, base+"/terminate", token, map[string]any{"reason": "renegotiated"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "terminated", decode[rateapp.ContractResponse](t, w).Status)

	w = env.do(http.MethodPost, base+"/activate", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "RC-2026-002", decode[rateapp.ContractResponse](t, w).ContractNumber)
}

func TestRateContractHandler_DuplicateNumber(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/rate-contracts", env.tokens[tenancy.RoleAdmin], env.contractBody("RC-2026-001"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_EXISTS", errorOf(t, w).Code)
}

func TestRateContractHandler_OperatorForbidden(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokens[tenancy.RoleOperator]

	w := env.do(http.MethodPost, "/api/v1/rate-contracts", token, env.contractBody("RC-2026-009"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodGet, "/api/v1/rate-contracts", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateContractHandler_List(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokens[tenancy.RoleAdmin]

	w := env.do(http.MethodGet, "/api/v1/rate-contracts?status=active", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	items := decode[[]rateapp.ContractResponse](t, w)
	require.Len(t, items, 1)
	assert.Equal(t, env.sender.ID, items[0].CustomerID)

	w = env.do(http.MethodGet, "/api/v1/rate-contracts?status=archived", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/v1/rate-contracts?customer_id=nope", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateContractHandler_OtherOrgIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/v1/rate-contracts?status=active", env.tokens[tenancy.RoleAdmin], nil)
	require.Equal(t, http.StatusOK, w.Code)
	id := decode[[]rateapp.ContractResponse](t, w)[0].ID

	w = env.do(http.MethodGet, "/api/v1/rate-contracts/"+id.String(), env.outsider, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
