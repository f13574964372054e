package handler

import (
	"net/http"
	"testing"

	mdapp "github.com/freightcore/backend/internal/application/masterdata"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMasterDataHandler_Branches(t *testing.T) {
	env := newTestEnv(t)
	admin := env.tokens[tenancy.RoleAdmin]

	w := env.do(http.MethodPost, "/api/v1/branches", admin, map[string]any{"name": "Pune Depot", "code": "pun", "city": "Pune"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "PUN", decode[mdapp.BranchResponse](t, w).Code)

	w = env.do(http.MethodPost, "/api/v1/branches", admin, map[string]any{"name": "Pune Two", "code": "PUN"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodPost, "/api/v1/branches", env.tokens[tenancy.RoleOperator], map[string]any{"name": "Nashik", "code": "NSK"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodGet, "/api/v1/branches", env.tokens[tenancy.RoleOperator], nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]mdapp.BranchResponse](t, w), 3)
}

func TestMasterDataHandler_Customers(t *testing.T) {
	env := newTestEnv(t)
	admin := env.tokens[tenancy.RoleAdmin]

	w := env.do(http.MethodPost, "/api/v1/customers", admin, map[string]any{
		"branch_id": env.delhi.ID,
		"name":      "Delhi Mills",
		"phone":     "+91 98110 00000",
		"gstin":     "07aaacd1234f1z5",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "07AAACD1234F1Z5", decode[mdapp.CustomerResponse](t, w).GSTIN)

	w = env.do(http.MethodPost, "/api/v1/customers", admin, map[string]any{"name": "No Phone", "gstin": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// the Mumbai operator sees org-wide customers but not Delhi's own
	w = env.do(http.MethodGet, "/api/v1/customers", env.tokens[tenancy.RoleOperator], nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]mdapp.CustomerResponse](t, w), 2)

	w = env.do(http.MethodGet, "/api/v1/customers", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]mdapp.CustomerResponse](t, w), 3)
}

func TestMasterDataHandler_Articles(t *testing.T) {
	env := newTestEnv(t)
	admin := env.tokens[tenancy.RoleAdmin]

	w := env.do(http.MethodPost, "/api/v1/articles", admin, map[string]any{
		"name":             "Glassware",
		"category":         "Fragile",
		"base_rate_per_kg": "18.5",
		"minimum_charge":   "200",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	a := decode[mdapp.ArticleResponse](t, w)
	assert.Equal(t, "fragile", a.Category)
	assert.Equal(t, "weight", a.ChargeBasis.String())
	assert.True(t, a.BaseRatePerKg.Equal(decimal.RequireFromString("18.5")))

	w = env.do(http.MethodPost, "/api/v1/articles", admin, map[string]any{"name": "Bad", "charge_basis": "volume"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/v1/articles?page_size=500", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/v1/articles", env.tokens[tenancy.RoleOperator], nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]mdapp.ArticleResponse](t, w), 1)
}
