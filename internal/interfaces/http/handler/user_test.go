package handler

import (
	"net/http"
	"testing"

	"github.com/freightcore/backend/internal/application/identity"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	admin := env.tokens[tenancy.RoleAdmin]

	w := env.do(http.MethodPost, "/api/v1/users", admin, map[string]any{
		"branch_id": env.delhi.ID,
		"username":  "Delhi.Ops",
		"password":  testPassword,
		"role":      "operator",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	u := decode[identity.UserResponse](t, w)
	assert.Equal(t, "delhi.ops", u.Username)
	assert.Equal(t, tenancy.RoleOperator, u.Role)

	w = env.do(http.MethodPost, "/api/v1/users", admin, map[string]any{
		"branch_id": env.delhi.ID,
		"username":  "delhi.admin",
		"password":  testPassword,
		"role":      "admin",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodPost, "/api/v1/users", admin, map[string]any{
		"branch_id": env.delhi.ID,
		"username":  "delhi.ops",
		"password":  testPassword,
		"role":      "operator",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserHandler_ChangeRole_SelfEscalationDenied(t *testing.T) {
	env := newTestEnv(t)

	for _, role := range []tenancy.Role{tenancy.RoleOperator, tenancy.RoleAdmin, tenancy.RoleOrgAdmin} {
		t.Run(role.String(), func(t *testing.T) {
			self := env.users[role]
			w := env.do(http.MethodPut, "/api/v1/users/"+self.ID.String()+"/role", env.tokens[role], map[string]any{"role": "super_admin"})
			assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
			assert.Equal(t, "FORBIDDEN", errorOf(t, w).Code)
		})
	}
}

func TestUserHandler_ChangeRole_Promote(t *testing.T) {
	env := newTestEnv(t)
	operator := env.users[tenancy.RoleOperator]

	w := env.do(http.MethodPut, "/api/v1/users/"+operator.ID.String()+"/role", env.tokens[tenancy.RoleOrgAdmin], map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, tenancy.RoleAdmin, decode[identity.UserResponse](t, w).Role)

	w = env.do(http.MethodPut, "/api/v1/users/"+operator.ID.String()+"/role", env.tokens[tenancy.RoleOrgAdmin], map[string]any{"role": "root"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_List(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/users", env.tokens[tenancy.RoleAdmin], nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[[]identity.UserResponse](t, w), 3)

	w = env.do(http.MethodGet, "/api/v1/users", env.tokens[tenancy.RoleOperator], nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
