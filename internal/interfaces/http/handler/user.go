package handler

import (
	"github.com/freightcore/backend/internal/application/identity"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/freightcore/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	OrgID       *uuid.UUID `json:"org_id,omitempty"`
	BranchID    uuid.UUID  `json:"branch_id" binding:"required"`
	Username    string     `json:"username" binding:"required,min=3,max=100" example:"pune.ops"`
	Password    string     `json:"password" binding:"required,min=8,max=72"`
	DisplayName string     `json:"display_name,omitempty" binding:"max=200"`
	Role        string     `json:"role" binding:"required,oneof=operator admin org_admin super_admin" example:"operator"`
}

// ChangeRoleRequest is the body of PUT /users/:id/role
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=operator admin org_admin super_admin" example:"admin"`
}

// UserHandler handles user administration
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identity.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create godoc
// @ID           createUser
// @Summary      Create a user
// @Description  The new user's role must rank below the caller's
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "User"
// @Success      201 {object} APIResponse[identity.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	user, err := h.userService.Create(c.Request.Context(), principal(c), identity.CreateUserInput{
		OrgID:       req.OrgID,
		BranchID:    req.BranchID,
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        tenancy.Role(req.Role),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// ChangeRole godoc
// @ID           changeUserRole
// @Summary      Change a user's role
// @Description  Both the current and the new role must rank below the caller's. Nobody can raise their own role.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id      path string            true "User ID" format(uuid)
// @Param        request body ChangeRoleRequest true "Role"
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/role [put]
func (h *UserHandler) ChangeRole(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	user, err := h.userService.ChangeRole(c.Request.Context(), principal(c), id, identity.ChangeRoleInput{Role: tenancy.Role(req.Role)})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// List godoc
// @ID           listUsers
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        search    query string false "Username"
// @Success      200 {object} APIResponse[[]identity.UserResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.userService.List(c.Request.Context(), principal(c), identity.UserListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}
