package role

import (
	"net/http"

	"SchoolManager/internal/auth"
	"SchoolManager/pkg/response"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type RoleHandler struct {
	service *RoleService
	logger  *zap.Logger
}

func NewRoleHandler(service *RoleService, logger *zap.Logger) *RoleHandler {
	return &RoleHandler{service: service, logger: logger}
}

func (h *RoleHandler) Create(c echo.Context) error {
	var req CreateRoleRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, h.logger, err)
	}
	var createdBy primitive.ObjectID
	if identity, ok := auth.IdentityFrom(c); ok {
		createdBy = identity.UserID
	}
	role, err := h.service.Create(c.Request().Context(), req, createdBy)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, role)
}

func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.service.List(c.Request().Context(), c.QueryParam("active") == "true")
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *RoleHandler) Get(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid role ID")
	}
	role, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) Update(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid role ID")
	}
	var req UpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, h.logger, err)
	}
	role, err := h.service.Update(c.Request().Context(), id, req)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) SetStatus(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid role ID")
	}
	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, h.logger, err)
	}
	role, err := h.service.SetActive(c.Request().Context(), id, *req.Active)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, role)
}
