package faculty

import (
	"net/http"

	"SchoolManager/internal/auth"
	"SchoolManager/pkg/response"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type FacultyHandler struct {
	registrar *Registrar
	service   *FacultyService
	logger    *zap.Logger
}

func NewFacultyHandler(registrar *Registrar, service *FacultyService, logger *zap.Logger) *FacultyHandler {
	return &FacultyHandler{registrar: registrar, service: service, logger: logger}
}

func (h *FacultyHandler) Add(c echo.Context) error {
	var req RegisterRequest
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
	reg, err := h.registrar.Register(c.Request().Context(), req, createdBy)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, reg)
}

func (h *FacultyHandler) List(c echo.Context) error {
	filter := ListFilter{Department: c.QueryParam("department")}
	switch c.QueryParam("active") {
	case "true":
		v := true
		filter.Active = &v
	case "false":
		v := false
		filter.Active = &v
	}
	views, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *FacultyHandler) Get(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid faculty ID")
	}
	v, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *FacultyHandler) Update(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid faculty ID")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, h.logger, err)
	}
	v, err := h.registrar.Update(c.Request().Context(), id, req)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *FacultyHandler) SetStatus(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid faculty ID")
	}
	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, h.logger, err)
	}
	f, err := h.registrar.SetActive(c.Request().Context(), id, *req.Active)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FacultyHandler) Login(c echo.Context) error {
	var cred auth.Credential
	if err := c.Bind(&cred); err != nil {
		return response.BadRequest(c, "Invalid request")
	}
	res, err := h.service.Login(c.Request().Context(), cred)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *FacultyHandler) ChangePassword(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	var req auth.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, h.logger, err)
	}
	if err := h.service.ChangePassword(c.Request().Context(), identity.UserID, req); err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password changed successfully"})
}
