package class

import (
	"net/http"

	"SchoolManager/internal/auth"
	"SchoolManager/pkg/response"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ClassHandler struct {
	service *ClassService
	logger  *zap.Logger
}

func NewClassHandler(service *ClassService, logger *zap.Logger) *ClassHandler {
	return &ClassHandler{service: service, logger: logger}
}

func (h *ClassHandler) Create(c echo.Context) error {
	var req CreateRequest
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
	cls, err := h.service.Create(c.Request().Context(), req, createdBy)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, cls)
}

func (h *ClassHandler) List(c echo.Context) error {
	filter := ListFilter{AcademicYear: c.QueryParam("academicYear")}
	if t := c.QueryParam("classTeacher"); t != "" {
		id, err := primitive.ObjectIDFromHex(t)
		if err != nil {
			return response.BadRequest(c, "Invalid class teacher ID")
		}
		filter.ClassTeacher = id
	}
	classes, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, classes)
}

func (h *ClassHandler) Get(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid class ID")
	}
	cls, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, cls)
}

func (h *ClassHandler) Update(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid class ID")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, h.logger, err)
	}
	cls, err := h.service.Update(c.Request().Context(), id, req)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, cls)
}

func (h *ClassHandler) Delete(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid class ID")
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Class deleted successfully"})
}
