package student

import (
	"net/http"

	"SchoolManager/internal/auth"
	"SchoolManager/pkg/response"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type StudentHandler struct {
	service *StudentService
	logger  *zap.Logger
}

func NewStudentHandler(service *StudentService, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{service: service, logger: logger}
}

func (h *StudentHandler) Create(c echo.Context) error {
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
	st, err := h.service.Create(c.Request().Context(), req, createdBy)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, st)
}

func (h *StudentHandler) List(c echo.Context) error {
	var active *bool
	switch c.QueryParam("active") {
	case "true":
		v := true
		active = &v
	case "false":
		v := false
		active = &v
	}
	students, err := h.service.List(c.Request().Context(), active)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, students)
}

func (h *StudentHandler) Get(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}
	st, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *StudentHandler) Update(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, h.logger, err)
	}
	st, err := h.service.Update(c.Request().Context(), id, req)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *StudentHandler) SetStatus(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}
	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, h.logger, err)
	}
	st, err := h.service.SetActive(c.Request().Context(), id, *req.Active)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *StudentHandler) Login(c echo.Context) error {
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
