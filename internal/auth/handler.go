package auth

import (
	"net/http"

	"SchoolManager/pkg/response"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service *UserService
	logger  *zap.Logger
}

func NewAuthHandler(service *UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid Request")
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, h.logger, err)
	}
	res, err := h.service.Signup(c.Request().Context(), req)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var cred Credential
	if err := c.Bind(&cred); err != nil {
		return response.BadRequest(c, "Invalid request")
	}
	res, err := h.service.Login(c.Request().Context(), cred)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	identity, ok := IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, h.logger, err)
	}
	if err := h.service.ChangePassword(c.Request().Context(), identity.UserID, req, PasswordPolicy{}); err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	identity, ok := IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	user, err := h.service.GetUser(c.Request().Context(), identity.UserID)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":      user,
		"role":      identity.Role,
		"facultyId": identity.Claims.FacultyID,
		"roleName":  identity.Claims.RoleName,
	})
}

func (h *AuthHandler) ListUsers(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context(), Role(c.QueryParam("role")))
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AuthHandler) GetUser(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}
	user, err := h.service.GetUser(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateUser(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}
	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request")
	}
	user, err := h.service.UpdateUser(c.Request().Context(), id, req)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, user)
}
