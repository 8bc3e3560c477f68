package controllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"accounts-be/internal/middleware"
	"accounts-be/internal/models"
	"accounts-be/internal/password"
	"accounts-be/internal/service"
)

var errBlankName = errors.New("name must not be blank")

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// Register handles POST /api/register
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		invalidBody(c, errBlankName)
		return
	}

	user, err := ac.authService.Register(c.Request.Context(), &req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, user)
	case errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "Email already registered"})
	case errors.Is(err, password.ErrPasswordTooLong):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Detail: "Password is too long"})
	default:
		internalError(c, err)
	}
}

// Login handles POST /api/login
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	resp, err := ac.authService.Login(c.Request.Context(), &req)
	if err == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	var locked *service.LockedError
	switch {
	case errors.As(err, &locked):
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(locked.RetryAfter.Seconds()))))
		c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Detail: "Too many failed login attempts"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Detail: "Invalid credentials"})
	default:
		internalError(c, err)
	}
}

// Profile handles GET /api/user/profile; requires middleware.AuthMiddleware.
func (ac *AuthController) Profile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Detail: "Could not validate credentials"})
		return
	}

	c.JSON(http.StatusOK, models.ProfileResponse{Name: user.Name})
}

func invalidBody(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
		Detail:  "Invalid request body",
		Details: err.Error(),
	})
}

// internalError hides the cause from the client; the request logger reports it.
func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Internal server error"})
}
