package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tenishevR/tic-tac-toe-web/internal/api/middleware"
	"github.com/tenishevR/tic-tac-toe-web/internal/api/models"
	"github.com/tenishevR/tic-tac-toe-web/internal/api/response"
	"github.com/tenishevR/tic-tac-toe-web/internal/api/service"
)

// UserController handles accounts and the tokens that name players.
type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{userService: userService}
}

// Register creates an account. A taken username is a 409.
func (uc *UserController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := uc.userService.Register(c.Request.Context(), &req); err != nil {
		response.FromError(c, err)
		return
	}
	response.CreatedResponse(c, models.ProfileResponse{Username: req.Username, Authenticated: false})
}

// Login exchanges credentials for a bearer token.
func (uc *UserController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	token, err := uc.userService.Login(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, models.LoginResponse{Token: token, Username: req.Username})
}

// GuestLogin hands out a fresh client id for anonymous play.
func (uc *UserController) GuestLogin(c *gin.Context) {
	clientID, err := uc.userService.GuestLogin(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, models.GuestResponse{ClientID: clientID})
}

// Me reports who the request's token belongs to. Anonymous callers get 401.
func (uc *UserController) Me(c *gin.Context) {
	username := middleware.Username(c)
	if username == "" {
		response.FromError(c, service.ErrInvalidToken)
		return
	}
	response.SuccessResponse(c, models.ProfileResponse{Username: username, Authenticated: true})
}
