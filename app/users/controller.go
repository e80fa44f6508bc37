package users

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"plinth/app/models"
	"plinth/core/dispatcher"
	"plinth/core/router"
	"plinth/core/types"
)

type UserController struct {
	Service    *UserService
	Dispatcher *dispatcher.Dispatcher
}

func NewUserController(service *UserService, disp *dispatcher.Dispatcher) *UserController {
	return &UserController{
		Service:    service,
		Dispatcher: disp,
	}
}

func (c *UserController) Routes(router *router.RouterGroup) {
	router.POST("/auth/register", c.Register)
	router.POST("/auth/login", c.Login)
	router.POST("/auth/google", c.GoogleLogin)
	router.GET("/users/:id", c.Get)
}

func (c *UserController) Register(ctx *router.Context) error {
	var req models.RegisterUserRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	cmd := &Register{Req: &req}
	if err := c.Dispatcher.Dispatch(ctx.Request.Context(), cmd); err != nil {
		if strings.Contains(err.Error(), "already registered") {
			return ctx.JSON(http.StatusConflict, types.ErrorResponse{Error: err.Error()})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to register: " + err.Error()})
	}

	return ctx.JSON(http.StatusCreated, cmd.Result)
}

func (c *UserController) Login(ctx *router.Context) error {
	var req models.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	cmd := &Login{Req: &req}
	if err := c.Dispatcher.Dispatch(ctx.Request.Context(), cmd); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return ctx.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: err.Error()})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to login: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, cmd.Result)
}

func (c *UserController) GoogleLogin(ctx *router.Context) error {
	var req models.GoogleLoginRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	cmd := &GoogleLogin{Req: &req}
	if err := c.Dispatcher.Dispatch(ctx.Request.Context(), cmd); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return ctx.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: err.Error()})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to login: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, cmd.Result)
}

func (c *UserController) Get(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid id format"})
	}

	user, err := c.Service.GetById(uint(id))
	if err != nil {
		return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "User not found"})
	}

	return ctx.JSON(http.StatusOK, user.ToResponse())
}
