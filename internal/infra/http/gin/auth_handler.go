package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"hotelbook/internal/app/dto"
	clientsapp "hotelbook/internal/app/handlers/clients"
	"hotelbook/internal/app/queries"
	authsvc "hotelbook/internal/app/services/auth"
)

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Me(c *gin.Context)
}

type AuthHandler struct {
	Service *authsvc.Service
	Queries queries.Bus
	Logger  *slog.Logger
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h AuthHandler) Register(c *gin.Context) {
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "auth service unavailable", Kind: kindUnavailable})
		return
	}
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	result, err := h.Service.Register(c.Request.Context(), authsvc.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewAuthResponse(result.Client, result.Token, result.ExpiresAt))
}

func (h AuthHandler) Login(c *gin.Context) {
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "auth service unavailable", Kind: kindUnavailable})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	result, err := h.Service.Login(c.Request.Context(), authsvc.LoginParams{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Info("login rejected", "email", strings.TrimSpace(req.Email), "error", err)
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAuthResponse(result.Client, result.Token, result.ExpiresAt))
}

func (h AuthHandler) Me(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	client, err := queries.Ask[clientsapp.GetClientQuery, dto.Client](c.Request.Context(), h.Queries, clientsapp.GetClientQuery{ID: user.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

var _ AuthHTTP = AuthHandler{}
