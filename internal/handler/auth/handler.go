package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	sessionService "github.com/caremeal/caremeal/app/internal/service/session"
	surveyService "github.com/caremeal/caremeal/app/internal/service/survey"
	"github.com/caremeal/caremeal/app/pkg/utils"
)

// Handler 登录、注册与会话状态的HTTP处理器
type Handler struct {
	sessions *sessionService.Service
	surveys  *surveyService.Service
}

// New 创建认证处理器
func New(sessions *sessionService.Service, surveys *surveyService.Service) *Handler {
	return &Handler{
		sessions: sessions,
		surveys:  surveys,
	}
}

// RegisterRoutes 注册认证相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/session", h.handleState)
	r.Post("/login", h.handleLogin)
	r.Post("/test-login", h.handleTestLogin)
	r.Post("/logout", h.handleLogout)
	r.Post("/signup", h.handleSignup)
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.sessions.State())
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID   string `json:"userId"`
		Password string `json:"password"`
	}
	if !utils.DecodeJSON(w, r, &payload) {
		return
	}
	if payload.UserID == "" || payload.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId and password are required")
		return
	}

	if _, err := h.sessions.Login(r.Context(), payload.UserID, payload.Password); err != nil {
		var rejected *sessionService.LoginRejectedError
		switch {
		case errors.As(err, &rejected):
			utils.RespondError(w, http.StatusUnauthorized, rejected.Error())
		case errors.Is(err, sessionService.ErrLoginFailed):
			utils.RespondError(w, http.StatusBadGateway, sessionService.ErrLoginFailed.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, h.sessions.State())
}

func (h *Handler) handleTestLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.TestLogin(r.Context()); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.sessions.State())
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.sessions.State())
}

// handleSignup 校验注册表单并开启带凭证的问卷
func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var creds sessionService.Credentials
	if !utils.DecodeJSON(w, r, &creds) {
		return
	}

	wizard, err := h.surveys.Start(r.Context(), creds.Name, &creds)
	if err != nil {
		if errors.Is(err, sessionService.ErrSignupIncomplete) || errors.Is(err, sessionService.ErrPasswordMismatch) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, wizard)
}
