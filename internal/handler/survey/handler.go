package survey

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caremeal/caremeal/app/internal/model/diagnosis"
	sessionService "github.com/caremeal/caremeal/app/internal/service/session"
	surveyService "github.com/caremeal/caremeal/app/internal/service/survey"
	"github.com/caremeal/caremeal/app/pkg/utils"
)

// Handler 营养问卷的HTTP处理器
type Handler struct {
	surveys *surveyService.Service
}

// New 创建问卷处理器
func New(surveys *surveyService.Service) *Handler {
	return &Handler{surveys: surveys}
}

// RegisterRoutes 注册问卷相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/surveys/options", h.handleOptions)
	r.Post("/surveys", h.handleCreate)
	r.Route("/surveys/{surveyID}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Delete("/", h.handleDiscard)
		r.Put("/form", h.handleUpdateForm)
		r.Post("/conditions", h.handleToggleCondition)
		r.Post("/next", h.handleNext)
		r.Post("/back", h.handleBack)
	})
}

func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, diagnosis.FormOptions())
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"name"`
	}
	if r.ContentLength != 0 && !utils.DecodeJSON(w, r, &payload) {
		return
	}

	wizard, err := h.surveys.Start(r.Context(), payload.Name, nil)
	if err != nil {
		respondSurveyError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, wizard)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	wizard, err := h.surveys.Get(r.Context(), chi.URLParam(r, "surveyID"))
	if err != nil {
		respondSurveyError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, wizard)
}

func (h *Handler) handleDiscard(w http.ResponseWriter, r *http.Request) {
	if err := h.surveys.Discard(r.Context(), chi.URLParam(r, "surveyID")); err != nil {
		respondSurveyError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	var form diagnosis.Form
	if !utils.DecodeJSON(w, r, &form) {
		return
	}

	wizard, err := h.surveys.UpdateForm(r.Context(), chi.URLParam(r, "surveyID"), form)
	if err != nil {
		respondSurveyError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, wizard)
}

func (h *Handler) handleToggleCondition(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Condition string `json:"condition"`
	}
	if !utils.DecodeJSON(w, r, &payload) {
		return
	}

	wizard, err := h.surveys.ToggleCondition(r.Context(), chi.URLParam(r, "surveyID"), payload.Condition)
	if err != nil {
		respondSurveyError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, wizard)
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	wizard, err := h.surveys.Next(r.Context(), chi.URLParam(r, "surveyID"))
	if err != nil {
		respondSurveyError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, wizard)
}

func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	wizard, err := h.surveys.Back(r.Context(), chi.URLParam(r, "surveyID"))
	if err != nil {
		respondSurveyError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, wizard)
}

// respondSurveyError 将服务层错误映射为HTTP状态码
func respondSurveyError(w http.ResponseWriter, err error) {
	var validation *surveyService.ValidationError
	switch {
	case errors.As(err, &validation):
		utils.RespondJSON(w, http.StatusBadRequest, map[string]any{
			"error": validation.Message,
			"step":  validation.Step,
		})
	case errors.Is(err, surveyService.ErrWizardNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, surveyService.ErrWizardCompleted),
		errors.Is(err, surveyService.ErrWizardBusy):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, surveyService.ErrUnknownCondition),
		errors.Is(err, sessionService.ErrSignupIncomplete),
		errors.Is(err, sessionService.ErrPasswordMismatch):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, sessionService.ErrSignupFailed):
		utils.RespondError(w, http.StatusBadGateway, sessionService.ErrSignupFailed.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
