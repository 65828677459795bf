package meals

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/caremeal/caremeal/app/internal/model/meal"
	meallogService "github.com/caremeal/caremeal/app/internal/service/meallog"
	"github.com/caremeal/caremeal/app/pkg/utils"
)

const maxUploadBytes = 10 << 20

// Handler 餐食与血糖记录的HTTP处理器
type Handler struct {
	meals *meallogService.Service
}

// New 创建餐食记录处理器
func New(meals *meallogService.Service) *Handler {
	return &Handler{meals: meals}
}

// RegisterRoutes 注册餐食记录相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/meals/{date}", h.handleDay)
	r.Put("/meals/{date}/{slot}", h.handleUpdateMeal)
	r.Delete("/meals/{date}/{slot}", h.handleRemoveMeal)
	r.Post("/meals/analyze", h.handleAnalyze)
	r.Put("/bloodsugar/{date}", h.handleReplaceBloodSugar)
	r.Put("/bloodsugar/{date}/{slot}", h.handleUpdateBloodSugar)
	r.Get("/calendar/week", h.handleWeek)
	r.Get("/calendar/month", h.handleMonth)
	r.Get("/dashboard", h.handleDashboard)
}

// dateParam 允许用 "today" 代替具体日期
func dateParam(r *http.Request) string {
	date := chi.URLParam(r, "date")
	if date == "today" {
		return ""
	}
	return date
}

func (h *Handler) handleDay(w http.ResponseWriter, r *http.Request) {
	day, err := h.meals.Day(r.Context(), dateParam(r))
	if err != nil {
		respondMealError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, day)
}

func (h *Handler) handleUpdateMeal(w http.ResponseWriter, r *http.Request) {
	slot, err := meal.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var form meallogService.MealForm
	if !utils.DecodeJSON(w, r, &form) {
		return
	}

	day, err := h.meals.UpdateMeal(r.Context(), dateParam(r), slot, form.Item())
	if err != nil {
		respondMealError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, day)
}

func (h *Handler) handleRemoveMeal(w http.ResponseWriter, r *http.Request) {
	slot, err := meal.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	day, err := h.meals.RemoveMeal(r.Context(), dateParam(r), slot)
	if err != nil {
		respondMealError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, day)
}

func (h *Handler) handleUpdateBloodSugar(w http.ResponseWriter, r *http.Request) {
	slot, err := meal.ParseSugarSlot(chi.URLParam(r, "slot"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload struct {
		Value *float64 `json:"value"`
	}
	if !utils.DecodeJSON(w, r, &payload) {
		return
	}
	if payload.Value != nil && *payload.Value < 0 {
		utils.RespondError(w, http.StatusBadRequest, "value must not be negative")
		return
	}

	day, err := h.meals.UpdateBloodSugar(r.Context(), dateParam(r), slot, payload.Value)
	if err != nil {
		respondMealError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, day)
}

func (h *Handler) handleReplaceBloodSugar(w http.ResponseWriter, r *http.Request) {
	var entry meal.BloodSugarEntry
	if !utils.DecodeJSON(w, r, &entry) {
		return
	}

	day, err := h.meals.ReplaceBloodSugar(r.Context(), dateParam(r), entry)
	if err != nil {
		respondMealError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, day)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	filename, _, data, ok := utils.ReadUpload(w, r, "file", maxUploadBytes)
	if !ok {
		return
	}

	analysis, err := h.meals.AnalyzeImage(r.Context(), filename, data)
	if err != nil {
		respondMealError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, analysis)
}

func (h *Handler) handleWeek(w http.ResponseWriter, r *http.Request) {
	days, err := h.meals.Week(r.URL.Query().Get("date"))
	if err != nil {
		respondMealError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, days)
}

func (h *Handler) handleMonth(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	if raw := r.URL.Query().Get("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			utils.RespondError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = v
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 12 {
			utils.RespondError(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = v
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"year":  year,
		"month": month,
		"days":  h.meals.Month(year, time.Month(month)),
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.meals.Dashboard())
}

func respondMealError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, meallogService.ErrInvalidDate),
		errors.Is(err, meallogService.ErrEmptyImage):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, meallogService.ErrAnalyzerMissing):
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		utils.RespondError(w, http.StatusBadGateway, err.Error())
	}
}
