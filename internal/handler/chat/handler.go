package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatModel "github.com/caremeal/caremeal/app/internal/model/chat"
	"github.com/caremeal/caremeal/app/internal/model/meal"
	chatService "github.com/caremeal/caremeal/app/internal/service/chat"
	meallogService "github.com/caremeal/caremeal/app/internal/service/meallog"
	"github.com/caremeal/caremeal/app/pkg/utils"
)

const maxUploadBytes = 10 << 20

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	meals   *meallogService.Service
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, meals *meallogService.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		meals:   meals,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/messages", h.handleList)
	r.Post("/chat/messages", h.handleSend)
	r.Delete("/chat/messages", h.handleClear)
	r.Delete("/chat/messages/{messageID}", h.handleDelete)
	r.Get("/chat/messages/{messageID}/meal", h.handleExtractMeal)
	r.Post("/chat/messages/{messageID}/meal", h.handleSaveMeal)
	r.Post("/chat/images", h.handleUploadImage)
}

type exchange struct {
	User  chatModel.View `json:"user"`
	Reply chatModel.View `json:"reply"`
}

func newExchange(user, reply chatModel.Message) exchange {
	return exchange{User: chatModel.NewView(user), Reply: chatModel.NewView(reply)}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"messages": chatModel.Views(h.chatSvc.Messages()),
		"pending":  h.chatSvc.Pending(),
	})
}

// handleSend 发送消息并等待回复
func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if !utils.DecodeJSON(w, r, &payload) {
		return
	}

	user, reply, err := h.chatSvc.Send(r.Context(), payload.Text)
	if err != nil {
		respondChatError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, newExchange(user, reply))
}

func (h *Handler) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	filename, contentType, data, ok := utils.ReadUpload(w, r, "file", maxUploadBytes)
	if !ok {
		return
	}

	user, reply, err := h.chatSvc.UploadImage(r.Context(), filename, contentType, data)
	if err != nil {
		respondChatError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, newExchange(user, reply))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.Delete(r.Context(), chi.URLParam(r, "messageID")); err != nil {
		respondChatError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.ClearAll(r.Context()); err != nil {
		respondChatError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": chatModel.Views(h.chatSvc.Messages())})
}

func (h *Handler) handleExtractMeal(w http.ResponseWriter, r *http.Request) {
	result, err := h.chatSvc.ExtractMeal(r.Context(), chi.URLParam(r, "messageID"))
	if err != nil {
		respondChatError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"item":       result.Item,
		"structured": result.Structured,
	})
}

// handleSaveMeal 将AI回复中的餐食保存到指定日期的餐次
func (h *Handler) handleSaveMeal(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Date      string `json:"date"`
		Slot      string `json:"slot"`
		Overwrite bool   `json:"overwrite"`
	}
	if !utils.DecodeJSON(w, r, &payload) {
		return
	}

	slot, err := meal.ParseSlot(payload.Slot)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.chatSvc.ExtractMeal(r.Context(), chi.URLParam(r, "messageID"))
	if err != nil {
		respondChatError(w, err)
		return
	}

	day, err := h.meals.SaveFromChat(r.Context(), payload.Date, slot, result.Item, payload.Overwrite)
	if err != nil {
		var occupied *meallogService.SlotOccupiedError
		switch {
		case errors.As(err, &occupied):
			utils.RespondJSON(w, http.StatusConflict, map[string]any{
				"error":    err.Error(),
				"existing": occupied.Existing,
				"slot":     occupied.Slot,
				"date":     occupied.Date,
			})
		case errors.Is(err, meallogService.ErrInvalidDate):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	utils.RespondJSON(w, http.StatusOK, day)
}

func respondChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrEmptyMessage),
		errors.Is(err, chatService.ErrEmptyImage),
		errors.Is(err, chatService.ErrGreetingProtected),
		errors.Is(err, chatService.ErrNotAnAIMessage):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chatService.ErrMessageNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chatService.ErrBusy):
		utils.RespondError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
