package stream

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/caremeal/caremeal/app/internal/model/chat"
	chatService "github.com/caremeal/caremeal/app/internal/service/chat"
	"github.com/caremeal/caremeal/app/pkg/utils"
)

// Handler manages chat replies delivered via Server-Sent Events
type Handler struct {
	chatSvc *chatService.Service
	log     *logrus.Entry
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		log:     logrus.WithField("component", "stream"),
	}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event    string     `json:"event"`
	Message  *chat.View `json:"message,omitempty"`
	Finished bool       `json:"finished,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// RegisterRoutes 注册流式聊天路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/stream", h.handleStream)
}

// handleStream records the message, then pushes start, pending, message and
// end frames while the reply tiers run.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	text := r.URL.Query().Get("message")
	ctx := r.Context()

	userMsg, err := h.chatSvc.Begin(ctx, text)
	if err != nil {
		switch {
		case errors.Is(err, chatService.ErrEmptyMessage):
			utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		case errors.Is(err, chatService.ErrBusy):
			utils.RespondError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	userView := chat.NewView(userMsg)
	utils.SendSSEChunk(w, flusher, StreamResponse{Event: "start", Message: &userView})
	utils.SendSSEChunk(w, flusher, StreamResponse{Event: "pending"})

	reply, err := h.chatSvc.Complete(ctx, userMsg)
	if err != nil {
		h.log.WithError(err).Warn("reply stored with errors")
		utils.SendSSEChunk(w, flusher, StreamResponse{Event: "error", Error: err.Error()})
	}

	replyView := chat.NewView(reply)
	utils.SendSSEChunk(w, flusher, StreamResponse{Event: "message", Message: &replyView})
	utils.SendSSEChunk(w, flusher, StreamResponse{Event: "end", Finished: true})

	h.log.WithField("message_id", reply.ID).Debug("stream completed")
}
