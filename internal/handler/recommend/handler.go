package recommend

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caremeal/caremeal/app/internal/model/recipe"
	recommendService "github.com/caremeal/caremeal/app/internal/service/recommend"
	"github.com/caremeal/caremeal/app/pkg/utils"
)

// Handler 推荐食谱服务的HTTP处理器
type Handler struct {
	recipes recipe.Store
	svc     *recommendService.Service
}

// New 创建推荐处理器
func New(recipes recipe.Store, svc *recommendService.Service) *Handler {
	return &Handler{
		recipes: recipes,
		svc:     svc,
	}
}

// RegisterRoutes 注册推荐相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/recipes", h.handleCustomDiet)
	r.Get("/recipes/catalog", h.handleListRecipes)
	r.Get("/guides", h.handleGuides)
	r.Get("/healthy", h.handleHealthy)
}

// handleListRecipes 列出全部食谱
func (h *Handler) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.recipes.List())
}

// handleCustomDiet 按首个疾病和偏好筛选
func (h *Handler) handleCustomDiet(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Recipes(r.URL.Query().Get("preference"))
	if err != nil {
		if errors.Is(err, recommendService.ErrUnknownPreference) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) handleGuides(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.svc.Guides(r.URL.Query().Get("tab")))
}

func (h *Handler) handleHealthy(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.svc.Healthy())
}
