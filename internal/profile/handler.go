package profile

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loudachris/tradievoice/internal/dto"
	"github.com/loudachris/tradievoice/internal/shared"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/profile", h.Get)
	g.POST("/profile", h.Save)
}

// @Summary      Get business profile
// @Description  Returns the saved business profile, or empty defaults
// @Tags         profile
// @Produce      json
// @Success      200  {object}  dto.Profile
// @Failure      500  {object}  shared.APIError
// @Router       /api/profile [get]
func (h *Handler) Get(c echo.Context) error {
	p, err := h.store.Get(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to load profile", "error", err)
		return shared.InternalError("profile_load_failed", "failed to load profile")
	}
	return c.JSON(http.StatusOK, toDTO(p))
}

// @Summary      Save business profile
// @Description  Replaces the business profile wholesale
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        profile  body      dto.Profile  true  "Business profile"
// @Success      200      {object}  dto.Message
// @Failure      400      {object}  shared.APIError
// @Failure      500      {object}  shared.APIError
// @Router       /api/profile [post]
func (h *Handler) Save(c echo.Context) error {
	var req dto.Profile
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_body", "invalid profile payload")
	}

	p := &Profile{
		BusinessName:  req.BusinessName,
		ABN:           req.ABN,
		GSTRegistered: req.GSTRegistered,
		LogoImage:     req.LogoBase64,
		Email:         req.Email,
	}

	if err := h.store.Save(c.Request().Context(), p); err != nil {
		h.logger.Error("failed to save profile", "error", err)
		return shared.InternalError("profile_save_failed", "failed to save profile")
	}

	h.logger.Info("profile saved", "business_name", p.BusinessName, "gst_registered", p.GSTRegistered)
	return c.JSON(http.StatusOK, dto.Message{Message: "Profile saved successfully"})
}

func toDTO(p *Profile) dto.Profile {
	return dto.Profile{
		BusinessName:  p.BusinessName,
		ABN:           p.ABN,
		GSTRegistered: p.GSTRegistered,
		LogoBase64:    p.LogoImage,
		Email:         p.Email,
	}
}
