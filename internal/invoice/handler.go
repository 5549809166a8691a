package invoice

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/loudachris/tradievoice/internal/dto"
	"github.com/loudachris/tradievoice/internal/extraction"
	"github.com/loudachris/tradievoice/internal/ledger"
	"github.com/loudachris/tradievoice/internal/profile"
	"github.com/loudachris/tradievoice/internal/shared"
)

type ProfileGetter interface {
	Get(ctx context.Context) (*profile.Profile, error)
}

type Handler struct {
	profiles ProfileGetter
	logger   *slog.Logger
}

func NewHandler(profiles ProfileGetter, logger *slog.Logger) *Handler {
	return &Handler{profiles: profiles, logger: logger}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/generate-invoice", h.Generate)
}

// @Summary      Generate a PDF invoice
// @Description  Renders the quote as a branded PDF using the saved business profile. The total is recomputed server-side; the client's total_amount is ignored.
// @Tags         invoices
// @Accept       json
// @Produce      application/pdf
// @Param        request  body  dto.GenerateInvoiceRequest  true  "Quote to invoice"
// @Success      200  {file}    file
// @Failure      400  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Router       /api/generate-invoice [post]
func (h *Handler) Generate(c echo.Context) error {
	var req dto.GenerateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_body", "invalid invoice payload")
	}

	items, dropped := extraction.Coerce(&extraction.RawQuote{Items: rawItems(req.QuoteData.Items)})
	if dropped > 0 {
		return shared.BadRequest("invalid_amount", "item amounts must be finite non-negative numbers")
	}

	led := ledger.New(ledger.Options{})
	for _, item := range items {
		if err := led.AddItem(item); err != nil {
			return shared.BadRequest("invalid_amount", err.Error())
		}
	}
	snap := led.Snapshot()

	quote := req.QuoteData
	quote.TotalAmount = snap.Total.InexactFloat64()
	quote.Items = make([]dto.QuoteItem, len(snap.Items))
	for i, item := range snap.Items {
		quote.Items[i] = dto.QuoteItem{
			Description: item.Description,
			Quantity:    item.Quantity.InexactFloat64(),
			UnitPrice:   item.UnitPrice.InexactFloat64(),
			Total:       item.Amount.InexactFloat64(),
		}
	}

	prof, err := h.profiles.Get(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to load profile for invoice", "error", err)
		return shared.InternalError("profile_load_failed", "failed to load business profile")
	}

	var buf bytes.Buffer
	if err := Render(&buf, toProfileDTO(prof), quote); err != nil {
		h.logger.Error("invoice rendering failed", "error", err)
		return shared.InternalError("invoice_render_failed", "failed to generate invoice")
	}

	filename := "invoice_" + uuid.NewString() + ".pdf"
	h.logger.Info("invoice generated",
		"filename", filename,
		"items", len(quote.Items),
		"total", quote.TotalAmount)

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

func rawItems(items []dto.QuoteItem) []extraction.RawItem {
	raw := make([]extraction.RawItem, len(items))
	for i, item := range items {
		raw[i] = extraction.RawItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		}
	}
	return raw
}

func toProfileDTO(p *profile.Profile) dto.Profile {
	return dto.Profile{
		BusinessName:  p.BusinessName,
		ABN:           p.ABN,
		GSTRegistered: p.GSTRegistered,
		LogoBase64:    p.LogoImage,
		Email:         p.Email,
	}
}
