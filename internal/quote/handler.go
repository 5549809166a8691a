package quote

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/loudachris/tradievoice/internal/dto"
	"github.com/loudachris/tradievoice/internal/extraction"
	"github.com/loudachris/tradievoice/internal/ledger"
	"github.com/loudachris/tradievoice/internal/shared"
	"github.com/loudachris/tradievoice/internal/transcription"
)

// SessionHeader names a running quote session on transcription requests.
// Without it, a transcription stands alone and nothing is persisted.
const SessionHeader = "X-Quote-Session"

type SessionStore interface {
	Create(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, sess *Session) error
}

type Handler struct {
	sessions    SessionStore
	transcriber transcription.Transcriber
	extractor   extraction.Extractor
	logger      *slog.Logger
}

func NewHandler(sessions SessionStore, transcriber transcription.Transcriber, extractor extraction.Extractor, logger *slog.Logger) *Handler {
	return &Handler{
		sessions:    sessions,
		transcriber: transcriber,
		extractor:   extractor,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/quotes", h.CreateSession)
	g.GET("/quotes/:id", h.GetSession)
	g.POST("/quotes/:id/items", h.AddItem)
	g.POST("/quotes/:id/reset", h.ResetSession)
	g.POST("/quotes/:id/mode", h.SetMode)
	g.POST("/transcribe", h.Transcribe)
}

// replay rebuilds the ledger for a session. The upsell hook is armed so a
// crossing caused by the current request is logged exactly once for the
// session's lifetime; items already stored were validated on the way in,
// so replay cannot fail.
func (h *Handler) replay(sess *Session) *ledger.Ledger {
	led := ledger.New(ledger.Options{OnUpsell: func(total decimal.Decimal) {
		if sess.UpsellNotified {
			return
		}
		sess.UpsellNotified = true
		h.logger.Info("upsell opportunity raised",
			"session_id", sess.ID,
			"total", total.StringFixed(2))
	}})
	if sess.Mode != "" {
		_ = led.SetMode(sess.Mode)
	}
	for _, item := range sess.Items {
		_ = led.AddItem(item)
	}
	return led
}

// @Summary      Start a quote session
// @Description  Creates an empty running quote
// @Tags         quotes
// @Produce      json
// @Success      201  {object}  dto.QuoteSession
// @Failure      500  {object}  shared.APIError
// @Router       /api/quotes [post]
func (h *Handler) CreateSession(c echo.Context) error {
	sess := &Session{}
	if err := h.sessions.Create(c.Request().Context(), sess); err != nil {
		h.logger.Error("failed to create quote session", "error", err)
		return shared.InternalError("session_create_failed", "failed to create quote session")
	}
	return c.JSON(http.StatusCreated, toSessionDTO(sess, h.replay(sess).Snapshot()))
}

// @Summary      Get a quote session
// @Description  Returns the session with the total and upsell signal recomputed
// @Tags         quotes
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  dto.QuoteSession
// @Failure      404  {object}  shared.APIError
// @Router       /api/quotes/{id} [get]
func (h *Handler) GetSession(c echo.Context) error {
	sess, err := h.loadSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionDTO(sess, h.replay(sess).Snapshot()))
}

// @Summary      Add a line item
// @Description  Appends one validated item to the running quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Session ID"
// @Param        item  body      dto.AddItemRequest  true  "Line item"
// @Success      200   {object}  dto.QuoteSession
// @Failure      400   {object}  shared.APIError
// @Failure      404   {object}  shared.APIError
// @Failure      500   {object}  shared.APIError
// @Router       /api/quotes/{id}/items [post]
func (h *Handler) AddItem(c echo.Context) error {
	sess, err := h.loadSession(c)
	if err != nil {
		return err
	}

	var req dto.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_body", "invalid item payload")
	}

	items, dropped := extraction.Coerce(&extraction.RawQuote{Items: []extraction.RawItem{{
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Total:       req.Total,
	}}})
	if dropped > 0 || len(items) == 0 {
		return shared.BadRequest("invalid_amount", "item amount must be a finite non-negative number")
	}

	led := h.replay(sess)
	if err := led.AddItem(items[0]); err != nil {
		return shared.BadRequest("invalid_amount", err.Error())
	}

	sess.Items = led.Items()
	if err := h.sessions.Update(c.Request().Context(), sess); err != nil {
		h.logger.Error("failed to update quote session", "error", err, "session_id", sess.ID)
		return shared.InternalError("session_update_failed", "failed to update quote session")
	}
	return c.JSON(http.StatusOK, toSessionDTO(sess, led.Snapshot()))
}

// @Summary      Reset a quote session
// @Description  Clears all items and re-arms the upsell notification
// @Tags         quotes
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  dto.QuoteSession
// @Failure      404  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Router       /api/quotes/{id}/reset [post]
func (h *Handler) ResetSession(c echo.Context) error {
	sess, err := h.loadSession(c)
	if err != nil {
		return err
	}

	led := h.replay(sess)
	led.Reset()

	sess.Items = nil
	sess.UpsellNotified = false
	if err := h.sessions.Update(c.Request().Context(), sess); err != nil {
		h.logger.Error("failed to update quote session", "error", err, "session_id", sess.ID)
		return shared.InternalError("session_update_failed", "failed to update quote session")
	}
	return c.JSON(http.StatusOK, toSessionDTO(sess, led.Snapshot()))
}

// @Summary      Switch capture mode
// @Description  Sets command or walkthrough mode; items and total are untouched
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Session ID"
// @Param        mode  body      dto.SetModeRequest  true  "Capture mode"
// @Success      200   {object}  dto.QuoteSession
// @Failure      400   {object}  shared.APIError
// @Failure      404   {object}  shared.APIError
// @Failure      500   {object}  shared.APIError
// @Router       /api/quotes/{id}/mode [post]
func (h *Handler) SetMode(c echo.Context) error {
	sess, err := h.loadSession(c)
	if err != nil {
		return err
	}

	var req dto.SetModeRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_body", "invalid mode payload")
	}

	mode, err := ledger.ParseMode(req.Mode)
	if err != nil {
		return shared.BadRequest("invalid_mode", err.Error())
	}

	led := h.replay(sess)
	if err := led.SetMode(mode); err != nil {
		return shared.BadRequest("invalid_mode", err.Error())
	}

	sess.Mode = mode
	if err := h.sessions.Update(c.Request().Context(), sess); err != nil {
		h.logger.Error("failed to update quote session", "error", err, "session_id", sess.ID)
		return shared.InternalError("session_update_failed", "failed to update quote session")
	}
	return c.JSON(http.StatusOK, toSessionDTO(sess, led.Snapshot()))
}

// @Summary      Transcribe a recording into quote items
// @Description  Uploads an audio clip, extracts line items, and returns the quote with a recomputed total. With an X-Quote-Session header the items are appended to that session.
// @Tags         quotes
// @Accept       multipart/form-data
// @Produce      json
// @Param        file             formData  file    true   "Recorded audio clip"
// @Param        X-Quote-Session  header    string  false  "Running quote session ID"
// @Success      200  {object}  dto.QuoteData
// @Failure      400  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Failure      502  {object}  shared.APIError
// @Router       /api/transcribe [post]
func (h *Handler) Transcribe(c echo.Context) error {
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return shared.BadRequest("missing_file", "audio file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("failed to open uploaded audio", "error", err)
		return shared.InternalError("file_open_failed", "failed to read uploaded audio")
	}
	defer file.Close()

	transcript, err := h.transcriber.Transcribe(ctx, fileHeader.Filename, file)
	if err != nil {
		h.logger.Error("transcription failed", "error", err, "filename", fileHeader.Filename)
		return shared.BadGateway("transcription_failed", "transcription service failed")
	}
	h.logger.Info("audio transcribed", "filename", fileHeader.Filename, "chars", len(transcript))

	raw, err := h.extractor.ExtractQuote(ctx, transcript)
	if err != nil {
		h.logger.Error("quote extraction failed", "error", err)
		return shared.BadGateway("extraction_failed", "quote extraction failed")
	}

	items, dropped := extraction.Coerce(raw)
	if dropped > 0 {
		h.logger.Warn("dropped malformed extracted items", "dropped", dropped, "kept", len(items))
	}

	sessionID := c.Request().Header.Get(SessionHeader)
	if sessionID == "" {
		// One-shot transcription: derive total and upsell through a
		// throwaway ledger, persist nothing.
		led := ledger.New(ledger.Options{})
		for _, item := range items {
			_ = led.AddItem(item)
		}
		return c.JSON(http.StatusOK, toQuoteData(raw.CustomerName, raw.Notes, led.Snapshot()))
	}

	sess, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("session_not_found", "quote session not found")
		}
		h.logger.Error("failed to load quote session", "error", err, "session_id", sessionID)
		return shared.InternalError("session_load_failed", "failed to load quote session")
	}

	led := h.replay(sess)
	for _, item := range items {
		_ = led.AddItem(item)
	}

	sess.Items = led.Items()
	if sess.CustomerName == "" {
		sess.CustomerName = raw.CustomerName
	}
	if raw.Notes != "" {
		sess.Notes = raw.Notes
	}
	if err := h.sessions.Update(ctx, sess); err != nil {
		h.logger.Error("failed to update quote session", "error", err, "session_id", sess.ID)
		return shared.InternalError("session_update_failed", "failed to update quote session")
	}

	return c.JSON(http.StatusOK, toQuoteData(sess.CustomerName, sess.Notes, led.Snapshot()))
}

func (h *Handler) loadSession(c echo.Context) (*Session, error) {
	sess, err := h.sessions.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("session_not_found", "quote session not found")
		}
		h.logger.Error("failed to load quote session", "error", err, "session_id", c.Param("id"))
		return nil, shared.InternalError("session_load_failed", "failed to load quote session")
	}
	return sess, nil
}
