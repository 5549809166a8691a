package bootstrap

import (
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/fx"

	_ "github.com/loudachris/tradievoice/docs"
	"github.com/loudachris/tradievoice/internal/extraction"
	"github.com/loudachris/tradievoice/internal/invoice"
	"github.com/loudachris/tradievoice/internal/profile"
	"github.com/loudachris/tradievoice/internal/quote"
	"github.com/loudachris/tradievoice/internal/transcription"
)

type HandlerParams struct {
	fx.In

	ProfileHandler *profile.Handler
	QuoteHandler   *quote.Handler
	InvoiceHandler *invoice.Handler
	Config         *Config
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/api")

	params.ProfileHandler.RegisterRoutes(api)
	params.QuoteHandler.RegisterRoutes(api)
	params.InvoiceHandler.RegisterRoutes(api)

	e.GET("/swagger/*", echoSwagger.EchoWrapHandler())

	// The PWA is served last so API routes take precedence.
	e.Static("/assets", params.Config.StaticDir)
	e.GET("/*", func(c echo.Context) error {
		return c.File(params.Config.IndexHTML)
	})
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideTranscriber(cfg *Config) transcription.Transcriber {
	return transcription.NewClient(transcription.Config{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.TranscriptionModel,
	})
}

func ProvideExtractor(cfg *Config) extraction.Extractor {
	return extraction.NewClient(extraction.Config{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.ExtractionModel,
	})
}

func ProvideProfileHandler(store *profile.Store, logger *slog.Logger) *profile.Handler {
	return profile.NewHandler(store, logger.With("handler", "profile"))
}

func ProvideQuoteHandler(store *quote.Store, transcriber transcription.Transcriber, extractor extraction.Extractor, logger *slog.Logger) *quote.Handler {
	return quote.NewHandler(store, transcriber, extractor, logger.With("handler", "quote"))
}

func ProvideInvoiceHandler(store *profile.Store, logger *slog.Logger) *invoice.Handler {
	return invoice.NewHandler(store, logger.With("handler", "invoice"))
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideTranscriber,
		ProvideExtractor,
		ProvideProfileHandler,
		ProvideQuoteHandler,
		ProvideInvoiceHandler,
	),
	fx.Invoke(RegisterRoutes),
)
