package main

import (
	"github.com/loudachris/tradievoice/internal/bootstrap"
)

// @title TradieVoice Pro API
// @version 1.0.0
// @description Voice-driven quoting backend for tradespeople: transcribe a recording, build a running quote, and export a branded PDF invoice.

// @host localhost:8080
// @BasePath /

func main() {
	bootstrap.Run()
}
