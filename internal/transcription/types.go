package transcription

import "time"

type Config struct {
	// BaseURL of an OpenAI-compatible API, without the /v1 suffix.
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type Result struct {
	Text string `json:"text"`
}
