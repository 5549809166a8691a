package transcription

import (
	"context"
	"io"
)

type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}
