package extraction

import "context"

type Extractor interface {
	ExtractQuote(ctx context.Context, transcript string) (*RawQuote, error)
}
