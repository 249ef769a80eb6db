package llm

import "context"

type Summarizer interface {
	Summarize(ctx context.Context, title string, content string) (string, error)
}
