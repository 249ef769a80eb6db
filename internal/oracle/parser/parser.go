package parser

import "time"

// Parsed is the structured result of extracting a raw capture.
type Parsed struct {
	Title         string
	Author        string
	PublishedDate *time.Time
	Content       string
}

// Parser turns a raw HTML capture into structured text. Stateless; the
// pipeline treats it as an external oracle.
type Parser interface {
	Parse(html string, sourceURL string) (Parsed, error)
}
