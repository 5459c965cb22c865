package ports

import "context"

// LineSource yields raw newline-delimited records from the field link.
// ReadLine blocks for at most the source's read timeout and returns
// (nil, nil) when nothing complete arrived in that window.
type LineSource interface {
	ReadLine(ctx context.Context) ([]byte, error)
	Close() error
}
