// Package sheet binds the remote tabular store the roster lives in. The
// daemon only depends on the Store contract; the shipped implementation keeps
// each worksheet in a local CSV file.
package sheet

import (
	"context"
	"errors"
)

var (
	// ErrNotFound marks a missing worksheet. Fatal for the calling
	// operation, never retried.
	ErrNotFound = errors.New("worksheet not found")
	// ErrUnavailable marks a transient I/O failure, eligible for retry on
	// reads only.
	ErrUnavailable = errors.New("remote store unavailable")
	// ErrAuth marks a rejected credential during the handshake.
	ErrAuth = errors.New("remote store authentication failed")
)

// Store is one worksheet of the remote spreadsheet. All cells are strings;
// the first row is the header row.
type Store interface {
	GetAllRows(ctx context.Context) ([][]string, error)
	Clear(ctx context.Context) error
	WriteRows(ctx context.Context, rows [][]string) error
	AppendRows(ctx context.Context, rows [][]string) error
}
