// Package pagination implements continuous, cursor-based paging over relay
// style connections. There is no page count and no total: a page either
// carries a cursor for the next one or it is the last.
//
// Rows inserted or reordered at the sort boundary between two fetches can be
// duplicated or skipped. That is accepted; nothing here corrects for it.
package pagination

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/blogadmin/internal/query"
)

// DefaultPageSize is used when a request does not set First.
const DefaultPageSize = 20

// Page is the pagination state of one list request.
type Page struct {
	// First is the page size. Zero leaves the backend default.
	First int
	// After is the opaque cursor returned by the previous page.
	After string
}

// Args translates a page into connection arguments.
func Args(p Page) []query.Arg {
	return []query.Arg{
		{Name: "first", Value: p.First},
		{Name: "after", Value: p.After},
	}
}

// NextCursor reads data[root].pageInfo and returns the cursor for the next
// page, or "" when there are no more rows. A connection without pageInfo is
// treated as the last page.
func NextCursor(data map[string]any, root string) (string, error) {
	conn, ok := data[root].(map[string]any)
	if !ok {
		return "", fmt.Errorf("connection %q missing from response", root)
	}
	info, ok := conn["pageInfo"].(map[string]any)
	if !ok {
		return "", nil
	}
	hasNext, _ := info["hasNextPage"].(bool)
	if !hasNext {
		return "", nil
	}
	cursor, _ := info["endCursor"].(string)
	return cursor, nil
}

// FetchFunc loads one page starting after cursor and returns its rows and
// the next cursor.
type FetchFunc[T any] func(ctx context.Context, after string) ([]T, string, error)

// Collect walks pages forward until the backend reports no next cursor or
// limit rows were gathered (limit <= 0 means no limit).
func Collect[T any](ctx context.Context, fetch FetchFunc[T], limit int) ([]T, error) {
	var (
		all    []T
		cursor string
	)
	for {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		rows, next, err := fetch(ctx, cursor)
		if err != nil {
			return all, err
		}
		all = append(all, rows...)
		if limit > 0 && len(all) >= limit {
			return all[:limit], nil
		}
		// a repeated cursor would loop forever
		if next == "" || next == cursor {
			return all, nil
		}
		cursor = next
	}
}
