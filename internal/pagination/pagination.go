// Package pagination parses limit/offset query parameters and runs the page
// and count queries of a listing side by side.
package pagination

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

// MaxLimit caps every page regardless of the resource default.
const MaxLimit = 5000

type Params struct {
	Limit  int
	Offset int
}

// New clamps limit and offset. A non-positive limit takes defaultLimit; a
// negative offset becomes zero.
func New(limit, offset, defaultLimit int) Params {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Params{Limit: limit, Offset: offset}
}

// FromQuery reads `limit` and `offset`, ignoring values that are not integers.
func FromQuery(c *fiber.Ctx, defaultLimit int) Params {
	limit, offset := 0, 0
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			limit = v
		}
	}
	if o := c.Query("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil {
			offset = v
		}
	}
	return New(limit, offset, defaultLimit)
}

// Window returns the [start, end) bounds of p over a collection of n rows.
func (p Params) Window(n int) (int, int) {
	start := p.Offset
	if start > n {
		start = n
	}
	end := start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}

type Page[T any] struct {
	Rows  []T
	Total int
}

// Fetch runs list and count concurrently and returns when both finish. The
// first error cancels the other query.
func Fetch[T any](ctx context.Context, list func(context.Context) ([]T, error), count func(context.Context) (int, error)) (Page[T], error) {
	g, gctx := errgroup.WithContext(ctx)

	var page Page[T]
	g.Go(func() error {
		rows, err := list(gctx)
		if err != nil {
			return err
		}
		page.Rows = rows
		return nil
	})
	g.Go(func() error {
		total, err := count(gctx)
		if err != nil {
			return err
		}
		page.Total = total
		return nil
	})

	if err := g.Wait(); err != nil {
		return Page[T]{}, err
	}
	if page.Rows == nil {
		page.Rows = []T{}
	}
	return page, nil
}
