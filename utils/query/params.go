package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dabhanushali/enacton-training/database"
	"github.com/gofiber/fiber/v2"
)

var ErrInvalidID = errors.New("invalid id")

// ListParams is the paging and search part of a list request
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

// ParseListParams reads page, limit and search from the query string
func ParseListParams(c *fiber.Ctx) ListParams {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(database.DefaultPageSize)))
	page, limit = database.NormalizePage(page, limit)
	return ListParams{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(c.Query("search")),
	}
}

// Apply copies paging and search into q
func (p ListParams) Apply(q database.Query, searchColumns ...string) database.Query {
	q = q.Paginate(p.Page, p.Limit)
	if p.Search != "" && len(searchColumns) > 0 {
		q = q.SearchIn(p.Search, searchColumns...)
	}
	return q
}

// ID parses a positive integer path parameter
func ID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidID, name, raw)
	}
	return uint(id), nil
}

// OptionalUint parses a positive integer query parameter; absent gives nil
func OptionalUint(c *fiber.Ctx, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidID, name, raw)
	}
	id := uint(v)
	return &id, nil
}
