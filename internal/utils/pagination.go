package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// MaxPageSize caps the limit a client may ask for.
const MaxPageSize = 100

// Pagination holds pagination parameters.
type Pagination struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

// GetPagination extracts limit and offset from the query parameters.
// It falls back to defaults if parsing fails.
func GetPagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return Pagination{Limit: limit, Offset: offset}
}

func (p *Pagination) SetTotal(total int64) {
	p.Total = total
}

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

func NewPaginatedResponse(data interface{}, pagination Pagination) PaginatedResponse {
	return PaginatedResponse{
		Data:       data,
		Pagination: pagination,
	}
}
