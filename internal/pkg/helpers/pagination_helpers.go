package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/assessai/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a 1-based page request for the admin user list
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number and size into range; out-of-range values fall back to
// the first page and the default size
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return Page{Number: number, Size: size}
}

// PageFromQuery reads ?page= and ?size=, ignoring values that do not parse
func PageFromQuery(c *gin.Context) Page {
	number, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))
	return NewPage(number, size)
}

// Offset is the number of rows to skip
func (p Page) Offset() uint64 {
	return uint64(p.Number-1) * uint64(p.Size)
}

// Info describes p within a result set of total rows. A page past the end is
// reported as requested, with no rows.
func (p Page) Info(total int64) dto.PaginationInfo {
	size := int64(p.Size)
	return dto.PaginationInfo{
		CurrentPage: p.Number,
		TotalPages:  int((total + size - 1) / size),
		PageSize:    p.Size,
		TotalItems:  total,
	}
}
