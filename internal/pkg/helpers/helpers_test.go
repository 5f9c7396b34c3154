package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yigit/assessai/internal/app/models/dto"
)

func TestPage(t *testing.T) {
	p := NewPage(3, 20)
	assert.Equal(t, uint64(40), p.Offset())
	assert.Equal(t, 20, p.Size)

	p = NewPage(0, 500)
	assert.Equal(t, Page{Number: 1, Size: DefaultPageSize}, p)
	assert.Equal(t, uint64(0), p.Offset())
}

func TestPage_Info(t *testing.T) {
	info := NewPage(2, 10).Info(25)
	assert.Equal(t, dto.PaginationInfo{CurrentPage: 2, TotalPages: 3, PageSize: 10, TotalItems: 25}, info)

	assert.Equal(t, 0, NewPage(1, 10).Info(0).TotalPages)
	assert.Equal(t, 1, NewPage(1, 10).Info(10).TotalPages)

	past := NewPage(9, 10).Info(5)
	assert.Equal(t, 9, past.CurrentPage)
	assert.Equal(t, 1, past.TotalPages)
}

func TestPageFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query      string
		page, size int
	}{
		{"", 1, DefaultPageSize},
		{"?page=4&size=25", 4, 25},
		{"?page=-1&size=1000", 1, DefaultPageSize},
		{"?page=abc&size=x", 1, DefaultPageSize},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/admin/users"+tt.query, nil)
		assert.Equal(t, Page{Number: tt.page, Size: tt.size}, PageFromQuery(c), tt.query)
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, ParseDuration("5s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("later", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("-1s", time.Minute))
}
