package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hirehub/core/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	DefaultPage      = 1
	DefaultSize      = 24
	DefaultSizeParam = "page-size"
	MaxSize          = 100
)

// Settings controls how FromContext reads the page size.
type Settings struct {
	Size      int
	SizeParam string
	MaxSize   int
}

var settings = Settings{Size: DefaultSize, SizeParam: DefaultSizeParam, MaxSize: MaxSize}

// Configure replaces the package defaults. Zero values keep the current ones.
func Configure(s Settings) {
	if s.Size > 0 {
		settings.Size = s.Size
	}
	if s.SizeParam != "" {
		settings.SizeParam = s.SizeParam
	}
	if s.MaxSize > 0 {
		settings.MaxSize = s.MaxSize
	}
}

// Current returns the active settings.
func Current() Settings { return settings }

// Query holds parsed pagination parameters.
type Query struct {
	Page int
	Size int
}

// Offset is the number of rows to skip.
func (q Query) Offset() int { return (q.Page - 1) * q.Size }

// FromContext extracts and validates pagination params from the request.
func FromContext(c *gin.Context) Query {
	page := parseIntOr(c.Query("page"), DefaultPage)
	size := parseIntOr(c.Query(settings.SizeParam), settings.Size)

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = settings.Size
	}
	if size > settings.MaxSize {
		size = settings.MaxSize
	}

	return Query{Page: page, Size: size}
}

// Paginate applies limit/offset to a GORM query and returns the pagination metadata.
func Paginate[T any](db *gorm.DB, q Query, dest *[]T) (response.Pagination, error) {
	return PaginateInto(db, db, q, dest)
}

// PaginateInto loads one page of db into dest, which may be any slice
// pointer gorm accepts. Rows are counted on count, which must not preload:
// gorm refuses to count with preloads.
func PaginateInto(count, db *gorm.DB, q Query, dest any) (response.Pagination, error) {
	var total int64
	if err := count.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return response.Pagination{}, err
	}

	if err := db.Offset(q.Offset()).Limit(q.Size).Find(dest).Error; err != nil {
		return response.Pagination{}, err
	}

	return Meta(total, q), nil
}

// Meta builds the envelope metadata for total rows.
func Meta(total int64, q Query) response.Pagination {
	totalPage := int((total + int64(q.Size) - 1) / int64(q.Size))
	return response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   totalPage,
		Size:        q.Size,
		HasNextPage: q.Page < totalPage,
	}
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
