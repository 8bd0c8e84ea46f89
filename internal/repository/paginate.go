package repository

import (
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 500
	// SearchPerPage page size used whenever a search term is present
	SearchPerPage = 15
)

// ListQuery list parameters accepted by every resource
type ListQuery struct {
	Page    int    `mapstructure:"page"`
	PerPage int    `mapstructure:"perPage"`
	Search  string `mapstructure:"search"`
	All     bool   `mapstructure:"all"`
}

func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Page a window of records plus the paging metadata
type Page[T any] struct {
	Data        []T   `json:"data"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
	From        *int  `json:"from"`
	To          *int  `json:"to"`
}

func newPage[T any](rows []T, total int64, page, perPage int) *Page[T] {
	if rows == nil {
		rows = []T{}
	}
	p := &Page[T]{
		Data:        rows,
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    1,
	}
	if perPage > 0 && total > 0 {
		p.LastPage = int((total + int64(perPage) - 1) / int64(perPage))
	}
	if len(rows) > 0 {
		from := (page-1)*perPage + 1
		to := from + len(rows) - 1
		p.From, p.To = &from, &to
	}
	return p
}

// paginate counts the filtered set and reads one window of it
func paginate[T any](db *gorm.DB, page, perPage int, orders ...string) (*Page[T], error) {
	base := db.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, translate(err, "count")
	}

	var rows []T
	query := base.Offset((page - 1) * perPage).Limit(perPage)
	for _, o := range orders {
		query = query.Order(o)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, translate(err, "paginate")
	}
	return newPage(rows, total, page, perPage), nil
}
