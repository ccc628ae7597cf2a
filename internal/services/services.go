// package services implements the music sharing use cases
package services

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicapp/internal/models"
	"github.com/desertthunder/musicapp/internal/shared"
)

// PerPage is the fixed page size for paginated listings.
const PerPage = 12

// Upload is a file received from a form.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// newPage computes page metadata for total items.
func newPage[T any](items []T, page, total int) *Page[T] {
	pages := (total + PerPage - 1) / PerPage
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:   items,
		Page:    page,
		PerPage: PerPage,
		Total:   total,
		Pages:   pages,
		HasPrev: page > 1,
		HasNext: page >= 1 && page < pages,
	}
}

// pageInRange reports whether page selects any rows out of total.
func pageInRange(page, total int) bool {
	return page >= 1 && page-1 < (total+PerPage-1)/PerPage
}

func requireActor(actor *models.User) error {
	if actor == nil || actor.ID == 0 {
		return shared.ErrNotAuthenticated
	}
	return nil
}

func persistenceErr(err error) error {
	return fmt.Errorf("%w: %v", shared.ErrPersistence, err)
}

func serviceLogger(logger *log.Logger, name string) *log.Logger {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return shared.WithLogger(logger, "service", name)
}
