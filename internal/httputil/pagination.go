package httputil

import (
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	customValidation "github.com/getachewzemene/minalesh-amplify-sub001/internal/validation"
)

const (
	// DefaultPageLimit is the page size of the admin ledger listing when none is given.
	DefaultPageLimit = 50
	// MaxPageLimit caps one page so a listing never scans the whole ledger.
	MaxPageLimit = 100
)

var (
	errOffset = validation.NewError("validation_offset", "must be a non-negative integer")
	errLimit  = validation.NewError("validation_limit", "must be an integer between 1 and 100")
)

// Page is an offset window over a newest-first listing.
type Page struct {
	Offset int
	Limit  int
}

// Next returns the offset of the following page, or nil when the returned row count
// shows this was the last one.
func (p Page) Next(returned int) *int {
	if returned < p.Limit {
		return nil
	}
	next := p.Offset + p.Limit
	return &next
}

// ParsePagination reads offset (default 0) and limit (default 50, max 100) from the
// query string. Errors wrap ErrInvalidInput.
func ParsePagination(c *gin.Context) (Page, error) {
	errs := validation.Errors{}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		errs["offset"] = errOffset
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageLimit)))
	if err != nil || limit < 1 || limit > MaxPageLimit {
		errs["limit"] = errLimit
	}

	if len(errs) > 0 {
		return Page{}, customValidation.WrapValidationError(errs)
	}
	return Page{Offset: offset, Limit: limit}, nil
}
