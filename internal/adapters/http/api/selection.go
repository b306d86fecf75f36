package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/tripmap/internal/domain/model"
)

// Query parameter names shared by the selection endpoints.
const (
	paramAreaType   = "area_type"
	paramMode       = "mode"
	paramQuantity   = "quantity"
	paramWeekSubset = "week_subset"
	paramStart      = "start"
	paramEnd        = "end"
	paramTop        = "top"
)

// parseSelection reads a Selection from the query string. Area type and mode
// may be empty; the service fills its defaults. Both dates are required.
func parseSelection(r *http.Request) (model.Selection, error) {
	q := r.URL.Query()
	sel := model.Selection{
		AreaType: q.Get(paramAreaType),
		Mode:     q.Get(paramMode),
		Quantity: model.Quantity(q.Get(paramQuantity)),
	}
	if sel.Quantity != "" && !sel.Quantity.Valid() {
		return sel, fmt.Errorf("%w: quantity must be trips or lengths", ErrBadRequest)
	}

	subset, err := model.ParseWeekSubset(q.Get(paramWeekSubset))
	if err != nil {
		return sel, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	sel.WeekSubset = subset

	if sel.Range.Start, err = parseDate(q.Get(paramStart), paramStart); err != nil {
		return sel, err
	}
	if sel.Range.End, err = parseDate(q.Get(paramEnd), paramEnd); err != nil {
		return sel, err
	}
	if !sel.Range.Valid() {
		return sel, fmt.Errorf("%w: start must not be after end", ErrBadRequest)
	}
	return sel, nil
}

func parseDate(v, name string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: missing %s", ErrBadRequest, name)
	}
	t, err := time.Parse(model.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrBadRequest, name)
	}
	return t, nil
}

// parseTop reads the optional top parameter; zero means the service default.
func parseTop(r *http.Request) (int, error) {
	v := r.URL.Query().Get(paramTop)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: top must be a positive integer", ErrBadRequest)
	}
	return n, nil
}
