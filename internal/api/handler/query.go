package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ZertGraf/user-directory/internal/domain"
	"github.com/ZertGraf/user-directory/internal/service"
	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	maxQueryLength    = 100
	defaultFetchLimit = 20
	maxFetchLimit     = 100
)

// ListQuery is the list view state as carried in the query string.
type ListQuery struct {
	Query string
	Order string
	Page  int
}

func (q *ListQuery) Validate() error {
	return validation.ValidateStruct(q,
		validation.Field(&q.Query, validation.RuneLength(0, maxQueryLength)),
		validation.Field(&q.Order, validation.By(validSortOrder)),
		validation.Field(&q.Page, validation.Required, validation.Min(1)),
	)
}

func validSortOrder(value interface{}) error {
	order, _ := value.(string)
	_, err := service.ParseSortOrder(order)
	return err
}

// View builds the list view-model for this request.
func (q *ListQuery) View(scope service.SearchScope) *service.ListView {
	return &service.ListView{
		Query: q.Query,
		Order: service.SortOrder(q.Order),
		Page:  q.Page,
		Scope: scope,
	}
}

func parseListQuery(r *http.Request) (*ListQuery, error) {
	values := r.URL.Query()

	q := &ListQuery{
		Query: values.Get("q"),
		Order: values.Get("order"),
		Page:  1,
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return nil, validation.Errors{"page": errors.New("must be an integer")}
		}
		q.Page = page
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// listURL encodes a list state back into a link to the list page.
func listURL(query string, order service.SortOrder, page int) string {
	values := url.Values{}
	if query != "" {
		values.Set("q", query)
	}
	if order != service.OrderNone {
		values.Set("order", string(order))
	}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}

	if len(values) == 0 {
		return "/"
	}
	return "/?" + values.Encode()
}

func parseUserID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, domain.ErrInvalidUserID
	}
	return id, nil
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultFetchLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.Errors{"limit": errors.New("must be an integer")}
	}

	err = validation.Validate(limit, validation.Required, validation.Min(1), validation.Max(maxFetchLimit))
	if err != nil {
		return 0, validation.Errors{"limit": err}
	}
	return limit, nil
}
