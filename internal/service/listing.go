package service

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ZertGraf/user-directory/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const PageSize = 5

// SortOrder is the order applied to the collection. The zero value keeps the
// upstream order.
type SortOrder string

const (
	OrderNone SortOrder = ""
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case OrderNone, OrderAsc, OrderDesc:
		return SortOrder(s), nil
	default:
		return OrderNone, fmt.Errorf("unknown sort order %q", s)
	}
}

// Label is the caption of a sort control that applies o.
func (o SortOrder) Label() string {
	if o == OrderDesc {
		return "Z-A"
	}
	return "A-Z"
}

// SearchScope decides whether the name filter runs on the current page window
// or on the whole collection before paginating.
type SearchScope string

const (
	ScopePage       SearchScope = "page"
	ScopeCollection SearchScope = "collection"
)

func ParseSearchScope(s string) (SearchScope, error) {
	switch SearchScope(s) {
	case ScopePage, ScopeCollection:
		return SearchScope(s), nil
	case "":
		return ScopePage, nil
	default:
		return ScopePage, fmt.Errorf("unknown search scope %q", s)
	}
}

// ListView is the ephemeral UI state of the user list.
type ListView struct {
	Query string
	Order SortOrder
	Page  int
	Scope SearchScope
}

func NewListView(scope SearchScope) *ListView {
	return &ListView{Page: 1, Scope: scope}
}

// NextOrder is what the next ToggleSort applies.
func (v *ListView) NextOrder() SortOrder {
	if v.Order == OrderAsc {
		return OrderDesc
	}
	return OrderAsc
}

func (v *ListView) ToggleSort() {
	v.Order = v.NextOrder()
}

func (v *ListView) SetQuery(query string) {
	if query == v.Query {
		return
	}
	v.Query = query
	// page numbers refer to the match list in collection scope
	if v.Scope == ScopeCollection {
		v.Page = 1
	}
}

func (v *ListView) TotalPages(users []domain.User) int {
	total := len(users)
	if v.Scope == ScopeCollection {
		total = len(FilterByName(users, v.Query))
	}
	return totalPages(total)
}

// NextPage advances unless the current page is the last one.
func (v *ListView) NextPage(users []domain.User) bool {
	if v.Page >= v.TotalPages(users) {
		return false
	}
	v.Page++
	return true
}

// PrevPage steps back unless the current page is the first one.
func (v *ListView) PrevPage() bool {
	if v.Page <= 1 {
		return false
	}
	v.Page--
	return true
}

type ListPage struct {
	Users      []domain.User `json:"users"`
	Number     int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Total      int           `json:"total"`
	HasPrev    bool          `json:"has_prev"`
	HasNext    bool          `json:"has_next"`
	Query      string        `json:"query"`
	Order      SortOrder     `json:"order"`
	NextOrder  SortOrder     `json:"next_order"`
	Scope      SearchScope   `json:"scope"`
}

// Render derives the page to display: sort the whole collection, cut the page
// window, then filter by name. In ScopeCollection the filter runs before the
// window is cut.
func (v *ListView) Render(users []domain.User) ListPage {
	sorted := SortUsers(users, v.Order)

	matches := sorted
	if v.Scope == ScopeCollection {
		matches = FilterByName(sorted, v.Query)
	}

	pages := totalPages(len(matches))
	number := clampPage(v.Page, pages)

	window := pageWindow(matches, number)
	if v.Scope != ScopeCollection {
		window = FilterByName(window, v.Query)
	}

	return ListPage{
		Users:      window,
		Number:     number,
		TotalPages: pages,
		Total:      len(matches),
		HasPrev:    number > 1,
		HasNext:    number < pages,
		Query:      v.Query,
		Order:      v.Order,
		NextOrder:  v.NextOrder(),
		Scope:      v.Scope,
	}
}

// SortUsers returns a copy of users ordered by name using locale-aware
// collation. Equal names keep their relative order.
func SortUsers(users []domain.User, order SortOrder) []domain.User {
	out := slices.Clone(users)
	if order == OrderNone {
		return out
	}

	c := collate.New(language.English)
	slices.SortStableFunc(out, func(a, b domain.User) int {
		if order == OrderDesc {
			return c.CompareString(b.Name, a.Name)
		}
		return c.CompareString(a.Name, b.Name)
	})
	return out
}

// FilterByName keeps users whose name contains query, ignoring case.
func FilterByName(users []domain.User, query string) []domain.User {
	out := make([]domain.User, 0, len(users))
	if query == "" {
		return append(out, users...)
	}

	lower := cases.Lower(language.Und)
	needle := lower.String(query)
	for _, u := range users {
		if strings.Contains(lower.String(u.Name), needle) {
			out = append(out, u)
		}
	}
	return out
}

func totalPages(total int) int {
	return (total + PageSize - 1) / PageSize
}

func clampPage(page, pages int) int {
	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}
	return page
}

func pageWindow(users []domain.User, page int) []domain.User {
	start := (page - 1) * PageSize
	if start >= len(users) {
		return []domain.User{}
	}
	end := min(start+PageSize, len(users))
	return users[start:end]
}
