package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultPerPage is the number of products added by each "load more".
const DefaultPerPage = 8

// Sort orders accepted by [Query]. Anything else sorts as [SortFeatured].
const (
	SortFeatured  = "featured"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortName      = "name"
)

// Query selects a view of the product grid.
type Query struct {
	Category string
	Search   string
	Sort     string
	// Page is 1-based. Pages accumulate: page 2 shows the first 2*PerPage
	// products. Values below 1 read as 1.
	Page int
	// PerPage of zero or less uses DefaultPerPage.
	PerPage int
}

// Page is the visible part of the grid.
type Page struct {
	Products []Product `json:"products"`
	// Total counts every product that matched, shown or not.
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
	Page    int  `json:"page"`
}

// Filter runs the grid pipeline over products: category, then search, then
// sort, then pagination. The input slice is not modified.
func Filter(products []Product, q Query) Page {
	matched := Match(products, q.Category, q.Search)
	SortProducts(matched, q.Sort)

	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	visible := page * perPage
	if visible > len(matched) {
		visible = len(matched)
	}

	return Page{
		Products: matched[:visible],
		Total:    len(matched),
		HasMore:  len(matched) > page*perPage,
		Page:     page,
	}
}

// Match returns a new slice of the products in category whose normalised
// name or category contains the normalised search. An empty search matches
// everything; category [All] or "" keeps every category.
func Match(products []Product, category, search string) []Product {
	needle := Normalize(search)
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if category != All && category != "" && p.Category != category {
			continue
		}
		if needle != "" && !matches(p, needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matches(p Product, needle string) bool {
	return strings.Contains(Normalize(p.Name), needle) ||
		strings.Contains(Normalize(p.Category), needle)
}

// SortProducts orders products in place. Ties keep their catalog order.
func SortProducts(products []Product, order string) {
	switch order {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case SortName:
		c := collate.New(language.Spanish)
		sort.SliceStable(products, func(i, j int) bool {
			return c.CompareString(products[i].Name, products[j].Name) < 0
		})
	default:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Featured && !products[j].Featured })
	}
}

// SearchResult is the outcome of an overlay search.
type SearchResult struct {
	Query    string    `json:"query"`
	Products []Product `json:"products"`
	// Empty is set when the query normalises to nothing and the overlay
	// shows its prompt instead of results.
	Empty bool `json:"empty"`
}

// Search matches the whole catalog against query, in catalog order.
func Search(products []Product, query string) SearchResult {
	if Normalize(query) == "" {
		return SearchResult{Query: query, Products: []Product{}, Empty: true}
	}
	return SearchResult{Query: query, Products: Match(products, All, query)}
}
