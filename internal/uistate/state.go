package uistate

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/legadomuebles/legado/internal/store"
)

// State keys. Values stored under these keys always have the Go type of the
// matching [State] field.
const (
	KeyTheme            = "theme"
	KeyMobileMenuOpen   = "mobileMenuOpen"
	KeySearchModalOpen  = "searchModalOpen"
	KeyLightboxOpen     = "lightboxOpen"
	KeyLightboxImage    = "lightboxImage"
	KeyLightboxAlt      = "lightboxAlt"
	KeyCurrentCategory  = "currentCategory"
	KeySearchQuery      = "searchQuery"
	KeySortBy           = "sortBy"
	KeyProductsPage     = "productsPage"
	KeyScrollY          = "scrollY"
	KeyHeaderVisible    = "headerVisible"
	KeyHeaderScrolled   = "headerScrolled"
	KeyScrollProgress   = "scrollProgress"
	KeyIsOnline         = "isOnline"
	KeyIsLoading        = "isLoading"
	KeyTestimonialIndex = "testimonialIndex"
	KeyToast            = "toast"
)

// CategoryAll is the catalog category that matches every product.
const CategoryAll = "all"

// ErrUnknownKey is returned by [Decode] for keys outside the state shape.
var ErrUnknownKey = errors.New("unknown state key")

// ThemeMode is the colour scheme of the site.
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

// Valid reports whether t is a known theme.
func (t ThemeMode) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Opposite returns the other theme. Anything that is not dark toggles to dark.
func (t ThemeMode) Opposite() ThemeMode {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// SortOrder selects how the catalog is ordered.
type SortOrder string

const (
	SortFeatured  SortOrder = "featured"
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortName      SortOrder = "name"
)

// Valid reports whether o is a known sort order.
func (o SortOrder) Valid() bool {
	switch o {
	case SortFeatured, SortPriceAsc, SortPriceDesc, SortName:
		return true
	}
	return false
}

// ToastType styles a toast notification.
type ToastType string

const (
	ToastDefault ToastType = "default"
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastWarning ToastType = "warning"
)

// Toast is the notification currently on screen. The store holds a pointer
// so showing the same message twice is still a change.
type Toast struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	Type    ToastType `json:"type"`
}

// State is the full shape of the UI state.
type State struct {
	Theme            ThemeMode `json:"theme"`
	MobileMenuOpen   bool      `json:"mobileMenuOpen"`
	SearchModalOpen  bool      `json:"searchModalOpen"`
	LightboxOpen     bool      `json:"lightboxOpen"`
	LightboxImage    string    `json:"lightboxImage"`
	LightboxAlt      string    `json:"lightboxAlt"`
	CurrentCategory  string    `json:"currentCategory"`
	SearchQuery      string    `json:"searchQuery"`
	SortBy           SortOrder `json:"sortBy"`
	ProductsPage     int       `json:"productsPage"`
	ScrollY          int       `json:"scrollY"`
	HeaderVisible    bool      `json:"headerVisible"`
	HeaderScrolled   bool      `json:"headerScrolled"`
	ScrollProgress   float64   `json:"scrollProgress"`
	IsOnline         bool      `json:"isOnline"`
	IsLoading        bool      `json:"isLoading"`
	TestimonialIndex int       `json:"testimonialIndex"`
	Toast            *Toast    `json:"toast"`
}

// Initial returns the state the application starts with.
func Initial() State {
	return State{
		Theme:           ThemeLight,
		CurrentCategory: CategoryAll,
		SortBy:          SortFeatured,
		ProductsPage:    1,
		HeaderVisible:   true,
		IsOnline:        true,
	}
}

// Map flattens the state into store keys.
func (st State) Map() map[string]any {
	return map[string]any{
		KeyTheme:            st.Theme,
		KeyMobileMenuOpen:   st.MobileMenuOpen,
		KeySearchModalOpen:  st.SearchModalOpen,
		KeyLightboxOpen:     st.LightboxOpen,
		KeyLightboxImage:    st.LightboxImage,
		KeyLightboxAlt:      st.LightboxAlt,
		KeyCurrentCategory:  st.CurrentCategory,
		KeySearchQuery:      st.SearchQuery,
		KeySortBy:           st.SortBy,
		KeyProductsPage:     st.ProductsPage,
		KeyScrollY:          st.ScrollY,
		KeyHeaderVisible:    st.HeaderVisible,
		KeyHeaderScrolled:   st.HeaderScrolled,
		KeyScrollProgress:   st.ScrollProgress,
		KeyIsOnline:         st.IsOnline,
		KeyIsLoading:        st.IsLoading,
		KeyTestimonialIndex: st.TestimonialIndex,
		KeyToast:            st.Toast,
	}
}

// Read rebuilds a [State] from the store. Missing or mistyped keys read as
// their zero value.
func Read(s *store.Store) State {
	return State{
		Theme:            Theme.Get(s),
		MobileMenuOpen:   MobileMenuOpen.Get(s),
		SearchModalOpen:  SearchModalOpen.Get(s),
		LightboxOpen:     LightboxOpen.Get(s),
		LightboxImage:    LightboxImage.Get(s),
		LightboxAlt:      LightboxAlt.Get(s),
		CurrentCategory:  CurrentCategory.Get(s),
		SearchQuery:      SearchQuery.Get(s),
		SortBy:           SortBy.Get(s),
		ProductsPage:     ProductsPage.Get(s),
		ScrollY:          ScrollY.Get(s),
		HeaderVisible:    HeaderVisible.Get(s),
		HeaderScrolled:   HeaderScrolled.Get(s),
		ScrollProgress:   ScrollProgress.Get(s),
		IsOnline:         IsOnline.Get(s),
		IsLoading:        IsLoading.Get(s),
		TestimonialIndex: TestimonialIndex.Get(s),
		Toast:            ActiveToast.Get(s),
	}
}

// NewStore creates a store seeded with [Initial].
func NewStore(opts ...store.Option) *store.Store {
	return store.New(Initial().Map(), opts...)
}

// decoders turn a JSON payload into the typed value for a key.
var decoders = map[string]func(json.RawMessage) (any, error){
	KeyTheme: func(raw json.RawMessage) (any, error) {
		v, err := decodeAs[ThemeMode](raw)
		if err == nil && !v.Valid() {
			err = fmt.Errorf("invalid theme %q", v)
		}
		return v, err
	},
	KeySortBy: func(raw json.RawMessage) (any, error) {
		v, err := decodeAs[SortOrder](raw)
		if err == nil && !v.Valid() {
			err = fmt.Errorf("invalid sort order %q", v)
		}
		return v, err
	},
	KeyProductsPage: func(raw json.RawMessage) (any, error) {
		v, err := decodeAs[int](raw)
		if err == nil && v < 1 {
			err = fmt.Errorf("page must be at least 1, got %d", v)
		}
		return v, err
	},
	KeyMobileMenuOpen:   decodeAny[bool],
	KeySearchModalOpen:  decodeAny[bool],
	KeyLightboxOpen:     decodeAny[bool],
	KeyLightboxImage:    decodeAny[string],
	KeyLightboxAlt:      decodeAny[string],
	KeyCurrentCategory:  decodeAny[string],
	KeySearchQuery:      decodeAny[string],
	KeyScrollY:          decodeAny[int],
	KeyHeaderVisible:    decodeAny[bool],
	KeyHeaderScrolled:   decodeAny[bool],
	KeyScrollProgress:   decodeAny[float64],
	KeyIsOnline:         decodeAny[bool],
	KeyIsLoading:        decodeAny[bool],
	KeyTestimonialIndex: decodeAny[int],
	KeyToast:            decodeAny[*Toast],
}

// Decode converts a JSON value into the Go type stored under key.
func Decode(key string, raw json.RawMessage) (any, error) {
	dec, ok := decoders[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	v, err := dec(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

// Known reports whether key is part of the state shape.
func Known(key string) bool {
	_, ok := decoders[key]
	return ok
}

func decodeAs[T any](raw json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}

func decodeAny[T any](raw json.RawMessage) (any, error) {
	return decodeAs[T](raw)
}

// Entries flattens the state into store entries in a fixed key order.
func (st State) Entries() []store.Entry {
	m := st.Map()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]store.Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, store.Entry{Key: k, Value: m[k]})
	}
	return entries
}
