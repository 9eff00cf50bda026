package uistate

import (
	"time"

	"github.com/legadomuebles/legado/internal/store"
)

// Field is a typed view of one store key.
type Field[T any] struct {
	key string
}

// NewField returns the accessor for key.
func NewField[T any](key string) Field[T] {
	return Field[T]{key: key}
}

// Key returns the store key.
func (f Field[T]) Key() string {
	return f.key
}

// Get returns the current value, or the zero value of T when the key is
// absent or holds another type.
func (f Field[T]) Get(s *store.Store) T {
	v, _ := s.Get(f.key)
	typed, _ := v.(T)
	return typed
}

// Set stores v under the field's key.
func (f Field[T]) Set(s *store.Store, v T) {
	s.Set(f.key, v)
}

// Entry returns v as a store entry for use with [store.Store.SetMany].
func (f Field[T]) Entry(v T) store.Entry {
	return store.Entry{Key: f.key, Value: v}
}

// Subscribe calls fn whenever the field changes. Values that are not of
// type T are passed as the zero value.
func (f Field[T]) Subscribe(s *store.Store, fn func(value, previous T)) (unsubscribe func()) {
	return s.Subscribe(f.key, func(value, previous any, _ string) {
		v, _ := value.(T)
		p, _ := previous.(T)
		fn(v, p)
	})
}

var (
	Theme            = NewField[ThemeMode](KeyTheme)
	MobileMenuOpen   = NewField[bool](KeyMobileMenuOpen)
	SearchModalOpen  = NewField[bool](KeySearchModalOpen)
	LightboxOpen     = NewField[bool](KeyLightboxOpen)
	LightboxImage    = NewField[string](KeyLightboxImage)
	LightboxAlt      = NewField[string](KeyLightboxAlt)
	CurrentCategory  = NewField[string](KeyCurrentCategory)
	SearchQuery      = NewField[string](KeySearchQuery)
	SortBy           = NewField[SortOrder](KeySortBy)
	ProductsPage     = NewField[int](KeyProductsPage)
	ScrollY          = NewField[int](KeyScrollY)
	HeaderVisible    = NewField[bool](KeyHeaderVisible)
	HeaderScrolled   = NewField[bool](KeyHeaderScrolled)
	ScrollProgress   = NewField[float64](KeyScrollProgress)
	IsOnline         = NewField[bool](KeyIsOnline)
	IsLoading        = NewField[bool](KeyIsLoading)
	TestimonialIndex = NewField[int](KeyTestimonialIndex)
	ActiveToast      = NewField[*Toast](KeyToast)
)

// Change describes one state change, whatever the key.
type Change struct {
	Key      string    `json:"key"`
	Value    any       `json:"value"`
	Previous any       `json:"previous"`
	At       time.Time `json:"at"`
}

// SubscribeChanges calls fn for every change in the store. now stamps the
// events; nil means time.Now.
func SubscribeChanges(s *store.Store, now func() time.Time, fn func(Change)) (unsubscribe func()) {
	if now == nil {
		now = time.Now
	}
	return s.SubscribeAll(func(value, previous any, key string) {
		fn(Change{Key: key, Value: value, Previous: previous, At: now()})
	})
}
