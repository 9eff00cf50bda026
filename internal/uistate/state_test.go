package uistate

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/legadomuebles/legado/internal/store"
)

func TestInitial(t *testing.T) {
	st := Initial()
	if st.Theme != ThemeLight {
		t.Errorf("Theme = %v, want light", st.Theme)
	}
	if st.CurrentCategory != CategoryAll {
		t.Errorf("CurrentCategory = %v, want all", st.CurrentCategory)
	}
	if st.SortBy != SortFeatured {
		t.Errorf("SortBy = %v, want featured", st.SortBy)
	}
	if st.ProductsPage != 1 {
		t.Errorf("ProductsPage = %v, want 1", st.ProductsPage)
	}
	if !st.HeaderVisible || !st.IsOnline {
		t.Error("HeaderVisible and IsOnline should start true")
	}
	if st.Toast != nil {
		t.Error("Toast should start nil")
	}
}

func TestMapCoversEveryKey(t *testing.T) {
	m := Initial().Map()
	for key := range decoders {
		if _, ok := m[key]; !ok {
			t.Errorf("Map() missing key %q", key)
		}
	}
	if len(m) != len(decoders) {
		t.Errorf("Map() has %d keys, decoders has %d", len(m), len(decoders))
	}
}

func TestReadRoundTrip(t *testing.T) {
	s := NewStore()
	want := Initial()
	if got := Read(s); got != want {
		t.Errorf("Read() = %+v, want %+v", got, want)
	}

	CurrentCategory.Set(s, "racks")
	ProductsPage.Set(s, 3)
	toast := &Toast{Message: "hola", Type: ToastSuccess}
	ActiveToast.Set(s, toast)

	got := Read(s)
	if got.CurrentCategory != "racks" || got.ProductsPage != 3 || got.Toast != toast {
		t.Errorf("Read() = %+v", got)
	}
}

func TestField_GetWrongType(t *testing.T) {
	s := store.New(map[string]any{KeyProductsPage: "three"})
	if got := ProductsPage.Get(s); got != 0 {
		t.Errorf("ProductsPage.Get() = %v, want 0 for mistyped value", got)
	}
}

func TestField_Subscribe(t *testing.T) {
	s := NewStore()

	var gotValue, gotPrevious ThemeMode
	calls := 0
	unsubscribe := Theme.Subscribe(s, func(value, previous ThemeMode) {
		calls++
		gotValue, gotPrevious = value, previous
	})

	Theme.Set(s, ThemeDark)
	Theme.Set(s, ThemeDark)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if gotValue != ThemeDark || gotPrevious != ThemeLight {
		t.Errorf("got (%v, %v), want (dark, light)", gotValue, gotPrevious)
	}

	unsubscribe()
	Theme.Set(s, ThemeLight)
	if calls != 1 {
		t.Errorf("calls after unsubscribe = %d, want 1", calls)
	}
}

func TestField_NilToastIsNoop(t *testing.T) {
	s := NewStore()
	calls := 0
	ActiveToast.Subscribe(s, func(value, previous *Toast) { calls++ })

	ActiveToast.Set(s, nil)
	if calls != 0 {
		t.Errorf("calls = %d, want 0 when clearing an already-empty toast", calls)
	}

	ActiveToast.Set(s, &Toast{Message: "a"})
	ActiveToast.Set(s, &Toast{Message: "a"})
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (distinct toast pointers)", calls)
	}
}

func TestSubscribeChanges(t *testing.T) {
	s := NewStore()
	at := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)

	var changes []Change
	SubscribeChanges(s, func() time.Time { return at }, func(c Change) {
		changes = append(changes, c)
	})

	s.SetMany(
		LightboxOpen.Entry(true),
		LightboxImage.Entry("a.jpg"),
	)

	if len(changes) != 2 {
		t.Fatalf("changes = %d, want 2", len(changes))
	}
	if changes[0].Key != KeyLightboxOpen || changes[0].Value != true || changes[0].Previous != false {
		t.Errorf("changes[0] = %+v", changes[0])
	}
	if !changes[1].At.Equal(at) {
		t.Errorf("changes[1].At = %v, want %v", changes[1].At, at)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		key     string
		raw     string
		want    any
		wantErr bool
	}{
		{KeyTheme, `"dark"`, ThemeDark, false},
		{KeyTheme, `"sepia"`, nil, true},
		{KeySortBy, `"price-asc"`, SortPriceAsc, false},
		{KeySortBy, `"cheapest"`, nil, true},
		{KeyProductsPage, `2`, 2, false},
		{KeyProductsPage, `0`, nil, true},
		{KeyProductsPage, `"two"`, nil, true},
		{KeyMobileMenuOpen, `true`, true, false},
		{KeySearchQuery, `"mesa"`, "mesa", false},
		{KeyScrollProgress, `0.5`, 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.key+" "+tt.raw, func(t *testing.T) {
			got, err := Decode(tt.key, json.RawMessage(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Decode() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Decode() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestDecode_UnknownKey(t *testing.T) {
	_, err := Decode("favorites", json.RawMessage(`[]`))
	if !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Decode() error = %v, want ErrUnknownKey", err)
	}
	if Known("favorites") {
		t.Error("Known(favorites) = true, want false")
	}
	if !Known(KeyTheme) {
		t.Error("Known(theme) = false, want true")
	}
}

func TestDecode_Toast(t *testing.T) {
	got, err := Decode(KeyToast, json.RawMessage(`{"message":"hola","type":"success"}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	toast, ok := got.(*Toast)
	if !ok || toast.Message != "hola" || toast.Type != ToastSuccess {
		t.Errorf("Decode() = %#v", got)
	}

	got, err = Decode(KeyToast, json.RawMessage(`null`))
	if err != nil {
		t.Fatalf("Decode(null) error = %v", err)
	}
	if got.(*Toast) != nil {
		t.Errorf("Decode(null) = %v, want nil toast", got)
	}
}

func TestThemeMode(t *testing.T) {
	if ThemeLight.Opposite() != ThemeDark || ThemeDark.Opposite() != ThemeLight {
		t.Error("Opposite() should swap light and dark")
	}
	if ThemeMode("").Opposite() != ThemeDark {
		t.Error("unset theme should toggle to dark")
	}
	if ThemeMode("blue").Valid() {
		t.Error("Valid() = true for unknown theme")
	}
}
