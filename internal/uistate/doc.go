// Package uistate gives the storefront's shared UI state a fixed shape on top
// of the untyped [store.Store].
//
// Each known key has a string constant (KeyTheme, KeyCurrentCategory, ...)
// and a typed [Field] accessor, so controllers read and write values without
// type assertions:
//
//	uistate.CurrentCategory.Set(s, "mesitas")
//	page := uistate.ProductsPage.Get(s)
//
// [State] is the same data as a struct, used for the initial snapshot and for
// JSON responses. [SubscribeChanges] delivers every change as a [Change]
// event tagged with its key, the typed replacement for a wildcard listener.
package uistate
