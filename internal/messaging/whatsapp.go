// Package messaging builds WhatsApp click-to-chat links and the messages the
// storefront pre-fills in them.
package messaging

import (
	"net/url"
	"strings"
)

// Defaults for the store's WhatsApp line.
const (
	DefaultBaseURL = "https://wa.me/"
	DefaultNumber  = "5492604364497"
)

// Link is a WhatsApp click-to-chat target.
type Link struct {
	// Number in international format without "+" or separators.
	Number string
	// BaseURL is the click-to-chat prefix. Empty means [DefaultBaseURL].
	BaseURL string
}

// DefaultLink is the store's own line.
var DefaultLink = Link{Number: DefaultNumber, BaseURL: DefaultBaseURL}

// URL returns the chat link, pre-filled with message when it is not empty.
func (l Link) URL(message string) string {
	base := l.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u := base + l.Number
	if message != "" {
		u += "?text=" + QueryEscape(message)
	}
	return u
}

// encodeURIComponent leaves these unescaped on top of what url.QueryEscape keeps.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// QueryEscape percent-encodes s the way browsers encode a URI component:
// spaces become %20 and the marks !'()* are kept.
func QueryEscape(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
