// Package site embeds the storefront page shell.
//
// assets/index.html is an html/template rendered by the server at "/". It
// receives the title, the active theme and its meta colour, the category
// pills, the current product view and the contact card.
package site

import "embed"

// Assets holds assets/index.html.
//
//go:embed assets/*
var Assets embed.FS
