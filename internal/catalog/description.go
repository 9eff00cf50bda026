package catalog

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify))

	descriptionPolicy = newDescriptionPolicy()
)

func newDescriptionPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// RenderDescription converts a product description from markdown to HTML
// and strips anything outside the user-content allow list. Raw HTML in the
// source is dropped by the markdown renderer before sanitising.
func RenderDescription(md string) (template.HTML, error) {
	trimmed := strings.TrimSpace(md)
	if trimmed == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(trimmed), &buf); err != nil {
		return "", err
	}
	sanitized := bytes.TrimSpace(descriptionPolicy.SanitizeBytes(buf.Bytes()))
	return template.HTML(sanitized), nil
}
