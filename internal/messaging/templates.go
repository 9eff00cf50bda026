package messaging

import (
	"fmt"
	"strings"
)

// ProductInquiry is the message sent from a product card.
func ProductInquiry(productName string) string {
	return fmt.Sprintf("Hola Legado Muebles, me interesa el producto: *%s*. ¿Tienen stock y disponibilidad?", productName)
}

// QuoteRequest is the content of the quote form.
type QuoteRequest struct {
	Nombre   string `json:"nombre"`
	WhatsApp string `json:"whatsapp"`
	Interes  string `json:"interes"`
	Mensaje  string `json:"mensaje,omitempty"`
}

// QuoteMessage renders a quote request. The free-text line appears only
// when Mensaje is set.
func QuoteMessage(q QuoteRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hola Legado Muebles, soy *%s*.\n\n", q.Nombre)
	fmt.Fprintf(&b, "📦 Me interesa: *%s*\n", q.Interes)
	if q.Mensaje != "" {
		fmt.Fprintf(&b, "\n💬 Mensaje: %s", q.Mensaje)
	}
	fmt.Fprintf(&b, "\n\n📱 Mi WhatsApp: %s", q.WhatsApp)
	return b.String()
}

// Interests lists the options of the quote form's "interes" field.
var Interests = []string{
	"Muebles de Cocina",
	"Placard / Ropero",
	"Rack TV",
	"Mesitas de Luz",
	"Escritorio",
	"Mesa de Comedor",
	"Vanitory",
	"Otro",
}
