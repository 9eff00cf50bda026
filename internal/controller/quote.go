package controller

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/legadomuebles/legado/internal/messaging"
	"github.com/legadomuebles/legado/internal/persist"
	"github.com/legadomuebles/legado/internal/uistate"
)

// ErrInvalidQuote is wrapped by every [*QuoteError].
var ErrInvalidQuote = errors.New("invalid quote request")

// QuoteSentMessage is the toast shown after a submission.
const QuoteSentMessage = "¡Mensaje enviado! Te redirigimos a WhatsApp."

// QuoteError lists the fields that failed validation.
type QuoteError struct {
	// Fields maps a form field name to the problem with it.
	Fields map[string]string
}

func (e *QuoteError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidQuote, strings.Join(parts, "; "))
}

func (e *QuoteError) Unwrap() error { return ErrInvalidQuote }

// QuoteResult is a submitted request ready to hand off to WhatsApp.
type QuoteResult struct {
	RequestID string `json:"requestId"`
	Message   string `json:"message"`
	URL       string `json:"url"`
}

// QuoteForm backs the quote request form: draft autosave and submission.
type QuoteForm struct {
	storage persist.Storage
	link    messaging.Link
	toast   *Toast
	logger  *slog.Logger
	policy  *bluemonday.Policy
}

func NewQuoteForm(storage persist.Storage, link messaging.Link, toast *Toast, logger *slog.Logger) *QuoteForm {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuoteForm{
		storage: storage,
		link:    link,
		toast:   toast,
		logger:  logger,
		policy:  bluemonday.StrictPolicy(),
	}
}

// LoadDraft returns the autosaved fields, empty when there are none.
func (f *QuoteForm) LoadDraft() messaging.QuoteRequest {
	var draft messaging.QuoteRequest
	if !f.storage.Get(persist.KeyForm, &draft) {
		return messaging.QuoteRequest{}
	}
	return draft
}

// SaveDraft autosaves the form as the user edits it.
func (f *QuoteForm) SaveDraft(req messaging.QuoteRequest) bool {
	return f.storage.Set(persist.KeyForm, req)
}

// Submit validates req, builds the WhatsApp hand-off, drops the draft and
// shows the confirmation toast. Validation failures return a [*QuoteError].
func (f *QuoteForm) Submit(req messaging.QuoteRequest) (QuoteResult, error) {
	req = f.clean(req)
	if err := validateQuote(req); err != nil {
		return QuoteResult{}, err
	}

	msg := messaging.QuoteMessage(req)
	result := QuoteResult{
		RequestID: uuid.NewString(),
		Message:   msg,
		URL:       f.link.URL(msg),
	}

	f.storage.Remove(persist.KeyForm)
	if f.toast != nil {
		f.toast.Show(QuoteSentMessage, uistate.ToastSuccess, 0)
	}

	f.logger.Info("quote request submitted",
		"request_id", result.RequestID,
		"interes", req.Interes,
	)
	return result, nil
}

// clean strips markup and surrounding space from every field. The message
// is plain text, so entities the sanitiser produces are decoded again.
func (f *QuoteForm) clean(req messaging.QuoteRequest) messaging.QuoteRequest {
	text := func(s string) string {
		return strings.TrimSpace(html.UnescapeString(f.policy.Sanitize(s)))
	}
	return messaging.QuoteRequest{
		Nombre:   text(req.Nombre),
		WhatsApp: text(req.WhatsApp),
		Interes:  text(req.Interes),
		Mensaje:  text(req.Mensaje),
	}
}

func validateQuote(req messaging.QuoteRequest) error {
	fields := make(map[string]string)
	if req.Nombre == "" {
		fields["nombre"] = "is required"
	}
	if req.WhatsApp == "" {
		fields["whatsapp"] = "is required"
	}
	switch {
	case req.Interes == "":
		fields["interes"] = "is required"
	case !slices.Contains(messaging.Interests, req.Interes):
		fields["interes"] = fmt.Sprintf("unknown option %q", req.Interes)
	}
	if len(fields) > 0 {
		return &QuoteError{Fields: fields}
	}
	return nil
}
