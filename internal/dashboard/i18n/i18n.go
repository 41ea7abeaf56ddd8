// Package i18n holds the user-facing copy of the dashboard. Spanish is the
// default language; English is available.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys.
const (
	AppTitle = "app.title"
	Yes      = "common.yes"
	No       = "common.no"
	Cancel   = "common.cancel"

	LoginFailed          = "session.login_failed"
	InvalidCredentials   = "session.invalid_credentials"
	IdentityFailed       = "session.identity_failed"
	LogoutPrompt         = "session.logout_prompt"
	LogoutFailed         = "session.logout_failed"
	LoggingOut           = "session.logging_out"
	NotAuthenticated     = "session.not_authenticated"
	CategoriesListFailed = "categories.list_failed"
	CategoryCreated      = "categories.created"
	CategoryCreateFailed = "categories.create_failed"
	CategoryUpdated      = "categories.updated"
	CategoryUpdateFailed = "categories.update_failed"
	CategoryDeleteTitle  = "categories.delete_title"
	CategoryDeletePrompt = "categories.delete_prompt"
	CategoryDeleted      = "categories.deleted"
	CategoryDeleteFailed = "categories.delete_failed"
	CategoryDeleting     = "categories.deleting"

	IncidentsNoUser       = "incidents.no_user"
	IncidentsListFailed   = "incidents.list_failed"
	IncidentFetchFailed   = "incidents.fetch_failed"
	IncidentCreated       = "incidents.created"
	IncidentCreateFailed  = "incidents.create_failed"
	IncidentUpdated       = "incidents.updated"
	IncidentUpdateFailed  = "incidents.update_failed"
	IncidentDeleteTitle   = "incidents.delete_title"
	IncidentDeletePrompt  = "incidents.delete_prompt"
	IncidentDeleteConfirm = "incidents.delete_confirm"
	IncidentDeleted       = "incidents.deleted"
	IncidentDeleteFailed  = "incidents.delete_failed"
	IncidentDeleting      = "incidents.deleting"
	InvalidPayload        = "incidents.invalid_payload"

	NoData          = "stats.no_data"
	Uncategorized   = "stats.uncategorized"
	UnknownReporter = "stats.unknown_reporter"
	NoLocation      = "stats.no_location"
)

// ServerInvalidCredentials is the API's copy for a failed login.
const ServerInvalidCredentials = "The provided credentials are incorrect."

var supportedTags = []language.Tag{
	language.Spanish,
	language.English,
}

var tagMatcher = language.NewMatcher(supportedTags)

// Default returns the default language tag.
func Default() language.Tag {
	return language.Spanish
}

// Resolve maps a language name such as "es", "en-US" or "" to a supported tag.
func Resolve(lang string) language.Tag {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return Default()
	}
	parsed, err := language.Parse(lang)
	if err != nil {
		return Default()
	}
	_, idx, conf := tagMatcher.Match(parsed)
	if conf == language.No {
		return Default()
	}
	return supportedTags[idx]
}

// Printer translates message keys.
type Printer struct {
	p *message.Printer
}

// New returns a Printer for lang; unknown languages fall back to Spanish.
func New(lang string) *Printer {
	return &Printer{p: message.NewPrinter(Resolve(lang))}
}

// T returns the text for key formatted with args.
func (p *Printer) T(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}

// Server translates a known API message into the printer's language and
// returns any other message unchanged.
func (p *Printer) Server(msg string) string {
	if msg == ServerInvalidCredentials {
		return p.T(InvalidCredentials)
	}
	return msg
}
