package engine

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-celebrations/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Formatter renders celebration events into notices.
type Formatter struct {
	localizer *i18n.Localizer

	// IncludeDuration adds the anniversary service length to the text.
	// Off by default; birthdays never carry a duration.
	IncludeDuration bool
}

// NewFormatter loads the embedded notice templates and selects lang.
// Unknown languages fall back to English.
func NewFormatter(lang string, includeDuration bool) (*Formatter, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, fmt.Errorf("%s %s: %w", config.ErrLocaleLoad, name, err)
		}
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyFile, name,
		)
	}

	if lang == "" {
		lang = config.DefaultLanguage
	}
	return &Formatter{
		localizer:       i18n.NewLocalizer(bundle, lang),
		IncludeDuration: includeDuration,
	}, nil
}

// Format renders one event. The roster lookup uses the event email, so an
// event the directory could not resolve is rendered without a mention.
// Every event yields exactly one notice.
func (f *Formatter) Format(e CelebrationEvent, roster Roster) Notice {
	handle, mention := roster.Lookup(e.Email)
	withDuration := f.IncludeDuration && e.Kind == Anniversary && e.Duration != ""

	var key, fallback string
	var args []any
	switch {
	case e.Kind == Birthday && mention:
		key, fallback, args = config.TKeyBirthdayMention, config.FallbackBirthdayMention, []any{e.Name, handle}
	case e.Kind == Birthday:
		key, fallback, args = config.TKeyBirthday, config.FallbackBirthday, []any{e.Name}
	case withDuration && mention:
		key, fallback, args = config.TKeyAnniversaryDurationMention, config.FallbackAnniversaryDurationMention, []any{e.Name, e.Duration, handle}
	case withDuration:
		key, fallback, args = config.TKeyAnniversaryDuration, config.FallbackAnniversaryDuration, []any{e.Name, e.Duration}
	case mention:
		key, fallback, args = config.TKeyAnniversaryMention, config.FallbackAnniversaryMention, []any{e.Name, handle}
	default:
		key, fallback, args = config.TKeyAnniversary, config.FallbackAnniversary, []any{e.Name}
	}

	data := map[string]string{
		config.TDataName:     e.Name,
		config.TDataHandle:   handle,
		config.TDataDuration: e.Duration,
	}
	text, ok := f.localize(key, data)
	if !ok {
		text = fmt.Sprintf(fallback, args...)
	}
	return Notice{Text: text, MentionsHandle: mention}
}

// FormatAll renders events in order.
func (f *Formatter) FormatAll(events []CelebrationEvent, roster Roster) []Notice {
	notices := make([]Notice, 0, len(events))
	for _, e := range events {
		notices = append(notices, f.Format(e, roster))
	}
	return notices
}

// NoNotices returns the diagnostic reported when a run produced nothing.
func (f *Formatter) NoNotices() string {
	if text, ok := f.localize(config.TKeyNoNotices, nil); ok {
		return text
	}
	return config.FallbackNoNotices
}

func (f *Formatter) localize(key string, data map[string]string) (string, bool) {
	if f == nil || f.localizer == nil {
		return "", false
	}
	msg, err := f.localizer.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return "", false
	}
	return msg, true
}
