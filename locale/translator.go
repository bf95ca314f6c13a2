package locale

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pitabwire/util"
	"golang.org/x/text/language"
)

// Source supplies the locale translations are rendered in.
type Source interface {
	CurrentLocale() string
}

// Translator looks messages up in the locale its Source currently reports.
type Translator struct {
	bundle *i18n.Bundle
	source Source
}

// NewTranslator loads messages.<lang>.toml for every language from
// translationsFolder. The first language is the bundle default. An empty
// folder loads nothing, so every message renders as its id.
func NewTranslator(source Source, translationsFolder string, languages ...string) (*Translator, error) {
	defaultTag := language.English
	if len(languages) > 0 {
		if tag, err := language.Parse(languages[0]); err == nil {
			defaultTag = tag
		}
	}

	bundle := i18n.NewBundle(defaultTag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	if translationsFolder == "" {
		return &Translator{bundle: bundle, source: source}, nil
	}

	for _, lang := range languages {
		path := filepath.Join(translationsFolder, fmt.Sprintf("messages.%s.toml", lang))
		if _, err := bundle.LoadMessageFile(path); err != nil {
			return nil, fmt.Errorf("load translations %s: %w", path, err)
		}
	}

	return &Translator{bundle: bundle, source: source}, nil
}

// Translate renders messageID in the current locale.
func (t *Translator) Translate(ctx context.Context, messageID string) string {
	return t.TranslateWithMap(ctx, messageID, map[string]any{})
}

// TranslateWithMap renders messageID with template variables.
func (t *Translator) TranslateWithMap(ctx context.Context, messageID string, variables map[string]any) string {
	return t.TranslateWithMapAndCount(ctx, messageID, variables, 1)
}

// TranslateWithMapAndCount renders messageID and selects the plural form for count.
// Unknown messages render as their id.
func (t *Translator) TranslateWithMapAndCount(
	ctx context.Context,
	messageID string,
	variables map[string]any,
	count int,
) string {
	localizer := i18n.NewLocalizer(t.bundle, t.source.CurrentLocale())

	translated, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:      messageID,
		DefaultMessage: &i18n.Message{ID: messageID, Other: messageID},
		TemplateData:   variables,
		PluralCount:    count,
	})
	if err != nil {
		util.Log(ctx).WithError(err).
			WithField("messageID", messageID).
			WithField("locale", t.source.CurrentLocale()).
			Debug("could not perform translation")
	}
	if translated == "" {
		return messageID
	}
	return translated
}
