// Package translator localizes user-facing API messages.
package translator

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

const (
	LanguageEn = "en"
	LanguageFr = "fr"
)

// Message ids shared by every translation file.
const (
	MsgUserAlreadyExists  = "userAlreadyExists"
	MsgInvalidCredentials = "invalidCredentials"
	MsgNoToken            = "noToken"
	MsgTokenNotValid      = "tokenNotValid"
	MsgTaskNotFound       = "taskNotFound"
	MsgUserNotAuthorized  = "userNotAuthorized"
	MsgTaskRemoved        = "taskRemoved"
	MsgServerError        = "serverError"
	MsgInvalidRequestBody = "invalidRequestBody"
	MsgInvalidField       = "invalidField"
)

//go:embed translations/*.toml
var translationsFS embed.FS

type Translator struct {
	logger zerolog.Logger
	bundle *i18n.Bundle
}

// New loads every embedded translation file. English is the fallback.
func New(logger zerolog.Logger) (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(translationsFS, "translations/*.toml")
	if err != nil {
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}
	for _, file := range files {
		_, err = bundle.LoadMessageFileFS(translationsFS, file)
		if err != nil {
			return nil, fmt.Errorf("failed to load translation file %s: %w", file, err)
		}
	}

	return &Translator{
		logger: logger,
		bundle: bundle,
	}, nil
}

// Translate returns the message for lang, which may be a raw
// Accept-Language header. It falls back to English and then to the
// message id itself.
func (t *Translator) Translate(lang, messageID string, data map[string]any) string {
	localizer := i18n.NewLocalizer(t.bundle, lang, LanguageEn)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		t.logger.Warn().
			Err(err).
			Str("lang", lang).
			Str("message_id", messageID).
			Msg("translation not found")
		return messageID
	}
	return msg
}
