// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n provides the fixed UI chrome strings (navigation labels,
// form labels, button text) in both site languages. Catalog content is
// NOT translated here; that is the projection service's job. Arabic is
// the default.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/jotutor/jotutor/internal/locale"
)

//go:embed locales
var localesFS embed.FS

// Message represents a single translatable message.
type Message struct {
	ID          string `json:"id"`
	Translation string `json:"translation"`
}

// MessageFile represents the structure of a messages JSON file.
type MessageFile struct {
	Language string    `json:"language"`
	Messages []Message `json:"messages"`
}

// Catalog holds all translations for all supported languages.
type Catalog struct {
	mu           sync.RWMutex
	translations map[string]map[string]string // lang -> key -> translation
	matcher      language.Matcher
	supported    []language.Tag
	defaultLang  string
	logger       *slog.Logger
}

var catalog *Catalog

// SupportedLanguages lists the site languages. Order matters: the first
// entry is the default and the matcher's fallback.
var SupportedLanguages = []string{"ar", "en"}

// DefaultLanguage is the primary site language.
const DefaultLanguage = "ar"

// Init loads the embedded message catalogs.
func Init(logger *slog.Logger) error {
	catalog = &Catalog{
		translations: make(map[string]map[string]string),
		defaultLang:  DefaultLanguage,
		logger:       logger,
	}

	tags := make([]language.Tag, 0, len(SupportedLanguages))
	for _, lang := range SupportedLanguages {
		tags = append(tags, language.MustParse(lang))
	}
	catalog.supported = tags
	catalog.matcher = language.NewMatcher(tags)

	for _, lang := range SupportedLanguages {
		if err := catalog.loadLanguage(lang); err != nil {
			return fmt.Errorf("failed to load language %s: %w", lang, err)
		}
	}

	if logger != nil {
		logger.Info("i18n initialized", "languages", SupportedLanguages)
	}
	return nil
}

func (c *Catalog) loadLanguage(lang string) error {
	path := fmt.Sprintf("locales/%s/messages.json", lang)
	data, err := localesFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var msgFile MessageFile
	if err := json.Unmarshal(data, &msgFile); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.translations[lang] = make(map[string]string, len(msgFile.Messages))
	for _, msg := range msgFile.Messages {
		c.translations[lang][msg.ID] = msg.Translation
	}

	if c.logger != nil {
		c.logger.Debug("loaded translations", "language", lang, "count", len(msgFile.Messages))
	}
	return nil
}

// T translates a message key to the specified language. An unknown key
// returns the key itself. Optional arguments are applied with Sprintf.
func T(lang locale.Lang, key string, args ...any) string {
	if catalog == nil {
		return key
	}

	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	langTranslations, ok := catalog.translations[string(lang)]
	if !ok {
		langTranslations, ok = catalog.translations[catalog.defaultLang]
		if !ok {
			return key
		}
	}

	translation, ok := langTranslations[key]
	if !ok {
		if string(lang) != catalog.defaultLang {
			if defaults, ok := catalog.translations[catalog.defaultLang]; ok {
				if translation, ok = defaults[key]; ok {
					if len(args) > 0 {
						return fmt.Sprintf(translation, args...)
					}
					return translation
				}
			}
		}
		return key
	}

	if len(args) > 0 {
		return fmt.Sprintf(translation, args...)
	}
	return translation
}

// MatchLanguage finds the best supported language for an Accept-Language
// header or a bare language code.
func MatchLanguage(acceptLang string) string {
	if catalog == nil {
		return DefaultLanguage
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(acceptLang)
		if err != nil {
			return catalog.defaultLang
		}
		tags = []language.Tag{tag}
	}

	_, idx, conf := catalog.matcher.Match(tags...)
	// A Low or No confidence match means none of the requested
	// languages is actually close to a supported one; the matcher
	// still picks an arbitrary index, so fall back to Arabic instead.
	if conf <= language.Low {
		return catalog.defaultLang
	}
	if idx >= 0 && idx < len(catalog.supported) {
		return catalog.supported[idx].String()
	}
	return catalog.defaultLang
}

// IsSupported checks if a language code is one of the site languages.
func IsSupported(lang string) bool {
	lang = strings.ToLower(lang)
	for _, supported := range SupportedLanguages {
		if supported == lang {
			return true
		}
	}
	return false
}

// TranslationCount returns the number of translations loaded for a
// language.
func TranslationCount(lang string) int {
	if catalog == nil {
		return 0
	}

	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	if translations, ok := catalog.translations[lang]; ok {
		return len(translations)
	}
	return 0
}
