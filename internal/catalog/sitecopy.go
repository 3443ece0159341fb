// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jotutor/jotutor/internal/locale"
	"github.com/jotutor/jotutor/internal/model"
	"github.com/jotutor/jotutor/internal/store"
)

// Translator produces the English rendition of the Arabic site copy.
// Implementations must preserve the document shape and translate only
// the string values.
type Translator interface {
	TranslateSiteContent(ctx context.Context, content model.SiteContent) (model.SiteContent, error)
}

// SiteCopy returns the site copy for one language, plus the language the
// copy is actually in. Arabic is served straight from the store. English
// is translated on demand and memoized per content version; when no
// translator is configured or the translation fails, the Arabic copy is
// served as a degraded fallback and the returned language says so.
func (s *Service) SiteCopy(ctx context.Context, lang locale.Lang) (model.SiteContent, locale.Lang, error) {
	rec, err := s.queries.GetSiteContent(ctx)
	if err != nil {
		return model.SiteContent{}, locale.Arabic, err
	}

	if lang != locale.English {
		return rec.Content, locale.Arabic, nil
	}

	if s.translator == nil {
		return rec.Content, locale.Arabic, nil
	}

	key := fmt.Sprintf("%s:v%d:en", store.CollectionSiteContent, rec.Version)
	if cached, ok := s.sitecopy.Get(ctx, key); ok {
		return *cached, locale.English, nil
	}

	translated, err := s.translator.TranslateSiteContent(ctx, rec.Content)
	if err != nil {
		slog.Warn("site copy translation failed, serving arabic",
			"version", rec.Version, "error", err)
		return rec.Content, locale.Arabic, nil
	}

	if err := s.sitecopy.SetWithTTL(ctx, key, &translated, 0); err != nil {
		slog.Warn("caching translated site copy failed", "error", err)
	}
	return translated, locale.English, nil
}

// InvalidateSiteCopy drops every cached translated rendition. Called
// after an admin edits the site copy so the next English request
// re-translates instead of waiting for the old version's entries to
// age out.
func (s *Service) InvalidateSiteCopy(ctx context.Context) {
	if err := s.backend.DeleteByPrefix(ctx, store.CollectionSiteContent+":"); err != nil {
		slog.Warn("site copy cache invalidation failed", "error", err)
	}
}
