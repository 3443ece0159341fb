// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jotutor/jotutor/internal/model"
)

const siteContentSystemPrompt = `You are a professional Arabic-to-English translator for an online tutoring marketplace in Jordan.
You will receive a JSON document containing Arabic website copy.
Translate every string value into natural, fluent English.
Rules:
- Return ONLY the translated JSON document, with exactly the same keys and structure.
- Do not translate, alter, or omit any JSON keys.
- Keep email addresses, phone numbers, URLs, and numbers unchanged.
- Do not add commentary or Markdown formatting.`

// TranslateSiteContent translates the Arabic site-copy document into
// English, preserving the document shape. It satisfies the catalog
// Translator interface.
func (c *Client) TranslateSiteContent(ctx context.Context, content model.SiteContent) (model.SiteContent, error) {
	payload, err := json.Marshal(content)
	if err != nil {
		return model.SiteContent{}, fmt.Errorf("translate: encode site content: %w", err)
	}

	reply, err := c.api.complete(ctx, siteContentSystemPrompt, string(payload))
	if err != nil {
		return model.SiteContent{}, fmt.Errorf("translate site content: %w", err)
	}

	var translated model.SiteContent
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &translated); err != nil {
		return model.SiteContent{}, fmt.Errorf("translate: decode reply: %w", err)
	}
	if len(translated.FAQ) != len(content.FAQ) {
		return model.SiteContent{}, fmt.Errorf("translate: reply dropped FAQ entries: got %d, want %d",
			len(translated.FAQ), len(content.FAQ))
	}

	// Contact details are not prose. Carry the source values through so a
	// creative model cannot mangle them.
	translated.Contact.Email = content.Contact.Email
	translated.Contact.Phone = content.Contact.Phone
	translated.Contact.WhatsApp = content.Contact.WhatsApp

	return translated, nil
}
