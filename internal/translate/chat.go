// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jotutor/jotutor/internal/locale"
)

// CourseSummary is the slice of the course catalog handed to the
// assistant so it can ground its recommendations.
type CourseSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	TeacherName string `json:"teacher_name"`
	Subject     string `json:"subject"`
	Stage       string `json:"stage"`
	PriceJOD    string `json:"price_jod"`
}

// ChatRequest is one user turn plus the catalog snapshot.
type ChatRequest struct {
	Message string
	Lang    locale.Lang
	Courses []CourseSummary
}

// ChatReply is the assistant answer with grounded course suggestions.
type ChatReply struct {
	Reply     string   `json:"reply"`
	CourseIDs []string `json:"course_ids"`
}

const chatSystemPrompt = `You are the study advisor for JoTutor, an online tutoring marketplace in Jordan.
You help students and parents find suitable courses from the catalog provided below.
Rules:
- Answer in %s.
- Only recommend courses from the catalog; never invent courses.
- Reply ONLY with a JSON object: {"reply": "<your answer>", "course_ids": ["<id>", ...]}.
- course_ids must contain ids copied verbatim from the catalog, at most three, or an empty array when nothing fits.
- Keep the answer short and practical.

Catalog:
%s`

// Chat answers one user message against the given catalog snapshot.
// Recommended ids that do not appear in the snapshot are dropped.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("chat: empty message")
	}

	catalog, err := json.Marshal(req.Courses)
	if err != nil {
		return nil, fmt.Errorf("chat: encode catalog: %w", err)
	}

	answerLang := "Arabic"
	if req.Lang == locale.English {
		answerLang = "English"
	}

	system := fmt.Sprintf(chatSystemPrompt, answerLang, catalog)
	raw, err := c.api.complete(ctx, system, req.Message)
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}

	var reply ChatReply
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &reply); err != nil {
		// Some models reply with plain text despite instructions. Treat
		// that as an answer with no recommendations.
		reply = ChatReply{Reply: strings.TrimSpace(raw)}
	}
	if strings.TrimSpace(reply.Reply) == "" {
		return nil, fmt.Errorf("chat: empty reply")
	}

	known := make(map[string]bool, len(req.Courses))
	for _, course := range req.Courses {
		known[course.ID] = true
	}
	kept := reply.CourseIDs[:0]
	for _, id := range reply.CourseIDs {
		if known[id] {
			kept = append(kept, id)
		}
	}
	reply.CourseIDs = kept

	return &reply, nil
}
