// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jotutor/jotutor/internal/locale"
	"github.com/jotutor/jotutor/internal/model"
)

// fakeCompleter replays a canned reply and records the prompts it saw.
type fakeCompleter struct {
	reply   string
	err     error
	systems []string
	users   []string
}

func (f *fakeCompleter) complete(_ context.Context, system, user string) (string, error) {
	f.systems = append(f.systems, system)
	f.users = append(f.users, user)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testContent() model.SiteContent {
	return model.SiteContent{
		Homepage: model.HomepageCopy{HeroTitle: "تعلم مع أفضل المعلمين", CTALabel: "ابدأ الآن"},
		About:    model.AboutCopy{Title: "من نحن", Mission: "رسالتنا"},
		FAQ: []model.FAQItem{
			{Question: "كيف أسجل؟", Answer: "من صفحة التسجيل"},
		},
		Contact: model.ContactInfo{Email: "info@jotutor.com", Phone: "+962790000000"},
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("New with empty key: err = %v, want ErrNotConfigured", err)
	}
	if _, err := New(Config{APIKey: "sk-test"}); err != nil {
		t.Fatalf("New with key: %v", err)
	}
}

func TestTranslateSiteContent(t *testing.T) {
	translated := testContent()
	translated.Homepage.HeroTitle = "Learn with the best teachers"
	translated.Homepage.CTALabel = "Start now"
	translated.About.Title = "About us"
	translated.FAQ[0] = model.FAQItem{Question: "How do I sign up?", Answer: "From the signup page"}
	reply, _ := json.Marshal(translated)

	fake := &fakeCompleter{reply: string(reply)}
	c := &Client{api: fake}

	got, err := c.TranslateSiteContent(context.Background(), testContent())
	if err != nil {
		t.Fatalf("TranslateSiteContent: %v", err)
	}
	if got.Homepage.HeroTitle != "Learn with the best teachers" {
		t.Errorf("HeroTitle = %q", got.Homepage.HeroTitle)
	}
	if got.FAQ[0].Question != "How do I sign up?" {
		t.Errorf("FAQ question = %q", got.FAQ[0].Question)
	}
	if len(fake.users) != 1 {
		t.Fatalf("complete called %d times, want 1", len(fake.users))
	}

	// The request payload must be the source document itself.
	var sent model.SiteContent
	if err := json.Unmarshal([]byte(fake.users[0]), &sent); err != nil {
		t.Fatalf("request payload is not the content document: %v", err)
	}
	if sent.Homepage.HeroTitle != "تعلم مع أفضل المعلمين" {
		t.Errorf("sent HeroTitle = %q", sent.Homepage.HeroTitle)
	}
}

func TestTranslateSiteContentStripsCodeFence(t *testing.T) {
	translated := testContent()
	translated.About.Title = "About us"
	body, _ := json.Marshal(translated)

	c := &Client{api: &fakeCompleter{reply: "```json\n" + string(body) + "\n```"}}
	got, err := c.TranslateSiteContent(context.Background(), testContent())
	if err != nil {
		t.Fatalf("TranslateSiteContent: %v", err)
	}
	if got.About.Title != "About us" {
		t.Errorf("Title = %q", got.About.Title)
	}
}

func TestTranslateSiteContentKeepsContactDetails(t *testing.T) {
	translated := testContent()
	translated.Contact.Email = "mangled@example.com"
	translated.Contact.Phone = "12345"
	body, _ := json.Marshal(translated)

	c := &Client{api: &fakeCompleter{reply: string(body)}}
	got, err := c.TranslateSiteContent(context.Background(), testContent())
	if err != nil {
		t.Fatalf("TranslateSiteContent: %v", err)
	}
	if got.Contact.Email != "info@jotutor.com" || got.Contact.Phone != "+962790000000" {
		t.Errorf("contact details rewritten: %+v", got.Contact)
	}
}

func TestTranslateSiteContentRejectsDroppedFAQ(t *testing.T) {
	translated := testContent()
	translated.FAQ = nil
	body, _ := json.Marshal(translated)

	c := &Client{api: &fakeCompleter{reply: string(body)}}
	if _, err := c.TranslateSiteContent(context.Background(), testContent()); err == nil {
		t.Fatal("expected error for dropped FAQ entries")
	}
}

func TestTranslateSiteContentPropagatesAPIError(t *testing.T) {
	apiErr := errors.New("rate limited")
	c := &Client{api: &fakeCompleter{err: apiErr}}
	if _, err := c.TranslateSiteContent(context.Background(), testContent()); !errors.Is(err, apiErr) {
		t.Fatalf("err = %v, want wrapped %v", err, apiErr)
	}
}

func TestChatFiltersUnknownCourseIDs(t *testing.T) {
	fake := &fakeCompleter{reply: `{"reply": "جرب دورة الرياضيات", "course_ids": ["c1", "ghost", "c2"]}`}
	c := &Client{api: fake}

	got, err := c.Chat(context.Background(), ChatRequest{
		Message: "أبحث عن دورة رياضيات",
		Lang:    locale.Arabic,
		Courses: []CourseSummary{
			{ID: "c1", Title: "رياضيات توجيهي"},
			{ID: "c2", Title: "فيزياء"},
		},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got.Reply != "جرب دورة الرياضيات" {
		t.Errorf("Reply = %q", got.Reply)
	}
	if len(got.CourseIDs) != 2 || got.CourseIDs[0] != "c1" || got.CourseIDs[1] != "c2" {
		t.Errorf("CourseIDs = %v, want [c1 c2]", got.CourseIDs)
	}
}

func TestChatLanguageSelectsPrompt(t *testing.T) {
	fake := &fakeCompleter{reply: `{"reply": "Try the math course", "course_ids": []}`}
	c := &Client{api: fake}

	if _, err := c.Chat(context.Background(), ChatRequest{Message: "math help", Lang: locale.English}); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if sys := fake.systems[0]; !strings.Contains(sys, "Answer in English.") {
		t.Errorf("system prompt missing English instruction:\n%s", sys)
	}
}

func TestChatPlainTextReplyAccepted(t *testing.T) {
	c := &Client{api: &fakeCompleter{reply: "عذراً، لا توجد دورات مناسبة الآن."}}
	got, err := c.Chat(context.Background(), ChatRequest{Message: "دورة كيمياء", Lang: locale.Arabic})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got.Reply == "" || len(got.CourseIDs) != 0 {
		t.Errorf("got %+v, want plain reply with no ids", got)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	c := &Client{api: &fakeCompleter{reply: "{}"}}
	if _, err := c.Chat(context.Background(), ChatRequest{Message: "   "}); err == nil {
		t.Fatal("expected error for empty message")
	}
}

