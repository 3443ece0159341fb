// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the embedded templates once at startup and
// renders site pages (RTL Arabic by default) and the admin console.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/jotutor/jotutor/internal/i18n"
	"github.com/jotutor/jotutor/internal/locale"
	"github.com/jotutor/jotutor/internal/model"
	"github.com/jotutor/jotutor/internal/nav"
)

// Renderer holds the parsed template set.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	isDev          bool
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	IsDev          bool
}

// New parses all templates from the filesystem.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		isDev:          cfg.IsDev,
	}

	if err := r.parseGroup(cfg.TemplatesFS, "site", "layouts/base.html"); err != nil {
		return nil, err
	}
	if err := r.parseGroup(cfg.TemplatesFS, "admin", "layouts/admin.html"); err != nil {
		return nil, err
	}
	return r, nil
}

// parseGroup parses every page under dir against its layout plus the
// shared partials.
func (r *Renderer) parseGroup(templatesFS fs.FS, dir, layout string) error {
	partials, err := templateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	pages, err := templateFiles(templatesFS, dir)
	if err != nil {
		return fmt.Errorf("getting %s templates: %w", dir, err)
	}

	for _, page := range pages {
		name := dir + "/" + strings.TrimSuffix(filepath.Base(page), ".html")

		files := []string{layout}
		files = append(files, partials...)
		files = append(files, page)

		tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return nil
}

func templateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	var files []string
	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		return files, nil
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("2006-01-02")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},
		"truncate": func(s string, length int) string {
			runes := []rune(s)
			if len(runes) <= length {
				return s
			}
			return string(runes[:length]) + "…"
		},
		"safe": func(s string) template.HTML {
			return template.HTML(s)
		},
		"money": func(amount float64) string {
			return fmt.Sprintf("%.2f", amount)
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"seq": func(start, end int) []int {
			var result []int
			for i := start; i <= end; i++ {
				result = append(result, i)
			}
			return result
		},
	}
}

// TemplateData is the payload every template receives.
type TemplateData struct {
	Title     string
	Lang      locale.Lang
	User      *model.User
	Nav       *nav.State
	Copy      model.SiteContent
	CopyLang  locale.Lang
	Data      any
	Flash     string
	FlashType string
	CSRFToken string
	Year      int
	Path      string
}

// T translates a message key in the page language.
func (d TemplateData) T(key string, args ...any) string {
	return i18n.T(d.Lang, key, args...)
}

// Dir returns the writing direction for the page language.
func (d TemplateData) Dir() string {
	return d.Lang.Direction()
}

// Degraded reports that English was requested but the site copy is
// showing the Arabic fallback.
func (d TemplateData) Degraded() bool {
	return d.Lang == locale.English && d.CopyLang == locale.Arabic
}

// Render writes the named template. Output is buffered so a template
// error can still produce a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	if data.Lang == "" {
		data.Lang = locale.Arabic
	}
	if data.CopyLang == "" {
		data.CopyLang = data.Lang
	}
	data.Year = time.Now().Year()
	data.Path = req.URL.Path

	if r.sessionManager != nil {
		if flash := r.sessionManager.PopString(req.Context(), "flash"); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), "flash_type")
			if data.FlashType == "" {
				data.FlashType = "info"
			}
		}
	}

	root := "base"
	if strings.HasPrefix(name, "admin/") {
		root = "admin"
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, root, data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
	return nil
}

// SetFlash stores a one-shot notice in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), "flash", message)
		r.sessionManager.Put(req.Context(), "flash_type", flashType)
	}
}
