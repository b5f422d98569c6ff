package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	"sync"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// EmailData defines standard fields for email templates.
type EmailData struct {
	Name           string `json:"Name"`
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`

	AppName     string `json:"AppName"`
	CompanyName string `json:"CompanyName"`
	SupportURL  string `json:"SupportURL"`

	// Title and Message carry notification content.
	Title     string `json:"Title"`
	Message   string `json:"Message"`
	ActionURL string `json:"ActionURL"`

	Code          string `json:"Code"`
	ExpiresAtText string `json:"ExpiresAtText"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.IsZero() {
			return fallback
		}
		return value
	}
}

func baseFuncs() map[string]any {
	return map[string]any{
		"now":        func() time.Time { return time.Now().UTC() },
		"formatTime": func(t time.Time, layout string) string { return t.Format(layout) },
		"upper":      strings.ToUpper,
		"default":    defaultFn,
	}
}

var (
	htmlFuncMap = htmpl.FuncMap(baseFuncs())
	textFuncMap = texttpl.FuncMap(baseFuncs())
)

const (
	VerifyEmail   = "verify_email"
	ResetPassword = "reset_password"
	Notification  = "notification"
)

// Names lists every template set shipped in FS.
func Names() []string {
	return []string{VerifyEmail, ResetPassword, Notification}
}

type set struct {
	subject *texttpl.Template
	text    *texttpl.Template
	html    *htmpl.Template
}

var (
	loadOnce sync.Once
	sets     map[string]set
	loadErr  error
)

// load parses every shipped template set once.
func load() (map[string]set, error) {
	loadOnce.Do(func() {
		sets = make(map[string]set, len(Names()))
		for _, name := range Names() {
			var s set
			if s.subject, loadErr = texttpl.New(name).Funcs(textFuncMap).ParseFS(FS, name+".subject.tmpl"); loadErr != nil {
				break
			}
			if s.text, loadErr = texttpl.New(name).Funcs(textFuncMap).ParseFS(FS, name+".text.tmpl"); loadErr != nil {
				break
			}
			if s.html, loadErr = htmpl.New(name).Funcs(htmlFuncMap).ParseFS(FS, name+".html.tmpl"); loadErr != nil {
				break
			}
			sets[name] = s
		}
		if loadErr != nil {
			loadErr = fmt.Errorf("parse email templates: %w", loadErr)
		}
	})
	return sets, loadErr
}

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

func exec(t executor, file string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, file, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", file, err)
	}
	return buf.String(), nil
}

// Render produces the subject, text and html bodies of the named set
// (<name>.subject.tmpl, <name>.text.tmpl, <name>.html.tmpl).
func Render(name string, data any) (subject string, text string, html string, err error) {
	all, err := load()
	if err != nil {
		return "", "", "", err
	}
	s, ok := all[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	if subject, err = exec(s.subject, name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = exec(s.text, name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = exec(s.html, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
