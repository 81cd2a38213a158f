package sessman

import (
	"fmt"
	"net/url"
	"strings"
)

// FormField is a single named control of an HTML form.
type FormField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	// Type is the lower-cased input type, "textarea" or "select" for those
	// elements.
	Type string `json:"type"`
}

// FormDescriptor is a login form as found on a page.
type FormDescriptor struct {
	PageURL string      `json:"page_url"`
	Action  string      `json:"action"`
	Method  string      `json:"method"`
	Fields  []FormField `json:"fields"`
}

// Values returns the form's default submission.
func (f *FormDescriptor) Values() url.Values {
	v := url.Values{}
	for _, x := range f.Fields {
		v.Add(x.Name, x.Value)
	}
	return v
}

// FieldOfType returns the first field with the given type.
func (f *FormDescriptor) FieldOfType(typ string) (FormField, bool) {
	for _, x := range f.Fields {
		if x.Type == typ {
			return x, true
		}
	}
	return FormField{}, false
}

// LoginForm is a ready to post login submission.
type LoginForm struct {
	PostURL   string     `json:"post_url"`
	LoginData url.Values `json:"login_data"`
}

// FormCollaborator finds a login form on a page and fills it in.
type FormCollaborator interface {
	ExtractFormData(pageURL, html, selector string) (*FormDescriptor, error)
	PrepareLogin(form *FormDescriptor, username, password string) (*LoginForm, error)
}

// FormSelector is the XPath selecting the form that posts back to loginURL.
func FormSelector(loginURL string) string {
	return fmt.Sprintf(`//form[@action=%s]`, xpathLiteral(loginURL))
}

// xpathLiteral quotes s as an XPath 1.0 string. XPath has no escapes, so a
// value holding both quote kinds is spliced together with concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	return "concat(" + strings.Join(parts, `, '"', `) + ")"
}
