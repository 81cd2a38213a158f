// Package loginform finds login forms in HTML with XPath and fills them in.
// Collaborator is the default sessman.FormCollaborator.
package loginform

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/warpdl/warpsess/pkg/sessman"
	"golang.org/x/net/html"
)

// passwordForm matches any form holding a password input. It is tried when
// the caller's selector finds nothing.
const passwordForm = `//form[.//input[@type="password"]]`

var userFieldPattern = regexp.MustCompile(`(?i)user|login|e-?mail|account`)

// Collaborator implements sessman.FormCollaborator.
type Collaborator struct {
	// UserField and PasswordField name the inputs to fill. When empty they
	// are guessed from the form.
	UserField     string
	PasswordField string
}

func New() *Collaborator { return &Collaborator{} }

// ExtractFormData parses page and describes the form picked by selector,
// falling back to the first form with a password input.
func (c *Collaborator) ExtractFormData(pageURL, page, selector string) (*sessman.FormDescriptor, error) {
	doc, err := htmlquery.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("loginform: parse %s: %w", pageURL, err)
	}
	form, err := findForm(doc, selector)
	if err != nil {
		return nil, err
	}
	action, err := resolve(pageURL, htmlquery.SelectAttr(form, "action"))
	if err != nil {
		return nil, err
	}
	method := strings.ToUpper(htmlquery.SelectAttr(form, "method"))
	if method == "" {
		method = http.MethodGet
	}
	return &sessman.FormDescriptor{
		PageURL: pageURL,
		Action:  action,
		Method:  method,
		Fields:  fields(form),
	}, nil
}

// PrepareLogin fills the user and password inputs of form.
func (c *Collaborator) PrepareLogin(form *sessman.FormDescriptor, username, password string) (*sessman.LoginForm, error) {
	if form == nil {
		return nil, fmt.Errorf("%w: no form", sessman.ErrFormNotFound)
	}
	pass := c.PasswordField
	if pass == "" {
		f, ok := form.FieldOfType("password")
		if !ok {
			return nil, fmt.Errorf("%w: form at %s has no password input", sessman.ErrFormNotFound, form.PageURL)
		}
		pass = f.Name
	}
	user := c.UserField
	if user == "" {
		user = guessUserField(form, pass)
	}

	data := form.Values()
	if user != "" {
		data.Set(user, username)
	}
	data.Set(pass, password)
	return &sessman.LoginForm{PostURL: form.Action, LoginData: data}, nil
}

func guessUserField(form *sessman.FormDescriptor, pass string) string {
	if f, ok := form.FieldOfType("email"); ok {
		return f.Name
	}
	for _, f := range form.Fields {
		if f.Name == pass {
			continue
		}
		switch f.Type {
		case "text", "email", "":
			if userFieldPattern.MatchString(f.Name) {
				return f.Name
			}
		}
	}
	return ""
}

// findForm tries selector first, then any form with a password input. A
// selector that does not compile is treated like one that matches nothing.
func findForm(doc *html.Node, selector string) (*html.Node, error) {
	var selErr error
	if selector != "" {
		n, err := htmlquery.Query(doc, selector)
		if err == nil && n != nil {
			return n, nil
		}
		selErr = err
	}
	if n := htmlquery.FindOne(doc, passwordForm); n != nil {
		return n, nil
	}
	if selErr != nil {
		return nil, fmt.Errorf("%w: bad selector %q: %v", sessman.ErrFormNotFound, selector, selErr)
	}
	return nil, fmt.Errorf("%w: nothing matches %q", sessman.ErrFormNotFound, selector)
}

func resolve(pageURL, action string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("loginform: page url: %w", err)
	}
	ref, err := url.Parse(strings.TrimSpace(action))
	if err != nil {
		return "", fmt.Errorf("loginform: form action %q: %w", action, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// fields lists the successful controls of form in document order.
func fields(form *html.Node) []sessman.FormField {
	var out []sessman.FormField
	for _, n := range htmlquery.Find(form, ".//input | .//textarea | .//select") {
		name := htmlquery.SelectAttr(n, "name")
		if name == "" || hasAttr(n, "disabled") {
			continue
		}
		switch strings.ToLower(n.Data) {
		case "input":
			typ := strings.ToLower(htmlquery.SelectAttr(n, "type"))
			if typ == "" {
				typ = "text"
			}
			switch typ {
			case "submit", "reset", "button", "image":
				continue
			case "checkbox", "radio":
				if !hasAttr(n, "checked") {
					continue
				}
				v := "on"
				if hasAttr(n, "value") {
					v = htmlquery.SelectAttr(n, "value")
				}
				out = append(out, sessman.FormField{Name: name, Value: v, Type: typ})
				continue
			}
			out = append(out, sessman.FormField{Name: name, Value: htmlquery.SelectAttr(n, "value"), Type: typ})
		case "textarea":
			out = append(out, sessman.FormField{Name: name, Value: htmlquery.InnerText(n), Type: "textarea"})
		case "select":
			if v, ok := selected(n); ok {
				out = append(out, sessman.FormField{Name: name, Value: v, Type: "select"})
			}
		}
	}
	return out
}

// selected returns the chosen option of a select: the one marked selected,
// else the first.
func selected(sel *html.Node) (string, bool) {
	opts := htmlquery.Find(sel, ".//option")
	if len(opts) == 0 {
		return "", false
	}
	pick := opts[0]
	for _, o := range opts {
		if hasAttr(o, "selected") {
			pick = o
			break
		}
	}
	if hasAttr(pick, "value") {
		return htmlquery.SelectAttr(pick, "value"), true
	}
	return strings.TrimSpace(htmlquery.InnerText(pick)), true
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return true
		}
	}
	return false
}
