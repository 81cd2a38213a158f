// Package loginscript runs login forms through a user supplied JavaScript
// file. The script must define
//
//	function prepareLogin(form, username, password) {
//		return {post_url: form.action, login_data: {...}};
//	}
//
// and may define extractFormData(pageUrl, html, selector) returning
// {action, method, fields: [{name, value, type}]} or null. When it does not,
// extraction is left to a fallback collaborator. console.log and require
// work as in node; loadValue and loadJSONObject expose the markup scraping
// helpers.
package loginscript

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/dop251/goja"
	"github.com/warpdl/warpsess/pkg/logger"
	"github.com/warpdl/warpsess/pkg/sessman"
)

// Script is a sessman.FormCollaborator backed by a js file. A Script is safe
// for concurrent use; calls are serialized on its runtime.
type Script struct {
	path     string
	fallback sessman.FormCollaborator

	mu      sync.Mutex
	vm      *goja.Runtime
	prepare goja.Callable
	extract goja.Callable
}

// Open loads the script at path. fallback handles form extraction when the
// script has no extractFormData and may be nil.
func Open(path string, fallback sessman.FormCollaborator, l logger.Logger) (*Script, error) {
	if l == nil {
		l = logger.NewNopLogger()
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, path)
		}
		return nil, err
	}
	defer f.Close()
	src, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return compile(filepath.Base(path), filepath.Dir(path), string(src), fallback, l)
}

func compile(name, wd, src string, fallback sessman.FormCollaborator, l logger.Logger) (*Script, error) {
	vm, err := newRuntime(l, wd, name)
	if err != nil {
		return nil, err
	}
	if _, err := vm.RunScript(name, src); err != nil {
		return nil, fmt.Errorf("loginscript: %s: %w", name, err)
	}
	s := &Script{path: name, fallback: fallback, vm: vm}
	var ok bool
	if s.prepare, ok = goja.AssertFunction(vm.Get(PREPARE_CALLBACK)); !ok {
		return nil, fmt.Errorf("%w: %s", ErrPrepareNotDefined, name)
	}
	s.extract, _ = goja.AssertFunction(vm.Get(EXTRACT_CALLBACK))
	return s, nil
}

// ExtractFormData calls the script's extractFormData, or the fallback.
func (s *Script) ExtractFormData(pageURL, html, selector string) (*sessman.FormDescriptor, error) {
	if s.extract == nil {
		if s.fallback == nil {
			return nil, fmt.Errorf("%w: %s has no %s", sessman.ErrNoFormCollaborator, s.path, EXTRACT_CALLBACK)
		}
		return s.fallback.ExtractFormData(pageURL, html, selector)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.extract(goja.Undefined(), s.vm.ToValue(pageURL), s.vm.ToValue(html), s.vm.ToValue(selector))
	if err != nil {
		return nil, fmt.Errorf("loginscript: %s: %w", EXTRACT_CALLBACK, err)
	}
	if goja.IsNull(v) || goja.IsUndefined(v) {
		return nil, fmt.Errorf("%w: %s returned nothing", sessman.ErrFormNotFound, EXTRACT_CALLBACK)
	}
	var form sessman.FormDescriptor
	if err := decode(v.Export(), &form); err != nil {
		return nil, err
	}
	if form.PageURL == "" {
		form.PageURL = pageURL
	}
	return &form, nil
}

// PrepareLogin calls the script's prepareLogin.
func (s *Script) PrepareLogin(form *sessman.FormDescriptor, username, password string) (*sessman.LoginForm, error) {
	obj, err := toJS(form)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.prepare(goja.Undefined(), s.vm.ToValue(obj), s.vm.ToValue(username), s.vm.ToValue(password))
	if err != nil {
		return nil, fmt.Errorf("loginscript: %s: %w", PREPARE_CALLBACK, err)
	}
	res, ok := v.Export().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must return an object", ErrInvalidReturnType, PREPARE_CALLBACK)
	}
	postURL, _ := res["post_url"].(string)
	if _, err := url.Parse(postURL); err != nil || postURL == "" {
		return nil, fmt.Errorf("%w: post_url %q", ErrInvalidReturnType, postURL)
	}
	data, err := toValues(res["login_data"])
	if err != nil {
		return nil, err
	}
	return &sessman.LoginForm{PostURL: postURL, LoginData: data}, nil
}

// toJS turns form into plain maps so scripts see json field names.
func toJS(form *sessman.FormDescriptor) (any, error) {
	if form == nil {
		return nil, nil
	}
	b, err := json.Marshal(form)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decode(v any, dst any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReturnType, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReturnType, err)
	}
	return nil
}

// toValues accepts {k: v} and {k: [v1, v2]} objects.
func toValues(v any) (url.Values, error) {
	if v == nil {
		return url.Values{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: login_data must be an object", ErrInvalidReturnType)
	}
	out := make(url.Values, len(m))
	for k, x := range m {
		switch x := x.(type) {
		case []any:
			for _, e := range x {
				out.Add(k, fmt.Sprint(e))
			}
		case nil:
			out.Set(k, "")
		default:
			out.Set(k, fmt.Sprint(x))
		}
	}
	return out, nil
}
