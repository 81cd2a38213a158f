package loginscript

import (
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	requirePkg "github.com/dop251/goja_nodejs/require"
	"github.com/warpdl/warpsess/pkg/logger"
	"github.com/warpdl/warpsess/pkg/sessman"
)

// consolePrinter sends console.* output of a script to the logger.
type consolePrinter struct {
	l      logger.Logger
	prefix string
}

func (p *consolePrinter) Log(msg string)   { p.l.Info("%s %s", p.prefix, msg) }
func (p *consolePrinter) Warn(msg string)  { p.l.Warning("%s %s", p.prefix, msg) }
func (p *consolePrinter) Error(msg string) { p.l.Error("%s %s", p.prefix, msg) }

// newRuntime builds a js runtime with console, require rooted at wd and the
// scraping helpers.
func newRuntime(l logger.Logger, wd, name string) (*goja.Runtime, error) {
	vm := goja.New()

	registry := new(requirePkg.Registry)
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(&consolePrinter{l: l, prefix: name + ":"}))
	reqM := registry.Enable(vm)
	console.Enable(vm)

	err := vm.Set("require", func(call goja.FunctionCall) goja.Value {
		mod := call.Argument(0).String()
		if strings.HasPrefix(mod, "./") || strings.HasPrefix(mod, "../") {
			mod = filepath.Join(wd, mod)
		}
		v, err := reqM.Require(mod)
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return v
	})
	if err != nil {
		return nil, err
	}
	err = vm.Set("loadValue", func(text, begin string) goja.Value {
		v, ok := sessman.LoadValue(text, begin)
		if !ok {
			return goja.Null()
		}
		return vm.ToValue(v)
	})
	if err != nil {
		return nil, err
	}
	err = vm.Set("loadJSONObject", func(text, begin string) goja.Value {
		v, ok := sessman.LoadJSONObject(text, begin)
		if !ok {
			return goja.Null()
		}
		return vm.ToValue(v)
	})
	if err != nil {
		return nil, err
	}
	return vm, nil
}
