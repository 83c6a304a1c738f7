package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/dop251/goja"
	"github.com/rs/zerolog"

	"github.com/vrsandeep/docscan/internal/logger"
	"github.com/vrsandeep/docscan/internal/models"
	"github.com/vrsandeep/docscan/internal/util"
)

const scriptTimeout = 10 * time.Second

// ScriptAPIVersion is the version of the docscan object exposed to
// scripts. A script may pin a range with exports.apiVersion, e.g. "^1.0".
const ScriptAPIVersion = "1.0.0"

var scriptAPI = semver.MustParse(ScriptAPIVersion)

// ScriptError represents an error that occurred in an extractor script.
type ScriptError struct {
	Script    string
	Message   string
	Cause     error
	IsTimeout bool
	IsPanic   bool
}

func (e *ScriptError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("script %s: %s: %v", e.Script, e.Message, e.Cause)
	}
	return fmt.Sprintf("script %s: %s", e.Script, e.Message)
}

func (e *ScriptError) Unwrap() error {
	return e.Cause
}

// Script is a JavaScript extractor override. A script declares the category
// it serves and an extract(text) function returning an object of fields:
//
//	exports.category = "Weighbridge";
//	exports.extract = function (text) {
//	    return { "Material": docscan.find("Material\\s*:\\s*(.+)", text) };
//	};
type Script struct {
	name     string
	category models.Category
	mu       sync.Mutex // goja runtimes are not goroutine safe
	vm       *goja.Runtime
	extract  goja.Callable
	log      zerolog.Logger
}

// LoadScript compiles the script at path and validates its exports.
func LoadScript(path string) (*Script, error) {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	s := &Script{name: name, vm: goja.New(), log: logger.WithComponent("script").With().Str("script", name).Logger()}
	s.injectAPI()

	exports := s.vm.NewObject()
	if err := s.vm.Set("exports", exports); err != nil {
		return nil, err
	}
	// CommonJS style wrapper so top-level declarations stay private.
	module := fmt.Sprintf("(function(exports) {\n%s\n})(exports);", string(data))
	if _, err := s.vm.RunScript(name, module); err != nil {
		return nil, &ScriptError{Script: name, Message: "failed to execute script", Cause: err}
	}

	catVal := exports.Get("category")
	if catVal == nil || goja.IsUndefined(catVal) || goja.IsNull(catVal) {
		return nil, &ScriptError{Script: name, Message: "missing required export: category"}
	}
	category, ok := models.ParseCategory(catVal.String())
	if !ok {
		return nil, &ScriptError{Script: name, Message: fmt.Sprintf("unknown category %q", catVal.String())}
	}
	if err := checkAPIVersion(exports.Get("apiVersion")); err != nil {
		return nil, &ScriptError{Script: name, Message: "API version incompatibility", Cause: err}
	}
	fn, ok := goja.AssertFunction(exports.Get("extract"))
	if !ok {
		return nil, &ScriptError{Script: name, Message: "missing required export: extract"}
	}
	s.category = category
	s.extract = fn
	return s, nil
}

func checkAPIVersion(v goja.Value) error {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	c, err := semver.NewConstraint(v.String())
	if err != nil {
		return fmt.Errorf("invalid apiVersion %q: %w", v.String(), err)
	}
	if !c.Check(scriptAPI) {
		return fmt.Errorf("script requires API %s, but docscan provides %s", v.String(), ScriptAPIVersion)
	}
	return nil
}

// injectAPI exposes the docscan helper object to scripts.
func (s *Script) injectAPI() {
	api := s.vm.NewObject()
	_ = api.Set("log", func(msg string) {
		s.log.Debug().Msg(msg)
	})
	_ = api.Set("find", func(pattern, text string) string {
		re, err := regexp.Compile(pattern)
		if err != nil {
			panic(s.vm.NewTypeError("invalid pattern: %v", err))
		}
		return find(re, text)
	})
	_ = api.Set("notFound", models.NotFound)
	_ = s.vm.Set("docscan", api)
}

func (s *Script) Name() string              { return s.name }
func (s *Script) Category() models.Category { return s.category }

// Extract runs the script's extract function. Long running scripts are
// interrupted when ctx ends or after scriptTimeout.
func (s *Script) Extract(ctx context.Context, in Input) (fields models.Fields, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, scriptTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, func() {
		s.vm.Interrupt(ctx.Err())
	})
	defer func() {
		stop()
		s.vm.ClearInterrupt()
	}()

	defer func() {
		if r := recover(); r != nil {
			err = &ScriptError{Script: s.name, Message: fmt.Sprintf("panic: %v", r), IsPanic: true}
		}
	}()

	val, callErr := s.extract(goja.Undefined(), s.vm.ToValue(in.Text))
	if callErr != nil {
		var interrupted *goja.InterruptedError
		if errors.As(callErr, &interrupted) {
			return nil, &ScriptError{Script: s.name, Message: "timeout", Cause: ctx.Err(), IsTimeout: true}
		}
		return nil, &ScriptError{Script: s.name, Message: "extract failed", Cause: callErr}
	}
	if goja.IsUndefined(val) || goja.IsNull(val) {
		return models.Fields{}, nil
	}
	raw, ok := val.Export().(map[string]any)
	if !ok {
		return nil, &ScriptError{Script: s.name, Message: "extract must return an object"}
	}
	fields = make(models.Fields, len(raw))
	for k, v := range raw {
		fields[k] = cleanValue(v)
	}
	return fields, nil
}

// LoadScripts loads every .js file in dir in natural order. A missing or
// empty dir yields no scripts.
func LoadScripts(dir string) ([]*Script, error) {
	if dir == "" {
		return nil, nil
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.js"))
	if err != nil {
		return nil, err
	}
	util.SortNatural(paths)
	scripts := make([]*Script, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScript(p)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}

// RegisterScripts binds each script over whatever served its category.
func RegisterScripts(r *Registry, scripts []*Script) {
	for _, s := range scripts {
		r.Register(s.category, SourceScript+":"+s.name, s.Extract)
	}
}
