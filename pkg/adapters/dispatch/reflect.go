package dispatch

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/mbt/pkg/domain"
)

var (
	errorType   = reflect.TypeFor[error]()
	contextType = reflect.TypeFor[context.Context]()
	stringType  = reflect.TypeFor[string]()
)

// Reflect is an executor that calls exported methods of a target by name.
//
// A label resolves to the method with the same name, or with its first letter upper-cased
// ("e_Login" finds E_Login). Supported signatures take an optional leading context.Context,
// then zero or one string, and return nothing or an error.
type Reflect struct {
	target  reflect.Value
	methods map[string]reflect.Value
}

// NewReflect indexes the methods of target. Methods with unsupported signatures are ignored.
func NewReflect(target any) *Reflect {
	r := &Reflect{
		target:  reflect.ValueOf(target),
		methods: make(map[string]reflect.Value),
	}
	for i := range r.target.NumMethod() {
		if m := r.target.Method(i); supported(m.Type()) {
			r.methods[r.target.Type().Method(i).Name] = m
		}
	}
	return r
}

func supported(ft reflect.Type) bool {
	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) != errorType {
			return false
		}
	default:
		return false
	}
	if ft.IsVariadic() {
		return false
	}
	i := 0
	if i < ft.NumIn() && ft.In(i) == contextType {
		i++
	}
	if i < ft.NumIn() && ft.In(i) == stringType {
		i++
	}
	return i == ft.NumIn()
}

// Has reports whether name resolves to a method.
func (r *Reflect) Has(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

func (r *Reflect) lookup(name string) (reflect.Value, bool) {
	if m, ok := r.methods[name]; ok {
		return m, true
	}
	first, size := utf8.DecodeRuneInString(name)
	if size == 0 {
		return reflect.Value{}, false
	}
	m, ok := r.methods[string(unicode.ToUpper(first))+name[size:]]
	return m, ok
}

// Invoke calls the method resolved from name.
func (r *Reflect) Invoke(ctx context.Context, name string, args ...string) error {
	m, ok := r.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCommandNotFound, name)
	}
	mt := m.Type()

	in := make([]reflect.Value, 0, mt.NumIn())
	wantArgs := mt.NumIn()
	if wantArgs > 0 && mt.In(0) == contextType {
		in = append(in, reflect.ValueOf(ctx))
		wantArgs--
	}
	switch {
	case wantArgs == 1 && len(args) == 1:
		in = append(in, reflect.ValueOf(args[0]))
	case wantArgs == 1 && len(args) == 0:
		return fmt.Errorf("%s: expects a parameter", name)
	case wantArgs == 0 && len(args) > 0:
		return fmt.Errorf("%s: takes no parameter, got %q", name, strings.Join(args, " "))
	case len(args) > 1:
		return fmt.Errorf("%s: too many parameters", name)
	}

	out := m.Call(in)
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}
