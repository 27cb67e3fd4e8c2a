package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	tberrors "github.com/alexisbeaulieu97/tilebar/pkg/errors"
)

// Decode converts a free-form options map into the typed options for kind.
// Keys that fail to decode or validate keep their default value and unknown
// keys are ignored; the returned slice names every key that was reset. An
// error is only returned for an unknown kind.
func Decode(kind Kind, raw map[string]any) (Options, []string, error) {
	opts := Defaults(kind)
	if opts == nil {
		return nil, nil, tberrors.NewValidationError("type", fmt.Sprintf("unknown widget kind %q", kind), nil)
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var reset []string
	for _, key := range keys {
		data, err := json.Marshal(map[string]any{key: raw[key]})
		if err != nil {
			reset = append(reset, key)
			continue
		}
		if err := json.Unmarshal(data, opts); err != nil {
			reset = append(reset, key)
		}
	}

	reset = append(reset, resetInvalid(opts, Defaults(kind))...)
	return opts, reset, nil
}

// MustDecode is Decode for callers that have already checked kind; unknown
// kinds yield nil.
func MustDecode(kind Kind, raw map[string]any) Options {
	opts, _, err := Decode(kind, raw)
	if err != nil {
		return nil
	}
	return opts
}

func resetInvalid(opts, defaults Options) []string {
	err := Validator().Struct(opts)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	dst := reflect.ValueOf(opts).Elem()
	src := reflect.ValueOf(defaults).Elem()

	var reset []string
	for _, fe := range verrs {
		parts := strings.Split(fe.StructNamespace(), ".")
		if len(parts) < 2 {
			continue
		}
		if copyField(dst, src, parts[1:]) {
			reset = append(reset, fe.Field())
		}
	}
	return reset
}

func copyField(dst, src reflect.Value, path []string) bool {
	for _, name := range path {
		if dst.Kind() != reflect.Struct {
			return false
		}
		dst = dst.FieldByName(name)
		src = src.FieldByName(name)
		if !dst.IsValid() || !src.IsValid() {
			return false
		}
	}
	if !dst.CanSet() {
		return false
	}
	dst.Set(src)
	return true
}
