package options

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/tilebar/internal/theme"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

// Validator returns the shared validator instance with the tilebar-specific
// tags registered: color_theme and theme_flavor.
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "mapstructure"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})

		_ = v.RegisterValidation("color_theme", func(fl validator.FieldLevel) bool {
			return theme.Valid(fl.Field().String())
		})

		_ = v.RegisterValidation("theme_flavor", func(fl validator.FieldLevel) bool {
			return theme.ValidFlavor(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}
