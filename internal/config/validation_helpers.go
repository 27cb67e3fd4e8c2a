package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	tberrors "github.com/alexisbeaulieu97/tilebar/pkg/errors"
)

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		ve := ves[0]
		field := dottedFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return tberrors.NewValidationError(field, msg, err)
	}

	return tberrors.NewValidationError("config", err.Error(), err)
}

// dottedFieldName turns "Config.notion.database_id" into
// "notion.database_id".
func dottedFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}
