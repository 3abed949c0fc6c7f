package calendar

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var itemValidator = newItemValidator()

func newItemValidator() *validator.Validate {
	v := validator.New()
	if err := registerValidations(v); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// RegisterValidators adds the calendar tags to gin's binding engine
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return registerValidations(v)
}

func registerValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("migration_status", func(fl validator.FieldLevel) bool {
		return MigrationStatus(fl.Field().String()).IsValid()
	}); err != nil {
		return fmt.Errorf("register migration_status: %w", err)
	}
	if err := v.RegisterValidation("calendar_provider", func(fl validator.FieldLevel) bool {
		return CalendarProvider(fl.Field().String()).IsValid()
	}); err != nil {
		return fmt.Errorf("register calendar_provider: %w", err)
	}
	return nil
}

// describeItemError renders a validation failure as "field rule, field rule"
func describeItemError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fe.Field()+" "+rule)
	}
	return strings.Join(parts, ", ")
}
