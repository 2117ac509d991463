// Package validation runs gin's binding validator over request DTOs and turns
// its field errors into apperr field lists with caller-chosen wording.
package validation

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"library-backend/internal/platform/apperr"
)

// MessageFunc words one failed rule. fe.Field() is the JSON name.
type MessageFunc func(fe validator.FieldError) string

var setup sync.Once

// Engine is gin's shared validator, reporting fields by their JSON names.
func Engine() *validator.Validate {
	v := binding.Validator.Engine().(*validator.Validate)
	setup.Do(func() {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return v
}

// RegisterRule adds a custom binding tag. Call it from package init.
func RegisterRule(tag string, fn validator.Func) {
	if err := Engine().RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// RegisterType makes the validator see types through fn.
func RegisterType(fn validator.CustomTypeFunc, types ...any) {
	Engine().RegisterCustomTypeFunc(fn, types...)
}

// Check validates obj and returns nil or a ValidationError listing every
// failed field followed by extra.
func Check(obj any, msg MessageFunc, extra ...apperr.FieldError) error {
	fields, err := Fields(Engine().Struct(obj), msg)
	if err != nil {
		return err
	}
	fields = append(fields, extra...)
	if len(fields) == 0 {
		return nil
	}
	return apperr.ErrValidation(fields)
}

// Fields converts validator output. Errors that are not field errors come
// back unchanged.
func Fields(err error, msg MessageFunc) ([]apperr.FieldError, error) {
	if err == nil {
		return nil, nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return nil, err
	}
	out := make([]apperr.FieldError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, apperr.FieldError{Field: fe.Field(), Message: msg(fe)})
	}
	return out, nil
}

// BindJSON decodes the body into obj. An empty body and failed binding rules
// are left for the service to report together with its own checks; only a
// malformed body fails here.
func BindJSON(c *gin.Context, obj any) error {
	Engine()
	err := c.ShouldBindJSON(obj)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		return nil
	}
	return apperr.ErrInvalid("invalid json")
}
