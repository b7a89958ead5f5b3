package models

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
)

var validate = validator.New()

// Validate checks the required fields of a decoded entity, or of every
// element when v is a slice. A failure is a METADATA error naming the field.
func Validate(v interface{}) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}

	if rv.Kind() == reflect.Slice {
		for i := 0; i < rv.Len(); i++ {
			if err := validateOne(rv.Index(i)); err != nil {
				return err.WithContext("index", i)
			}
		}
		return nil
	}

	if err := validateOne(rv); err != nil {
		return err
	}
	return nil
}

func validateOne(rv reflect.Value) *domainErrors.AppError {
	for rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	if err := validate.Struct(rv.Interface()); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return domainErrors.ErrInvalidMetadata.
				WithError(fmt.Errorf("%s failed %q", fe.Namespace(), fe.Tag())).
				WithContext("field", fe.Namespace())
		}
		return domainErrors.ErrInvalidMetadata.WithError(err)
	}
	return nil
}
