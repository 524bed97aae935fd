package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tp-bda/dashboard-ventas/internal/core"
	"github.com/ttacon/libphonenumber"
)

// phoneRegion is the default region for numbers written without a country code
const phoneRegion = "AR"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidatePhoneNumber(fl.Field().String(), phoneRegion) == nil
	})
	return v
}

// ValidatePhoneNumber checks that phoneNumber is a dialable number in region
func ValidatePhoneNumber(phoneNumber, region string) error {
	p, err := libphonenumber.Parse(phoneNumber, region)
	if err != nil {
		return err
	}
	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}
	return nil
}

// normalizePhone stores numbers in E.164 so equal numbers compare equal
func normalizePhone(phoneNumber string) (string, error) {
	p, err := libphonenumber.Parse(phoneNumber, phoneRegion)
	if err != nil {
		return "", err
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}

// validateStruct runs the struct tags of input and reports the first failure as a validation error
func validateStruct(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return core.NewValidationError("", "datos inválidos")
	}

	fe := validationErrors[0]
	return core.NewValidationError(fe.Field(), validationMessage(fe))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s es requerido", fe.Field())
	case "email":
		return "Formato de mail inválido"
	case "phone":
		return "El teléfono no es un número válido"
	case "min":
		return fmt.Sprintf("%s debe tener al menos %s caracteres", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s debe tener como máximo %s caracteres", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s no es válido", fe.Field())
	}
}
