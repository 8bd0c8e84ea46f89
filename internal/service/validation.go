package service

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/talkincode/storefront/internal/apperr"
	"github.com/talkincode/storefront/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("strongpassword", strongPassword)
	_ = v.RegisterValidation("category", validCategory)
	return v
}

// strongPassword requires upper and lower case letters, a digit and a symbol
func strongPassword(fl validator.FieldLevel) bool {
	var upper, lower, digit, symbol bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

func validCategory(fl validator.FieldLevel) bool {
	return domain.Category(fl.Field().String()).Valid()
}

// check runs the struct rules and returns InvalidInput with every failing field
func check(payload interface{}) error {
	fields := blankSupplied(payload)
	if err := validate.Struct(payload); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperr.Internal("", err)
		}
		for _, fe := range verrs {
			key := fieldKey(fe)
			if _, done := fields[key]; done {
				continue
			}
			fields.Add(key, fieldMessage(fe))
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return apperr.InvalidInput(fields)
}

// blankSupplied flags optional fields sent with a zero value, which omitempty
// rules would otherwise let through. Optional numbers are all at least 1.
func blankSupplied(payload interface{}) apperr.FieldErrors {
	fields := apperr.FieldErrors{}
	v := reflect.Indirect(reflect.ValueOf(payload))
	if v.Kind() != reflect.Struct {
		return fields
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() != reflect.Ptr || f.IsNil() {
			continue
		}
		name := strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0]
		label := strings.ReplaceAll(name, "_", " ")
		switch e := f.Elem(); e.Kind() {
		case reflect.String:
			if strings.TrimSpace(e.String()) == "" {
				fields.Add(name, fmt.Sprintf("The %s field must have a value.", label))
			}
		case reflect.Int, reflect.Int32, reflect.Int64:
			if e.Int() < 1 {
				fields.Add(name, fmt.Sprintf("The %s field must be at least 1.", label))
			}
		}
	}
	return fields
}

// fieldKey namespace without the root struct, e.g. products[0].quantity
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "min", "gte":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("The %s field must be at least %s characters.", field, fe.Param())
		case reflect.Slice, reflect.Array:
			return fmt.Sprintf("The %s field must have at least %s items.", field, fe.Param())
		default:
			return fmt.Sprintf("The %s field must be at least %s.", field, fe.Param())
		}
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s field must not be greater than %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s.", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("The %s field confirmation does not match.", field)
	case "strongpassword":
		return fmt.Sprintf("The %s field must contain at least one uppercase and one lowercase letter, one number and one symbol.", field)
	case "category":
		return fmt.Sprintf("The selected %s is invalid.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
