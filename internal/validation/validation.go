// Package validation adapts go-playground/validator to echo and to the
// apperr taxonomy. Every failure becomes an apperr.KindValidation error
// naming the JSON field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"SchoolManager/internal/apperr"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	mobilePattern       = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	academicYearPattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)
	departmentPattern   = regexp.MustCompile(`^[A-Za-z][A-Za-z &.\-]*$`)
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return IsMobile(fl.Field().String())
	})
	_ = v.RegisterValidation("academicyear", func(fl validator.FieldLevel) bool {
		return IsAcademicYear(fl.Field().String())
	})
	_ = v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return IsDepartment(fl.Field().String())
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	return &Validator{v: v}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return apperr.Validation("invalid request")
	}
	fe := ves[0]
	return apperr.ValidationField(fe.Field(), "%s", message(fe))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "mobile":
		return fmt.Sprintf("%s must be a valid mobile number", field)
	case "academicyear":
		return fmt.Sprintf("%s must be in YYYY-YYYY format with consecutive years", field)
	case "department":
		return fmt.Sprintf("%s may only contain letters, spaces, '&', '.' and '-'", field)
	case "objectid":
		return fmt.Sprintf("%s must be a valid id", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func IsMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// IsAcademicYear accepts "YYYY-YYYY" where the second year follows the first.
func IsAcademicYear(s string) bool {
	m := academicYearPattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	from, _ := strconv.Atoi(m[1])
	to, _ := strconv.Atoi(m[2])
	return to == from+1
}

func IsDepartment(s string) bool {
	return departmentPattern.MatchString(s)
}
