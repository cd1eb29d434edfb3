package entity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// ValidatorKind 校验器类型
type ValidatorKind string

const (
	ValidatorKindRequired    ValidatorKind = "required"
	ValidatorKindPositive    ValidatorKind = "positive"
	ValidatorKindNonNegative ValidatorKind = "nonNegative"
	ValidatorKindEnum        ValidatorKind = "enum"
	ValidatorKindPattern     ValidatorKind = "pattern"
	ValidatorKindDate        ValidatorKind = "date"
)

// Validator 字段校验器
type Validator interface {
	Kind() ValidatorKind
	// Validate 校验单个字段值，失败时返回用户可读的错误
	Validate(value any) error
}

// RequiredValidator 必填校验
type RequiredValidator struct{}

func Required() *RequiredValidator { return &RequiredValidator{} }

func (v *RequiredValidator) Kind() ValidatorKind { return ValidatorKindRequired }

func (v *RequiredValidator) Validate(value any) error {
	if IsEmpty(value) {
		return errors.New("is required")
	}
	return nil
}

// PositiveValidator 正数校验
type PositiveValidator struct{}

func Positive() *PositiveValidator { return &PositiveValidator{} }

func (v *PositiveValidator) Kind() ValidatorKind { return ValidatorKindPositive }

func (v *PositiveValidator) Validate(value any) error {
	n, ok := AsNumber(value)
	if !ok {
		return errors.New("must be a number")
	}
	if n <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

// NonNegativeValidator 非负数校验
type NonNegativeValidator struct{}

func NonNegative() *NonNegativeValidator { return &NonNegativeValidator{} }

func (v *NonNegativeValidator) Kind() ValidatorKind { return ValidatorKindNonNegative }

func (v *NonNegativeValidator) Validate(value any) error {
	n, ok := AsNumber(value)
	if !ok {
		return errors.New("must be a number")
	}
	if n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

// EnumValidator 枚举值校验
type EnumValidator struct {
	Values []string
}

func Enum(values ...string) *EnumValidator { return &EnumValidator{Values: values} }

func (v *EnumValidator) Kind() ValidatorKind { return ValidatorKindEnum }

func (v *EnumValidator) Validate(value any) error {
	s := AsString(value)
	for _, candidate := range v.Values {
		if s == candidate {
			return nil
		}
	}
	return errors.Errorf("must be one of [%s]", strings.Join(v.Values, ", "))
}

// PatternValidator 正则校验，错误信息使用 Description
type PatternValidator struct {
	Expr        *regexp.Regexp
	Description string
}

func Pattern(expr string, description string) *PatternValidator {
	return &PatternValidator{
		Expr:        regexp.MustCompile(expr),
		Description: description,
	}
}

func (v *PatternValidator) Kind() ValidatorKind { return ValidatorKindPattern }

func (v *PatternValidator) Validate(value any) error {
	if !v.Expr.MatchString(AsString(value)) {
		return fmt.Errorf("%s", v.Description)
	}
	return nil
}

// DateValidator 日期校验，接受宽松日期解析能识别的任何值
type DateValidator struct{}

func Date() *DateValidator { return &DateValidator{} }

func (v *DateValidator) Kind() ValidatorKind { return ValidatorKindDate }

func (v *DateValidator) Validate(value any) error {
	if _, ok := ParseDate(value); !ok {
		return errors.New("is not a valid date")
	}
	return nil
}
