// Package validation собирает валидатор запросов API.
package validation

import (
	"time"

	"github.com/go-playground/validator"
)

// New возвращает валидатор с дополнительными правилами:
// datetime=<layout> проверяет, что строка разбирается time.Parse по layout.
func New() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("datetime", isDatetime); err != nil {
		panic(err)
	}
	return v
}

func isDatetime(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse(fl.Param(), value)
	return err == nil
}
