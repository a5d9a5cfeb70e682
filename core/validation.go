package core

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"koanf", "json"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})
	return v
}

// paymentRequestMessages keeps the host-facing wording stable; the order of
// the struct fields decides which message wins when both are missing.
var paymentRequestMessages = map[string]string{
	"merchant_id": "MerchantId is required",
	"amount":      "Amount is required",
}

type requestFields struct {
	MerchantID string `json:"merchant_id" validate:"required"`
	Amount     string `json:"amount" validate:"required"`
}

// validateRequest checks the resolved merchant id and amount. Only exactly
// empty values are rejected; amounts are never parsed.
func validateRequest(merchantID, amount string) error {
	err := structValidator.Struct(requestFields{MerchantID: merchantID, Amount: amount})
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return NewInvalidRequestError("request", err.Error())
	}
	first := fieldErrs[0]
	message, ok := paymentRequestMessages[first.Field()]
	if !ok {
		message = first.Field() + " is invalid"
	}
	return NewInvalidRequestError(first.Field(), message)
}
