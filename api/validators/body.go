package validators

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/teklifbul/mukayese-backend/internal/comparison"
	pkgerrors "github.com/teklifbul/mukayese-backend/pkg/errors"
	"github.com/teklifbul/mukayese-backend/pkg/visibility"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "numeric":
		return "must be a decimal number"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	}
	return "is invalid"
}

// MembershipBody carries the optional viewer tier and caps of a posted
// comparison.
type MembershipBody struct {
	Tier               string `json:"tier" validate:"omitempty,max=32"`
	MaxVendorsPerRow   *int   `json:"maxVendorsPerRow" validate:"omitempty,gte=0"`
	MaxVendorsPerSheet *int   `json:"maxVendorsPerSheet" validate:"omitempty,gte=1,lte=5"`
}

func (m MembershipBody) Request() visibility.MembershipRequest {
	return visibility.MembershipRequest{
		Tier:               m.Tier,
		MaxVendorsPerRow:   m.MaxVendorsPerRow,
		MaxVendorsPerSheet: m.MaxVendorsPerSheet,
	}
}

// CompareBody is an inline comparison payload. Products may be omitted, in
// which case the offers define the catalog.
type CompareBody struct {
	Products   []comparison.Product     `json:"products" validate:"max=2000"`
	Offers     []comparison.VendorOffer `json:"offers" validate:"required,min=1,max=20000"`
	Membership MembershipBody           `json:"membership"`
}

// RatesBody replaces the shared FX table. Keys are FROM_TO pairs.
type RatesBody struct {
	Rates map[string]string `json:"rates" validate:"required,min=1,dive,keys,required,max=7,endkeys,required,numeric"`
}
