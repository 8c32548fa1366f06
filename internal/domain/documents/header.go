package documents

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"inventra/internal/core/apperror"
	corenumerator "inventra/internal/core/numerator"
)

// Header holds the document-level fields of a form.
type Header struct {
	Date                string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CenterID            string `json:"centerId" validate:"required,max=64"`
	CenterName          string `json:"centerName,omitempty" validate:"max=200"`
	DestinationCenterID string `json:"destinationCenterId,omitempty" validate:"omitempty,max=64,nefield=CenterID"`
	CustomerID          string `json:"customerId,omitempty" validate:"max=64"`
	CustomerName        string `json:"customerName,omitempty" validate:"max=200"`
	CustomerEmail       string `json:"customerEmail,omitempty" validate:"omitempty,email"`
	Notes               string `json:"notes,omitempty" validate:"max=1000"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks field formats and the per-type requirements.
func (h Header) Validate(t corenumerator.DocumentType) error {
	if err := validate.Struct(h); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperror.NewValidation(fieldMessage(fe)).
				WithDetail("field", fe.Field()).
				WithDetail("rule", fe.Tag())
		}
		return apperror.NewValidation("invalid header").WithCause(err)
	}

	switch t {
	case corenumerator.Invoice, corenumerator.SalesOrder, corenumerator.SalesReturn:
		if strings.TrimSpace(h.CustomerID) == "" && strings.TrimSpace(h.CustomerName) == "" {
			return apperror.NewValidation("customer is required").
				WithDetail("field", "customerId")
		}
	case corenumerator.StockTransfer:
		if strings.TrimSpace(h.DestinationCenterID) == "" {
			return apperror.NewValidation("destination center is required").
				WithDetail("field", "destinationCenterId")
		}
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "datetime":
		return fe.Field() + " must be a date (YYYY-MM-DD)"
	case "nefield":
		return "destination center must differ from the source center"
	case "max":
		return fe.Field() + " is too long"
	}
	return fe.Field() + " is invalid"
}
