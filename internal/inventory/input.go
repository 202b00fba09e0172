package inventory

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Upper bounds of the quantity and unit_price fields. They must match the
// max= tags below.
const (
	MaxQuantity  = 1_000_000_000
	MaxUnitPrice = 1_000_000_000_000
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

type ItemInput struct {
	Name        string `json:"name" validate:"required,max=150"`
	Code        string `json:"code" validate:"max=50"`
	Unit        string `json:"unit" validate:"max=20"`
	Description string `json:"description" validate:"max=500"`
	Minimum     int    `json:"minimum" validate:"gte=0"`
	Photo       string `json:"photo" validate:"max=255"`
}

// ItemPatch updates only the non-nil fields.
type ItemPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=150"`
	Code        *string `json:"code" validate:"omitempty,max=50"`
	Unit        *string `json:"unit" validate:"omitempty,min=1,max=20"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Minimum     *int    `json:"minimum" validate:"omitempty,gte=0"`
	Photo       *string `json:"photo" validate:"omitempty,max=255"`
}

type LineInput struct {
	ItemID    string `json:"item_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gt=0,max=1000000000"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0,max=1000000000000"`
}

type StockInInput struct {
	ReferenceNumber string      `json:"reference_number" validate:"required,max=100"`
	SupplierID      *string     `json:"supplier_id" validate:"omitempty,uuid"`
	Date            time.Time   `json:"date" validate:"required"`
	Note            string      `json:"note" validate:"max=255"`
	Photo           string      `json:"photo" validate:"max=255"`
	Lines           []LineInput `json:"items" validate:"required,min=1,dive"`
}

type StockOutInput struct {
	ProjectID *string     `json:"project_id" validate:"omitempty,uuid"`
	Date      time.Time   `json:"date" validate:"required"`
	Note      string      `json:"note" validate:"max=255"`
	Photo     string      `json:"photo" validate:"max=255"`
	Lines     []LineInput `json:"items" validate:"required,min=1,dive"`
}

type LoanInput struct {
	ItemID     string    `json:"inventory_id" validate:"required,uuid"`
	BorrowerID string    `json:"borrower_id" validate:"required,max=64"`
	ProjectID  *string   `json:"project_id" validate:"omitempty,uuid"`
	Quantity   int       `json:"quantity" validate:"gt=0,max=1000000000"`
	Date       time.Time `json:"date" validate:"required"`
	Note       string    `json:"note" validate:"max=255"`
	Photo      string    `json:"photo" validate:"max=255"`
}

type ReturnInput struct {
	Quantity int       `json:"quantity" validate:"gt=0,max=1000000000"`
	Date     time.Time `json:"date" validate:"required"`
	Note     string    `json:"note" validate:"max=255"`
}

type CountInput struct {
	ItemID  string    `json:"item_id" validate:"required,uuid"`
	Counted int       `json:"counted" validate:"gte=0,max=1000000000"`
	Date    time.Time `json:"date" validate:"required"`
	Note    string    `json:"note" validate:"max=255"`
}

func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fieldPath(fe), Reason: reasonFor(fe)})
	}
	return out
}

// fieldPath drops the root struct name: "StockInInput.items[0].quantity" -> "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a UUID"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s entries", fe.Param())
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		if isNumber(fe.Kind()) {
			return "must be at most " + fe.Param()
		}
		return "must be at most " + fe.Param() + " characters"
	}
	return "failed " + fe.Tag()
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
