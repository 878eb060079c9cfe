package handler

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/vsinha/shopfloor/pkg/interfaces/http/apierror"
)

var validate = validator.New()

func init() {
	// decimal.Decimal is a struct; present it as a float so gte/gt tags apply
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs the validate tags. It writes
// the error response itself and returns false on failure.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation("validation failed", fields))
		return false
	}
	return true
}

// fail maps a service error onto the response
func fail(c *gin.Context, err error) {
	status, body := apierror.FromError(err)
	c.Error(err)
	c.JSON(status, body)
}

// countRequest is the body of every stock movement. Only presence is checked
// here; the range is the service's to reject as an InvalidQuantityError.
type countRequest struct {
	Count *int64 `json:"count" validate:"required"`
}
