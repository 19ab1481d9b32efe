package handler

import (
	"net/http"
	"reflect"

	"github.com/anass1h/Station-sub000/internal/apierror"
	"github.com/anass1h/Station-sub000/internal/middleware"
	"github.com/anass1h/Station-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps a service error's kind to an HTTP status. Unclassified
// errors become a generic 500 so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	kind, ok := apierror.KindOf(err)
	if !ok {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
		return
	}
	status := http.StatusInternalServerError
	switch kind {
	case apierror.KindNotFound:
		status = http.StatusNotFound
	case apierror.KindConflict:
		status = http.StatusConflict
	case apierror.KindInvalid:
		status = http.StatusBadRequest
	case apierror.KindForbidden:
		status = http.StatusForbidden
	}
	c.JSON(status, apierror.New(err.Error()))
}

// pathUUID parses a :param path segment as a UUID; writes a 400 when invalid.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// actorFromClaims builds the service-layer actor from the JWT claims.
func actorFromClaims(c *gin.Context) service.Actor {
	claims := middleware.GetClaims(c)
	id, _ := uuid.Parse(claims.UserID)
	return service.Actor{ID: id, Role: claims.Role}
}
