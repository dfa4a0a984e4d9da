package validator

import (
	"errors"
	"fmt"

	apperrors "chatonline-world/backend/pkg/errors"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
)

// ParamValidator rejects requests whose query or path parameters do not
// match the OpenAPI document. Bodies are left to the handlers, which own
// their error messages, and routes the document does not list pass through.
type ParamValidator struct {
	routes routers.Router
}

// Load reads and validates the OpenAPI document at path
func Load(path string) (*ParamValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load OpenAPI document %s: %w", path, err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document %s: %w", path, err)
	}

	routes, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("route OpenAPI document %s: %w", path, err)
	}
	return &ParamValidator{routes: routes}, nil
}

var options = &openapi3filter.Options{
	ExcludeRequestBody: true,
	AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
}

// Middleware answers 400 INVALID_REQUEST naming the offending parameter
func (v *ParamValidator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route, pathParams, err := v.routes.FindRoute(c.Request)
		if err != nil {
			c.Next()
			return
		}

		err = openapi3filter.ValidateRequest(c.Request.Context(), &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
			Options:    options,
		})
		if err != nil {
			c.Error(apperrors.NewBadRequestError("INVALID_REQUEST", "Invalid request").WithDetails(describe(err)))
			c.Abort()
			return
		}
		c.Next()
	}
}

func describe(err error) any {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) && reqErr.Parameter != nil {
		return map[string]string{
			"parameter": reqErr.Parameter.Name,
			"in":        reqErr.Parameter.In,
			"reason":    reqErr.Error(),
		}
	}
	return err.Error()
}
