package adminapi

import (
	"reflect"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"github.com/talkincode/storefront/internal/apperr"
	"github.com/talkincode/storefront/internal/repository"
	"github.com/talkincode/storefront/internal/webserver"
	"github.com/talkincode/storefront/pkg/common"
)

// Init registers every API route on the server
func Init(s *webserver.Server) {
	registerUserRoutes(s)
	registerCustomerRoutes(s)
	registerProductRoutes(s)
	registerOrderRoutes(s)
	registerOrderDetailRoutes(s)
}

// parseListQuery decodes page, perPage, search and all. Unparseable
// numbers fall back to the defaults instead of failing the request.
func parseListQuery(c echo.Context) (repository.ListQuery, error) {
	raw := make(map[string]interface{})
	for key, values := range c.QueryParams() {
		if len(values) > 0 {
			raw[key] = values[0]
		}
	}

	var q repository.ListQuery
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       lenientHook,
		Result:           &q,
	})
	if err != nil {
		return q, apperr.Internal("", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return q, apperr.InvalidField("query", "The query string is invalid.")
	}
	return q.Normalize(), nil
}

func lenientHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int64:
		return cast.ToInt(strings.TrimSpace(data.(string))), nil
	case reflect.Bool:
		return common.IsTruthy(data), nil
	}
	return data, nil
}

// parseIDParam reads a positive integer path parameter
func parseIDParam(c echo.Context, name, notFound string) (int64, error) {
	id, err := cast.ToInt64E(c.Param(name))
	if err != nil || id < 1 {
		return 0, apperr.NotFound(notFound)
	}
	return id, nil
}

// bind decodes the request body; malformed JSON is an input error
func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return apperr.InvalidField("body", "The request body must be a valid JSON object.")
	}
	return nil
}
