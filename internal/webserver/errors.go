package webserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/apperr"
	"go.uber.org/zap"
)

// errorHandler renders every error as a failure envelope
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, message, data := resolveError(c, err)
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = Failure(c, code, message, data)
	}
	if err != nil {
		zap.L().Error("write error response", zap.String("namespace", "http"), zap.Error(err))
	}
}

func resolveError(c echo.Context, err error) (int, string, interface{}) {
	if e, ok := apperr.As(err); ok {
		if e.Kind == apperr.KindInternal {
			logInternal(c, e)
		}
		var data interface{}
		if len(e.Fields) > 0 {
			data = e.Fields
		}
		return e.Kind.HTTPStatus(), e.Message, data
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			if inner, ok := apperr.As(he.Internal); ok {
				return resolveError(c, inner)
			}
		}
		if he.Code >= http.StatusInternalServerError {
			logInternal(c, err)
			return he.Code, apperr.MsgInternal, nil
		}
		message := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			message = s
		} else if he.Message != nil {
			message = fmt.Sprint(he.Message)
		}
		return he.Code, message, nil
	}

	logInternal(c, err)
	return http.StatusInternalServerError, apperr.MsgInternal, nil
}

func logInternal(c echo.Context, err error) {
	zap.L().Error("request failed",
		zap.String("namespace", "http"),
		zap.String("method", c.Request().Method),
		zap.String("uri", c.Request().RequestURI),
		zap.Error(err))
}
