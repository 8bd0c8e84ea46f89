package webserver

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/apperr"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/service"
)

const (
	appCtxKey       = "appctx"
	jwtContextKey   = "jwt"
	currentUserKey  = "current_user"
	currentTokenKey = "current_token"
)

// bearerAuth verifies the signed token then resolves it against the token table
func bearerAuth(signingKey []byte) []echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		SigningKey:    signingKey,
		SigningMethod: echojwt.AlgorithmHS256,
		ContextKey:    jwtContextKey,
		TokenLookup:   "header:Authorization:Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperr.Unauthorized("Unauthenticated.")
		},
	})

	resolve := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(jwtContextKey).(*jwt.Token)
			if !ok {
				return apperr.Unauthorized("Unauthenticated.")
			}
			claims, _ := token.Claims.(*service.Claims)
			user, row, err := GetApp(c).Auth().Authenticate(c.Request().Context(), claims)
			if err != nil {
				return err
			}
			c.Set(currentUserKey, user)
			c.Set(currentTokenKey, row)
			return next(c)
		}
	}
	return []echo.MiddlewareFunc{verify, resolve}
}

// CurrentUser the authenticated user, nil on public routes
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(currentUserKey).(*domain.User)
	return u
}

func CurrentToken(c echo.Context) *domain.AccessToken {
	t, _ := c.Get(currentTokenKey).(*domain.AccessToken)
	return t
}
