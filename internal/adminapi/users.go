package adminapi

import (
	"net/http"
	"net/url"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/apperr"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/service"
	"github.com/talkincode/storefront/internal/webserver"
	"go.uber.org/zap"
)

// registerUserRoutes registers authentication and user management routes
func registerUserRoutes(s *webserver.Server) {
	s.PublicPOST("/users/register", registerUser)
	s.PublicPOST("/users/login", loginUser)

	s.ApiGET("/users/list", listUsers)
	s.ApiGET("/users/me", currentUser)
	s.ApiGET("/users/list/count", countUsers)
	s.ApiPUT("/users/update/:email", updateUser)
	s.ApiDELETE("/users/delete/:user", deleteUser)
	s.ApiPOST("/users/logout", logoutUser)
}

func registerUser(c echo.Context) error {
	var in service.RegisterInput
	if err := bind(c, &in); err != nil {
		return err
	}
	res, err := webserver.GetApp(c).Auth().Register(c.Request().Context(), in)
	if err != nil {
		return err
	}
	saveSession(c, res.User, false)
	return webserver.OK(c, "User registered successfully.", res)
}

func loginUser(c echo.Context) error {
	var in service.LoginInput
	if err := bind(c, &in); err != nil {
		return err
	}
	res, err := webserver.GetApp(c).Auth().Login(c.Request().Context(), in)
	if err != nil {
		return err
	}
	saveSession(c, res.User, in.RememberMe)
	return webserver.OK(c, "User logged in successfully.", res)
}

func listUsers(c echo.Context) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	page, err := webserver.GetApp(c).Auth().List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return webserver.OK(c, "Users retrieved successfully.", map[string]interface{}{"users": page})
}

func currentUser(c echo.Context) error {
	return webserver.OK(c, "User retrieved successfully.", webserver.CurrentUser(c))
}

func countUsers(c echo.Context) error {
	stats, err := webserver.GetApp(c).Auth().Count(c.Request().Context())
	if err != nil {
		return err
	}
	return webserver.OK(c, "Users counted successfully.", stats)
}

func updateUser(c echo.Context) error {
	var in service.UserUpdateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	email, err := url.PathUnescape(c.Param("email"))
	if err != nil {
		return apperr.NotFound("User not found")
	}
	if err := webserver.GetApp(c).Auth().Update(c.Request().Context(), email, in); err != nil {
		return err
	}
	return webserver.OK(c, "User record updated successfully.", map[string]bool{"success": true})
}

func deleteUser(c echo.Context) error {
	id, err := parseIDParam(c, "user", "User not found")
	if err != nil {
		return err
	}
	if err := webserver.GetApp(c).Auth().Destroy(c.Request().Context(), id); err != nil {
		return err
	}
	return webserver.OK(c, "User record deleted successfully.", map[string]bool{"isDeleted": true})
}

func logoutUser(c echo.Context) error {
	token := webserver.CurrentToken(c)
	if token == nil {
		return apperr.Unauthorized("Unauthenticated.")
	}
	if err := webserver.GetApp(c).Auth().Logout(c.Request().Context(), token.ID); err != nil {
		return err
	}
	clearSession(c)
	return webserver.OK(c, "User logged out successfully.", nil)
}

// saveSession records the signed-in user in the cookie session. Without
// remember_me the cookie lives for the browser session only.
func saveSession(c echo.Context, user *domain.User, remember bool) {
	sess, err := session.Get(webserver.SessionName, c)
	if sess == nil {
		zap.L().Warn("session unavailable", zap.String("namespace", "auth"), zap.Error(err))
		return
	}
	maxAge := 0
	if remember {
		maxAge = int(webserver.GetApp(c).Config().TokenTTL(true).Seconds())
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	sess.Values["user_id"] = user.ID
	sess.Values["email"] = user.Email
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		zap.L().Warn("session save failed", zap.String("namespace", "auth"), zap.Error(err))
	}
}

func clearSession(c echo.Context) {
	sess, _ := session.Get(webserver.SessionName, c)
	if sess == nil {
		return
	}
	sess.Options = &sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true}
	sess.Values = map[interface{}]interface{}{}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		zap.L().Warn("session clear failed", zap.String("namespace", "auth"), zap.Error(err))
	}
}
