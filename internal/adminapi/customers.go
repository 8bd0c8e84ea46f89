package adminapi

import (
	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/service"
	"github.com/talkincode/storefront/internal/webserver"
)

func registerCustomerRoutes(s *webserver.Server) {
	s.ApiGET("/customers/list", listCustomers)
	s.ApiGET("/customers/:id", getCustomer)
	s.ApiGET("/customers/overview/stats", customerStats)
	s.ApiPOST("/customers/create", createCustomer)
	s.ApiPUT("/customers/update/:id", updateCustomer)
	s.ApiDELETE("/customers/delete/:id", deleteCustomer)
}

func listCustomers(c echo.Context) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	page, err := webserver.GetApp(c).Customers().List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return webserver.OK(c, "Customers retrieved successfully.", map[string]interface{}{"customers": page})
}

func getCustomer(c echo.Context) error {
	id, err := parseIDParam(c, "id", "Customer not found.")
	if err != nil {
		return err
	}
	customer, err := webserver.GetApp(c).Customers().Show(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return webserver.OK(c, "Customer retrieved successfully.", map[string]interface{}{"customer": customer})
}

func customerStats(c echo.Context) error {
	stats, err := webserver.GetApp(c).Customers().Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return webserver.OK(c, "Customers counted successfully.", stats)
}

func createCustomer(c echo.Context) error {
	var in service.CustomerInput
	if err := bind(c, &in); err != nil {
		return err
	}
	customer, err := webserver.GetApp(c).Customers().Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return webserver.Created(c, "Customer created successfully.", map[string]interface{}{"customer": customer})
}

func updateCustomer(c echo.Context) error {
	id, err := parseIDParam(c, "id", "Customer not found.")
	if err != nil {
		return err
	}
	var in service.CustomerUpdateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if err := webserver.GetApp(c).Customers().Update(c.Request().Context(), id, in); err != nil {
		return err
	}
	return webserver.OK(c, "Customer record updated successfully.", map[string]bool{"isUpdated": true})
}

func deleteCustomer(c echo.Context) error {
	id, err := parseIDParam(c, "id", "Customer not found.")
	if err != nil {
		return err
	}
	if err := webserver.GetApp(c).Customers().Destroy(c.Request().Context(), id); err != nil {
		return err
	}
	return webserver.OK(c, "Customer record deleted successfully.", map[string]bool{"isDeleted": true})
}
