package adminapi

import (
	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/service"
	"github.com/talkincode/storefront/internal/webserver"
)

func registerOrderRoutes(s *webserver.Server) {
	s.ApiGET("/orders/list", listOrders)
	s.ApiGET("/orders/:id", getOrder)
	s.ApiGET("/orders/overview/stats", orderStats)
	s.ApiGET("/orders/list/count", countOrders)
	s.ApiPOST("/orders/create/:customerId", createOrder)
	s.ApiPUT("/orders/update/:id", updateOrder)
	s.ApiDELETE("/orders/delete/:id", deleteOrder)
}

func listOrders(c echo.Context) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	page, err := webserver.GetApp(c).Orders().List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return webserver.OK(c, "Orders retrieved successfully.", map[string]interface{}{"orders": page})
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id", "Order not found.")
	if err != nil {
		return err
	}
	order, err := webserver.GetApp(c).Orders().Show(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return webserver.OK(c, "Order retrieved successfully.", map[string]interface{}{"order": order})
}

func orderStats(c echo.Context) error {
	stats, err := webserver.GetApp(c).Orders().Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return webserver.OK(c, "Orders stats retrieved successfully.", stats)
}

func countOrders(c echo.Context) error {
	stats, err := webserver.GetApp(c).Orders().Count(c.Request().Context())
	if err != nil {
		return err
	}
	return webserver.OK(c, "Orders counted successfully.", stats)
}

// createOrder stores the order with its lines and queues the side effects
func createOrder(c echo.Context) error {
	customerID, err := parseIDParam(c, "customerId", "Customer not found.")
	if err != nil {
		return err
	}
	var in service.OrderInput
	if err := bind(c, &in); err != nil {
		return err
	}
	order, err := webserver.GetApp(c).Orders().Store(c.Request().Context(), customerID, in)
	if err != nil {
		return err
	}
	return webserver.Created(c, "Order created successfully.", map[string]interface{}{"order": order})
}

func updateOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id", "Order not found, update failed!")
	if err != nil {
		return err
	}
	var in service.OrderUpdateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if err := webserver.GetApp(c).Orders().Update(c.Request().Context(), id, in); err != nil {
		return err
	}
	return webserver.OK(c, "Order updated successfully.", map[string]bool{"isUpdated": true})
}

func deleteOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id", "Order not found.")
	if err != nil {
		return err
	}
	if err := webserver.GetApp(c).Orders().Destroy(c.Request().Context(), id); err != nil {
		return err
	}
	return webserver.OK(c, "Order deleted successfully.", map[string]bool{"isDeleted": true})
}
