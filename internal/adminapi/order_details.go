package adminapi

import (
	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/service"
	"github.com/talkincode/storefront/internal/webserver"
)

func registerOrderDetailRoutes(s *webserver.Server) {
	s.ApiGET("/order-details/list", listOrderDetails)
	s.ApiGET("/order-details/:id", getOrderDetail)
	s.ApiGET("/order-details/list/count", countOrderDetails)
	s.ApiPOST("/order-details/create", createOrderDetail)
	s.ApiPUT("/order-details/update/:id", updateOrderDetail)
	s.ApiDELETE("/order-details/delete/:id", deleteOrderDetail)
}

func listOrderDetails(c echo.Context) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	page, err := webserver.GetApp(c).OrderDetails().List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return webserver.OK(c, "Order details retrieved successfully.", map[string]interface{}{"orderDetails": page})
}

func getOrderDetail(c echo.Context) error {
	id, err := parseIDParam(c, "id", "Order detail not found.")
	if err != nil {
		return err
	}
	detail, err := webserver.GetApp(c).OrderDetails().Show(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return webserver.OK(c, "Order detail retrieved successfully.", map[string]interface{}{"orderDetail": detail})
}

func countOrderDetails(c echo.Context) error {
	stats, err := webserver.GetApp(c).OrderDetails().Count(c.Request().Context())
	if err != nil {
		return err
	}
	return webserver.OK(c, "Order details counted successfully.", stats)
}

func createOrderDetail(c echo.Context) error {
	var in service.OrderDetailInput
	if err := bind(c, &in); err != nil {
		return err
	}
	detail, err := webserver.GetApp(c).OrderDetails().Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return webserver.Created(c, "Order detail created successfully.", map[string]interface{}{"orderDetail": detail})
}

func updateOrderDetail(c echo.Context) error {
	id, err := parseIDParam(c, "id", "Order detail not found, update failed!")
	if err != nil {
		return err
	}
	var in service.OrderDetailUpdateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if err := webserver.GetApp(c).OrderDetails().Update(c.Request().Context(), id, in); err != nil {
		return err
	}
	return webserver.OK(c, "Order detail updated successfully.", map[string]bool{"isUpdated": true})
}

func deleteOrderDetail(c echo.Context) error {
	id, err := parseIDParam(c, "id", "Order detail not found.")
	if err != nil {
		return err
	}
	if err := webserver.GetApp(c).OrderDetails().Destroy(c.Request().Context(), id); err != nil {
		return err
	}
	return webserver.OK(c, "Order detail deleted successfully.", map[string]bool{"isDeleted": true})
}
