package adminapi

import (
	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/service"
	"github.com/talkincode/storefront/internal/webserver"
)

// registerProductRoutes registers product CRUD endpoints
func registerProductRoutes(s *webserver.Server) {
	s.ApiGET("/products/list", listProducts)
	s.ApiGET("/products/:id", getProduct)
	s.ApiGET("/products/list/count", countProducts)
	s.ApiPOST("/products/create", createProduct)
	s.ApiPUT("/products/update/:id", updateProduct)
	s.ApiDELETE("/products/delete/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	page, err := webserver.GetApp(c).Products().List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return webserver.OK(c, "Products retrieved successfully.", map[string]interface{}{"products": page})
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id", "Product not found.")
	if err != nil {
		return err
	}
	product, err := webserver.GetApp(c).Products().Show(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return webserver.OK(c, "Product retrieved successfully.", map[string]interface{}{"product": product})
}

func countProducts(c echo.Context) error {
	stats, err := webserver.GetApp(c).Products().Count(c.Request().Context())
	if err != nil {
		return err
	}
	return webserver.OK(c, "Products counted successfully.", stats)
}

func createProduct(c echo.Context) error {
	var in service.ProductInput
	if err := bind(c, &in); err != nil {
		return err
	}
	product, err := webserver.GetApp(c).Products().Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return webserver.Created(c, "Product created successfully.", map[string]interface{}{"product": product})
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id", "Product not found.")
	if err != nil {
		return err
	}
	var in service.ProductUpdateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if err := webserver.GetApp(c).Products().Update(c.Request().Context(), id, in); err != nil {
		return err
	}
	return webserver.OK(c, "Product updated successfully.", map[string]bool{"isUpdated": true})
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id", "Product not found.")
	if err != nil {
		return err
	}
	if err := webserver.GetApp(c).Products().Destroy(c.Request().Context(), id); err != nil {
		return err
	}
	return webserver.OK(c, "Product deleted successfully.", map[string]bool{"isDeleted": true})
}
