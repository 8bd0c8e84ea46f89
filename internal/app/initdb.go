package app

import (
	"context"
	"time"

	"github.com/talkincode/storefront/internal/domain"
	"go.uber.org/zap"
)

// checkSuper makes sure the configured bootstrap account exists
func (a *Application) checkSuper() {
	email := a.appConfig.Auth.BootstrapEmail
	if email == "" || a.appConfig.Auth.BootstrapPassword == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	created, err := a.auth.EnsureUser(ctx, email, a.appConfig.Auth.BootstrapPassword)
	if err != nil {
		zap.L().Error("failed to create bootstrap user", zap.String("email", email), zap.Error(err))
		return
	}
	if created {
		zap.L().Info("initialized bootstrap user", zap.String("email", email))
	}
}

var demoProducts = []domain.Product{
	{Name: "Jollof Rice", UnitPrice: 2500, Quantity: 120, Category: domain.CategoryFood},
	{Name: "Pineapple", UnitPrice: 800, Quantity: 300, Category: domain.CategoryFruit},
	{Name: "Corn Flakes", UnitPrice: 1800, Quantity: 80, Category: domain.CategoryCereal},
	{Name: "Brown Beans", UnitPrice: 1200, Quantity: 200, Category: domain.CategoryGrain},
	{Name: "Spinach", UnitPrice: 450, Quantity: 150, Category: domain.CategoryVegetable},
	{Name: "Spaghetti Bolognese", UnitPrice: 3200, Quantity: 60, Category: domain.CategoryContinental},
}

// checkDemoProducts seeds a small catalogue into an empty products table
func (a *Application) checkDemoProducts() {
	if !a.appConfig.System.SeedDemo {
		return
	}
	items := make([]domain.Product, len(demoProducts))
	copy(items, demoProducts)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := a.products.SeedIfEmpty(ctx, items)
	if err != nil {
		zap.L().Error("failed to create demo products", zap.Int("created", n), zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("initialized demo products", zap.Int("count", n))
	}
}
