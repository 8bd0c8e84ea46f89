package app

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/cache"
	"github.com/talkincode/storefront/internal/service"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// CacheProvider provides the read-through cache store
type CacheProvider interface {
	Cache() cache.Store
}

// ServiceProvider provides the domain services used by the HTTP handlers
type ServiceProvider interface {
	Auth() *service.AuthService
	Customers() *service.CustomerService
	Products() *service.ProductService
	Orders() *service.OrderService
	OrderDetails() *service.OrderDetailService
}

// AppContext combines all provider interfaces for full application context
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	CacheProvider
	ServiceProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
	Ping(ctx context.Context) error
}
