package app

import (
	"context"
	"os"
	"path"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/cache"
	"github.com/talkincode/storefront/internal/dispatch"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/repository"
	"github.com/talkincode/storefront/internal/service"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

type Application struct {
	appConfig  *config.AppConfig
	gormDB     *gorm.DB
	sched      *cron.Cron
	rdb        *redis.Client
	cacheStore cache.Store
	sweeper    interface{ Sweep() int }
	boltCache  *cache.BoltStore
	notifier   dispatch.Notifier
	dispatcher *dispatch.Dispatcher

	auth         *service.AuthService
	customers    *service.CustomerService
	products     *service.ProductService
	orders       *service.OrderService
	orderDetails *service.OrderDetailService
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ CacheProvider     = (*Application)(nil)
	_ ServiceProvider   = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	if a.appConfig == nil {
		a.appConfig = config.DefaultAppConfig
	}
	a.gormDB = db
	a.initServices()
}

func (a *Application) Init(cfg *config.AppConfig) error {
	a.appConfig = cfg
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	if err := initLogger(cfg); err != nil {
		return err
	}
	for _, name := range cfg.DefaultSecrets() {
		zap.L().Warn("default secret in use, set a private value before going live",
			zap.String("namespace", "app"), zap.String("setting", name))
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB, err = getDatabase(cfg.Database, cfg.System.Workdir)
	if err != nil {
		return err
	}
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(cfg.Database.Debug); err != nil {
		return errors.Wrap(err, "database migration")
	}

	a.initCache()
	if err := a.initCacheFile(); err != nil {
		return err
	}
	if err := a.initDispatcher(); err != nil {
		return err
	}
	a.initServices()

	a.checkSuper()
	a.checkDemoProducts()

	a.initJob()
	return nil
}

func initLogger(cfg *config.AppConfig) error {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}
		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			return errors.Wrap(err, "build logger")
		}
	}
	zap.ReplaceGlobals(logger)
	return nil
}

func (a *Application) initCache() {
	switch a.appConfig.Cache.Driver {
	case "redis":
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     a.appConfig.Redis.Addr,
			Password: a.appConfig.Redis.Password,
			DB:       a.appConfig.Redis.DB,
		})
		a.cacheStore = cache.NewRedisStore(a.rdb, a.appConfig.Cache.Prefix)
		zap.L().Info("cache backend redis", zap.String("namespace", "cache"), zap.String("addr", a.appConfig.Redis.Addr))
	case "bolt":
		// opened by initCacheFile
	default:
		mem := cache.NewMemoryStore()
		a.cacheStore, a.sweeper = mem, mem
	}
}

func (a *Application) initCacheFile() error {
	if a.appConfig.Cache.Driver != "bolt" {
		return nil
	}
	dir := a.appConfig.GetDataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create data dir")
	}
	store, err := cache.OpenBoltStore(path.Join(dir, "cache.db"))
	if err != nil {
		return err
	}
	a.boltCache = store
	a.cacheStore, a.sweeper = store, store
	return nil
}

func (a *Application) initDispatcher() error {
	dc := a.appConfig.Dispatcher
	switch dc.Notifier {
	case "kafka":
		a.notifier = dispatch.NewKafkaNotifier(a.appConfig.Kafka.Brokers, a.appConfig.Kafka.Topic)
	default:
		a.notifier = dispatch.LogNotifier{}
	}
	d, err := dispatch.New(dispatch.Options{
		Workers:       dc.Workers,
		QueueSize:     dc.QueueSize,
		Tries:         dc.Tries,
		Timeout:       time.Duration(dc.Timeout) * time.Second,
		MaxExceptions: dc.MaxExceptions,
		Backoff:       time.Duration(dc.Backoff) * time.Second,
	}, a.notifier)
	if err != nil {
		return err
	}
	a.dispatcher = d
	zap.L().Info("order dispatcher started",
		zap.String("namespace", "dispatch"),
		zap.String("notifier", a.notifier.Name()),
		zap.Int("workers", dc.Workers))
	return nil
}

func (a *Application) initServices() {
	if a.cacheStore == nil {
		mem := cache.NewMemoryStore()
		a.cacheStore, a.sweeper = mem, mem
	}
	ttl := a.appConfig.CacheTTL()

	users := repository.NewUserRepository(a.gormDB)
	tokens := repository.NewTokenRepository(a.gormDB)
	customers := repository.NewCustomerRepository(a.gormDB)
	products := repository.NewProductRepository(a.gormDB)
	orders := repository.NewOrderRepository(a.gormDB)
	details := repository.NewOrderDetailRepository(a.gormDB)

	var queue service.Enqueuer
	if a.dispatcher != nil {
		queue = a.dispatcher
	}

	a.auth = service.NewAuthService(users, tokens, service.AuthOptions{
		Secret:      []byte(a.appConfig.Auth.JwtSecret),
		TokenTTL:    a.appConfig.TokenTTL(false),
		RememberTTL: a.appConfig.TokenTTL(true),
	})
	a.customers = service.NewCustomerService(customers, orders, a.cacheStore, ttl)
	a.products = service.NewProductService(products, a.cacheStore, ttl)
	a.orders = service.NewOrderService(orders, customers, products, queue, a.cacheStore, ttl)
	a.orderDetails = service.NewOrderDetailService(details, orders, products, a.cacheStore, ttl)
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			if err2, ok := err1.(error); ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	return db.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
		return
	}
	if a.auth != nil {
		a.checkSuper()
		a.checkDemoProducts()
	}
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Cache() cache.Store {
	return a.cacheStore
}

func (a *Application) Auth() *service.AuthService {
	return a.auth
}

func (a *Application) Customers() *service.CustomerService {
	return a.customers
}

func (a *Application) Products() *service.ProductService {
	return a.products
}

func (a *Application) Orders() *service.OrderService {
	return a.orders
}

func (a *Application) OrderDetails() *service.OrderDetailService {
	return a.orderDetails
}

// Ping checks the database and, when configured, redis
func (a *Application) Ping(ctx context.Context) error {
	sqlDB, err := a.gormDB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "database")
	}
	if a.rdb != nil {
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			return errors.Wrap(err, "redis")
		}
	}
	return nil
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(10 * time.Second); err != nil {
			zap.L().Warn("dispatcher close", zap.Error(err))
		}
	}
	if k, ok := a.notifier.(*dispatch.KafkaNotifier); ok {
		_ = k.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.boltCache != nil {
		_ = a.boltCache.Close()
	}
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = zap.L().Sync()
}
