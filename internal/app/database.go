package app

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/talkincode/storefront/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func getDatabase(cfg config.DBConfig, workdir string) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg, workdir)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", cfg.Type)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Type == "sqlite" {
		// sqlite serializes writers; one connection avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxConn > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxConn)
		}
		if cfg.IdleConn > 0 {
			sqlDB.SetMaxIdleConns(cfg.IdleConn)
		}
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return db, nil
}

func dialectorFor(cfg config.DBConfig, workdir string) (gorm.Dialector, error) {
	switch cfg.Type {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name)
		return postgres.Open(dsn), nil
	case "mysql":
		// clientFoundRows makes RowsAffected count matched rows, not changed ones
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true",
			cfg.User, cfg.Passwd, cfg.Host, cfg.Port, cfg.Name)
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(sqliteDSN(cfg.Name, workdir)), nil
	default:
		return nil, errors.Errorf("unsupported database type %q", cfg.Type)
	}
}

func sqliteDSN(name, workdir string) string {
	if name == "" {
		name = "storefront.db"
	}
	dsn := name
	if !strings.HasPrefix(name, "file:") && name != ":memory:" && !path.IsAbs(name) {
		dir := path.Join(workdir, "data")
		_ = os.MkdirAll(dir, 0o755)
		dsn = path.Join(dir, name)
	}
	if !strings.Contains(dsn, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
	}
	return dsn
}
