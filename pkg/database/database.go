package database

import (
	"context"
	"fmt"
	"time"
	"vocaman_backend/internal/config"
	"vocaman_backend/internal/model"
	applog "vocaman_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.DBName,
		dbCfg.Charset,
		dbCfg.ParseTime,
	)

	logMode := logger.Info
	if cfg.Server.Mode == "release" {
		logMode = logger.Warn
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(dbCfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(dbCfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Ping(db, cfg.Database.QueryTimeout()); err != nil {
		return nil, fmt.Errorf("database %s:%d unreachable: %w", dbCfg.Host, dbCfg.Port, err)
	}

	applog.Log.Info("Database connection established",
		zap.String("host", dbCfg.Host),
		zap.String("database", dbCfg.DBName),
		zap.Int("max_open_conns", dbCfg.MaxOpenConns))
	return db, nil
}

// Migrate creates or updates every table of the service.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		return err
	}
	applog.Log.Info("Database migration completed", zap.Int("tables", len(model.AllModels())))
	return nil
}

// Ping reports whether the database answers within timeout.
func Ping(db *gorm.DB, timeout time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
