package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	"github.com/tp-bda/dashboard-ventas/internal/core"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Options configures the connection pool behind the repositories
type Options struct {
	Driver   string
	DSN      string
	MaxConns int32
	// TimeZone is the session time zone used to bucket purchases by calendar period
	TimeZone string
	Logger   *logrus.Logger
}

// Repository implements the core repositories over a pooled gorm connection
type Repository struct {
	db                  *gorm.DB
	sqlDB               *sql.DB
	pool                *pgxpool.Pool
	dialect             dialect
	branchRepository    *branchRepository
	sellerRepository    *sellerRepository
	productRepository   *productRepository
	userRepository      *userRepository
	analyticsRepository *analyticsRepository
}

type branchRepository struct {
	*Repository
}

type sellerRepository struct {
	*Repository
}

type productRepository struct {
	*Repository
}

type userRepository struct {
	*Repository
}

type analyticsRepository struct {
	*Repository
}

// NewRepository opens the pool for opts.Driver and checks connectivity
func NewRepository(ctx context.Context, opts Options) (*Repository, error) {
	if opts.MaxConns <= 0 {
		opts.MaxConns = 20
	}
	gormCfg := &gorm.Config{
		Logger:         newGormLogger(opts.Logger),
		TranslateError: true,
	}

	repo := &Repository{}
	switch opts.Driver {
	case DriverPostgres, "":
		poolCfg, err := pgxpool.ParseConfig(opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to parse database url: %w", err)
		}
		poolCfg.MaxConns = opts.MaxConns
		if opts.TimeZone != "" {
			poolCfg.ConnConfig.RuntimeParams["timezone"] = opts.TimeZone
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		sqlDB := stdlib.OpenDBFromPool(pool)
		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repo.db, repo.sqlDB, repo.pool, repo.dialect = db, sqlDB, pool, postgresDialect{}

	case DriverMySQL:
		dsn, err := normalizeMySQLDSN(opts.DSN, opts.TimeZone)
		if err != nil {
			return nil, err
		}
		db, err := gorm.Open(mysql.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(int(opts.MaxConns))
		sqlDB.SetMaxIdleConns(int(opts.MaxConns) / 2)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		repo.db, repo.sqlDB, repo.dialect = db, sqlDB, mysqlDialect{}

	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	if err := repo.Ping(ctx); err != nil {
		repo.Close()
		return nil, err
	}

	repo.branchRepository = &branchRepository{Repository: repo}
	repo.sellerRepository = &sellerRepository{Repository: repo}
	repo.productRepository = &productRepository{Repository: repo}
	repo.userRepository = &userRepository{Repository: repo}
	repo.analyticsRepository = &analyticsRepository{Repository: repo}
	return repo, nil
}

// normalizeMySQLDSN forces the options the repositories rely on. DATETIME columns carry no zone,
// so times are written and read as wall clock in timeZone and DATE_FORMAT buckets by local calendar day.
// ClientFoundRows makes affected-row counts include matched but unchanged rows.
func normalizeMySQLDSN(dsn, timeZone string) (string, error) {
	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse mysql dsn: %w", err)
	}
	loc := time.UTC
	if timeZone != "" {
		if loc, err = time.LoadLocation(timeZone); err != nil {
			return "", fmt.Errorf("failed to load time zone %q: %w", timeZone, err)
		}
	}
	cfg.ParseTime = true
	cfg.Loc = loc
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// BranchRepository returns the BranchRepository interface implementation
func (r *Repository) BranchRepository() core.BranchRepository {
	return r.branchRepository
}

// SellerRepository returns the SellerRepository interface implementation
func (r *Repository) SellerRepository() core.SellerRepository {
	return r.sellerRepository
}

// ProductRepository returns the ProductRepository interface implementation
func (r *Repository) ProductRepository() core.ProductRepository {
	return r.productRepository
}

// UserRepository returns the UserRepository interface implementation
func (r *Repository) UserRepository() core.UserRepository {
	return r.userRepository
}

// AnalyticsRepository returns the AnalyticsRepository interface implementation
func (r *Repository) AnalyticsRepository() core.AnalyticsRepository {
	return r.analyticsRepository
}

// DB exposes the gorm handle for schema bootstrap
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Ping checks that the store is reachable
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close releases every pooled connection
func (r *Repository) Close() {
	if r.sqlDB != nil {
		_ = r.sqlDB.Close()
	}
	if r.pool != nil {
		r.pool.Close()
	}
}

func newGormLogger(logg *logrus.Logger) logger.Interface {
	if logg == nil {
		return logger.Default.LogMode(logger.Warn)
	}
	return logger.New(logg, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
