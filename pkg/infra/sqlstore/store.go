package sqlstore

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

const defaultTable = "ghtask_items"

// Config selects the SQL backend for tracked items
type Config struct {
	Driver      string // sqlite or postgres
	DSN         string
	Table       string
	AutoMigrate bool
}

// Store keeps tracked items in a SQL table through GORM
type Store struct {
	db    *gorm.DB
	table string
}

type row struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement"`
	IdentityKey string    `gorm:"column:identity_key;size:512;not null;index"`
	Description string    `gorm:"column:description;type:text"`
	Project     string    `gorm:"column:project;size:255"`
	Status      string    `gorm:"column:status;size:16;not null;index"`
	Priority    string    `gorm:"column:priority;size:16"`
	Tags        string    `gorm:"column:tags;type:text"` // comma separated, wrapped in commas for LIKE matching
	UpstreamRef string    `gorm:"column:upstream_ref;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Open connects to the configured database
func Open(cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, goerr.New("sql store dsn is required", goerr.T(model.ErrTagConfig))
	}

	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres", "postgresql", "pgx":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, goerr.New("unsupported sql driver",
			goerr.V("driver", cfg.Driver),
			goerr.T(model.ErrTagConfig),
		)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("driver", cfg.Driver))
	}

	table := cfg.Table
	if table == "" {
		table = defaultTable
	}
	s := &Store{db: db, table: table}
	if cfg.AutoMigrate {
		if err := s.tableDB().AutoMigrate(&row{}); err != nil {
			return nil, goerr.Wrap(err, "failed to migrate table", goerr.V("table", table))
		}
	}
	return s, nil
}

// Shutdown closes the underlying connection
func (s *Store) Shutdown() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return goerr.Wrap(err, "failed to get sql.DB")
	}
	return sqlDB.Close()
}

func (s *Store) tableDB() *gorm.DB {
	return s.db.Table(s.table)
}

func (s *Store) pending(ctx context.Context, tags []string) *gorm.DB {
	q := s.tableDB().WithContext(ctx).Where("status = ?", string(model.TaskStatusPending))
	for _, tag := range tags {
		q = q.Where("tags LIKE ?", "%,"+tag+",%")
	}
	return q
}

func (s *Store) Exists(ctx context.Context, identityKey string, tags []string) (bool, error) {
	var count int64
	if err := s.pending(ctx, tags).Where("identity_key = ?", identityKey).Count(&count).Error; err != nil {
		return false, goerr.Wrap(err, "failed to count items", goerr.V("identity_key", identityKey))
	}
	return count > 0, nil
}

func (s *Store) Create(ctx context.Context, spec *model.TaskSpec) (string, error) {
	data := row{
		IdentityKey: spec.IdentityKey,
		Description: spec.Description,
		Project:     spec.Project,
		Status:      string(model.TaskStatusPending),
		Priority:    string(spec.Priority),
		Tags:        joinTags(spec.Tags),
		UpstreamRef: spec.UpstreamRef,
	}
	if err := s.tableDB().WithContext(ctx).Create(&data).Error; err != nil {
		return "", goerr.Wrap(err, "failed to insert item", goerr.V("identity_key", spec.IdentityKey))
	}
	return strconv.FormatUint(uint64(data.ID), 10), nil
}

func (s *Store) ListPending(ctx context.Context, tags []string) ([]*model.TrackedItem, error) {
	var rows []row
	if err := s.pending(ctx, tags).Order("id").Find(&rows).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list items", goerr.V("tags", tags))
	}

	items := make([]*model.TrackedItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, fromRow(r))
	}
	return items, nil
}

func (s *Store) Close(ctx context.Context, id string) error {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return goerr.Wrap(err, "invalid item id", goerr.V("id", id))
	}

	res := s.tableDB().WithContext(ctx).
		Where("id = ?", n).
		Update("status", string(model.TaskStatusDone))
	if res.Error != nil {
		return goerr.Wrap(res.Error, "failed to close item", goerr.V("id", id))
	}
	if res.RowsAffected == 0 {
		return goerr.New("item not found", goerr.V("id", id))
	}
	return nil
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "," + strings.Join(tags, ",") + ","
}

func splitTags(s string) []string {
	s = strings.Trim(s, ",")
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func fromRow(r row) *model.TrackedItem {
	return &model.TrackedItem{
		ID:          strconv.FormatUint(uint64(r.ID), 10),
		IdentityKey: r.IdentityKey,
		Description: r.Description,
		Project:     r.Project,
		Status:      model.TaskStatus(r.Status),
		Priority:    model.Priority(r.Priority),
		Tags:        splitTags(r.Tags),
		UpstreamRef: r.UpstreamRef,
	}
}
