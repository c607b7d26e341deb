package sqlx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	// database drivers selected by Config.Driver
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"arcadekit/core"
	"arcadekit/engine"
)

// Driver names supported by the SQL adapter.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config holds SQL connection configuration
type Config struct {
	Driver          string        `json:"driver" env:"ARCADEKIT_STORAGE_SQL_DRIVER"`
	DSN             string        `json:"dsn" env:"ARCADEKIT_STORAGE_SQL_DSN"`
	MaxOpenConns    int           `json:"max_open_conns" env:"ARCADEKIT_STORAGE_SQL_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `json:"max_idle_conns" env:"ARCADEKIT_STORAGE_SQL_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" env:"ARCADEKIT_STORAGE_SQL_CONN_MAX_LIFETIME"`
}

// DefaultConfig returns sensible defaults for the given driver
func DefaultConfig(driver string) Config {
	return Config{
		Driver:          driver,
		DSN:             "",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Store implements the engine.Storage interface on a relational database.
// The achievements table carries UNIQUE(user_id, type), so the one-record-
// per-(user, type) invariant holds even without the engine's per-user lock.
type Store struct {
	db     *sqlx.DB
	driver string
}

// New opens a database connection using the provided configuration
func New(config Config) (*Store, error) {
	if config.DSN == "" {
		return nil, errors.New("sql storage requires a DSN")
	}
	db, err := sqlx.Connect(config.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	return &Store{db: db, driver: config.Driver}, nil
}

// NewWithDB creates a Store using an existing connection (useful for testing)
func NewWithDB(db *sqlx.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// Close closes the underlying connection pool
func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			game_id VARCHAR(128) NOT NULL,
			value BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			title VARCHAR(256) NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_credits (
			user_id VARCHAR(128) PRIMARY KEY,
			credits BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			type VARCHAR(64) NOT NULL,
			title VARCHAR(256) NOT NULL,
			description VARCHAR(512) NOT NULL,
			icon VARCHAR(64) NOT NULL,
			progress DOUBLE PRECISION NOT NULL,
			completed BOOLEAN NOT NULL,
			completed_at TIMESTAMP NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, type)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

type achievementRow struct {
	ID          string       `db:"id"`
	UserID      string       `db:"user_id"`
	Type        string       `db:"type"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	Icon        string       `db:"icon"`
	Progress    float64      `db:"progress"`
	Completed   bool         `db:"completed"`
	CompletedAt sql.NullTime `db:"completed_at"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

func (r achievementRow) toCore() core.Achievement {
	a := core.Achievement{
		ID:          r.ID,
		UserID:      core.UserID(r.UserID),
		Type:        core.AchievementType(r.Type),
		Title:       r.Title,
		Description: r.Description,
		Icon:        r.Icon,
		Progress:    r.Progress,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.CompletedAt.Valid {
		t := r.CompletedAt.Time
		a.CompletedAt = &t
	}
	return a
}

func (s *Store) AchievementsByUser(ctx context.Context, user core.UserID) ([]core.Achievement, error) {
	var rows []achievementRow
	query := s.db.Rebind(`SELECT id, user_id, type, title, description, icon, progress, completed, completed_at, created_at, updated_at FROM achievements WHERE user_id = ? ORDER BY created_at`)
	if err := s.db.SelectContext(ctx, &rows, query, user); err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	out := make([]core.Achievement, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toCore())
	}
	return out, nil
}

func (s *Store) CreateAchievement(ctx context.Context, a core.Achievement) (core.Achievement, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.Achievement{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	check := tx.Rebind(`SELECT EXISTS (SELECT 1 FROM achievements WHERE user_id = ? AND type = ?)`)
	if err := tx.GetContext(ctx, &exists, check, a.UserID, a.Type); err != nil {
		return core.Achievement{}, fmt.Errorf("failed to check achievement: %w", err)
	}
	if exists {
		return core.Achievement{}, engine.ErrDuplicate
	}

	now := time.Now().UTC()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now
	var completedAt sql.NullTime
	if a.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *a.CompletedAt, Valid: true}
	}
	insert := tx.Rebind(`INSERT INTO achievements (id, user_id, type, title, description, icon, progress, completed, completed_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, insert, a.ID, a.UserID, a.Type, a.Title, a.Description, a.Icon, a.Progress, a.Completed, completedAt, a.CreatedAt, a.UpdatedAt); err != nil {
		return core.Achievement{}, fmt.Errorf("failed to insert achievement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Achievement{}, err
	}
	return a, nil
}

func (s *Store) UpdateAchievement(ctx context.Context, id string, progress float64, completed bool, completedAt *time.Time) (core.Achievement, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.Achievement{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var row achievementRow
	get := tx.Rebind(`SELECT id, user_id, type, title, description, icon, progress, completed, completed_at, created_at, updated_at FROM achievements WHERE id = ?`)
	if err := tx.GetContext(ctx, &row, get, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Achievement{}, engine.ErrNotFound
		}
		return core.Achievement{}, fmt.Errorf("failed to load achievement: %w", err)
	}

	row.Progress = progress
	row.Completed = completed
	row.CompletedAt = sql.NullTime{}
	if completedAt != nil {
		row.CompletedAt = sql.NullTime{Time: *completedAt, Valid: true}
	}
	row.UpdatedAt = time.Now().UTC()

	update := tx.Rebind(`UPDATE achievements SET progress = ?, completed = ?, completed_at = ?, updated_at = ? WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, update, row.Progress, row.Completed, row.CompletedAt, row.UpdatedAt, row.ID); err != nil {
		return core.Achievement{}, fmt.Errorf("failed to update achievement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Achievement{}, err
	}
	return row.toCore(), nil
}

type scoreRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	GameID    string    `db:"game_id"`
	Value     int64     `db:"value"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *Store) ScoresByUser(ctx context.Context, user core.UserID) ([]core.Score, error) {
	var rows []scoreRow
	query := s.db.Rebind(`SELECT id, user_id, game_id, value, created_at FROM scores WHERE user_id = ? ORDER BY created_at`)
	if err := s.db.SelectContext(ctx, &rows, query, user); err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}
	out := make([]core.Score, 0, len(rows))
	for _, r := range rows {
		out = append(out, core.Score{ID: r.ID, UserID: core.UserID(r.UserID), GameID: core.GameID(r.GameID), Value: r.Value, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (s *Store) SaveScore(ctx context.Context, score core.Score) (core.Score, error) {
	score.ID = uuid.NewString()
	score.CreatedAt = time.Now().UTC()
	insert := s.db.Rebind(`INSERT INTO scores (id, user_id, game_id, value, created_at) VALUES (?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, insert, score.ID, score.UserID, score.GameID, score.Value, score.CreatedAt); err != nil {
		return core.Score{}, fmt.Errorf("failed to save score: %w", err)
	}
	return score, nil
}

type gameRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *Store) GamesByUser(ctx context.Context, user core.UserID) ([]core.Game, error) {
	var rows []gameRow
	query := s.db.Rebind(`SELECT id, user_id, title, created_at FROM games WHERE user_id = ? ORDER BY created_at`)
	if err := s.db.SelectContext(ctx, &rows, query, user); err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	out := make([]core.Game, 0, len(rows))
	for _, r := range rows {
		out = append(out, core.Game{ID: core.GameID(r.ID), UserID: core.UserID(r.UserID), Title: r.Title, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (s *Store) SaveGame(ctx context.Context, game core.Game) (core.Game, error) {
	if game.ID == "" {
		game.ID = core.GameID(uuid.NewString())
	}
	game.CreatedAt = time.Now().UTC()
	insert := s.db.Rebind(`INSERT INTO games (id, user_id, title, created_at) VALUES (?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, insert, game.ID, game.UserID, game.Title, game.CreatedAt); err != nil {
		return core.Game{}, fmt.Errorf("failed to save game: %w", err)
	}
	return game, nil
}

func (s *Store) Credits(ctx context.Context, user core.UserID) (int64, error) {
	var credits int64
	query := s.db.Rebind(`SELECT credits FROM user_credits WHERE user_id = ?`)
	if err := s.db.GetContext(ctx, &credits, query, user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load credits: %w", err)
	}
	return credits, nil
}

func (s *Store) AddCredits(ctx context.Context, user core.UserID, delta int64) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var current int64
	get := tx.Rebind(`SELECT credits FROM user_credits WHERE user_id = ?`)
	err = tx.GetContext(ctx, &current, get, user)
	insert := errors.Is(err, sql.ErrNoRows)
	if err != nil && !insert {
		return 0, fmt.Errorf("failed to load credits: %w", err)
	}

	next, err := core.AddSafe(current, delta)
	if err != nil {
		return 0, err
	}
	if insert {
		stmt := tx.Rebind(`INSERT INTO user_credits (user_id, credits) VALUES (?, ?)`)
		if _, err := tx.ExecContext(ctx, stmt, user, next); err != nil {
			return 0, fmt.Errorf("failed to insert credits: %w", err)
		}
	} else {
		stmt := tx.Rebind(`UPDATE user_credits SET credits = ? WHERE user_id = ?`)
		if _, err := tx.ExecContext(ctx, stmt, next, user); err != nil {
			return 0, fmt.Errorf("failed to update credits: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return next, nil
}

var _ engine.Storage = (*Store)(nil)
