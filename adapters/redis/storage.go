package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"arcadekit/core"
	"arcadekit/engine"
)

// Config holds Redis connection configuration
type Config struct {
	Addr         string        `json:"addr" env:"ARCADEKIT_STORAGE_REDIS_ADDR"`
	Password     string        `json:"password" env:"ARCADEKIT_STORAGE_REDIS_PASSWORD"`
	DB           int           `json:"db" env:"ARCADEKIT_STORAGE_REDIS_DB"`
	PoolSize     int           `json:"pool_size" env:"ARCADEKIT_STORAGE_REDIS_POOL_SIZE"`
	MinIdleConns int           `json:"min_idle_conns" env:"ARCADEKIT_STORAGE_REDIS_MIN_IDLE_CONNS"`
	DialTimeout  time.Duration `json:"dial_timeout" env:"ARCADEKIT_STORAGE_REDIS_DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `json:"read_timeout" env:"ARCADEKIT_STORAGE_REDIS_READ_TIMEOUT"`
	WriteTimeout time.Duration `json:"write_timeout" env:"ARCADEKIT_STORAGE_REDIS_WRITE_TIMEOUT"`
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Store implements the engine.Storage interface using Redis as the backend.
// Data structure:
// - user:{user_id}:scores -> list of JSON Score
// - user:{user_id}:games -> list of JSON Game
// - user:{user_id}:credits -> int64 balance
// - user:{user_id}:achievements -> hash keyed by achievement type (JSON value)
// - achievements:index -> hash keyed by achievement id, pointing at (user, type)
type Store struct {
	client *redis.Client
}

// New creates a new Redis-backed storage with the provided configuration
func New(config Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client}, nil
}

// NewWithClient creates a Store using an existing Redis client (useful for testing)
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

func scoresKey(user core.UserID) string  { return fmt.Sprintf("user:%s:scores", user) }
func gamesKey(user core.UserID) string   { return fmt.Sprintf("user:%s:games", user) }
func creditsKey(user core.UserID) string { return fmt.Sprintf("user:%s:credits", user) }
func achievementsKey(user core.UserID) string {
	return fmt.Sprintf("user:%s:achievements", user)
}

const indexKey = "achievements:index"

// indexRef locates an achievement record from its id.
type indexRef struct {
	User core.UserID          `json:"user"`
	Type core.AchievementType `json:"type"`
}

// Lua script for atomic credit adjustment with overflow protection
var addCreditsScript = redis.NewScript(`
	local key = KEYS[1]
	local delta = tonumber(ARGV[1])
	local current = tonumber(redis.call('GET', key) or '0')
	local next_val = current + delta

	-- Check for overflow (simplified check for large numbers)
	if next_val > 9223372036854775807 or next_val < -9223372036854775808 then
		return redis.error_reply('integer overflow')
	end

	redis.call('SET', key, next_val)
	return next_val
`)

func (s *Store) AchievementsByUser(ctx context.Context, user core.UserID) ([]core.Achievement, error) {
	raw, err := s.client.HGetAll(ctx, achievementsKey(user)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	out := make([]core.Achievement, 0, len(raw))
	for _, d := range core.Definitions() {
		data, ok := raw[string(d.Type)]
		if !ok {
			continue
		}
		var a core.Achievement
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			continue // Skip invalid entries
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) CreateAchievement(ctx context.Context, a core.Achievement) (core.Achievement, error) {
	now := time.Now().UTC()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now
	data, err := json.Marshal(a)
	if err != nil {
		return core.Achievement{}, err
	}
	// HSetNX keeps the (user, type) pair unique even across racing writers.
	set, err := s.client.HSetNX(ctx, achievementsKey(a.UserID), string(a.Type), data).Result()
	if err != nil {
		return core.Achievement{}, fmt.Errorf("failed to create achievement: %w", err)
	}
	if !set {
		return core.Achievement{}, engine.ErrDuplicate
	}
	ref, _ := json.Marshal(indexRef{User: a.UserID, Type: a.Type})
	if err := s.client.HSet(ctx, indexKey, a.ID, ref).Err(); err != nil {
		return core.Achievement{}, fmt.Errorf("failed to index achievement: %w", err)
	}
	return a, nil
}

func (s *Store) UpdateAchievement(ctx context.Context, id string, progress float64, completed bool, completedAt *time.Time) (core.Achievement, error) {
	refData, err := s.client.HGet(ctx, indexKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return core.Achievement{}, engine.ErrNotFound
	}
	if err != nil {
		return core.Achievement{}, fmt.Errorf("failed to resolve achievement id: %w", err)
	}
	var ref indexRef
	if err := json.Unmarshal([]byte(refData), &ref); err != nil {
		return core.Achievement{}, fmt.Errorf("corrupt achievement index entry: %w", err)
	}
	data, err := s.client.HGet(ctx, achievementsKey(ref.User), string(ref.Type)).Result()
	if errors.Is(err, redis.Nil) {
		return core.Achievement{}, engine.ErrNotFound
	}
	if err != nil {
		return core.Achievement{}, fmt.Errorf("failed to load achievement: %w", err)
	}
	var a core.Achievement
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return core.Achievement{}, fmt.Errorf("corrupt achievement record: %w", err)
	}
	a.Progress = progress
	a.Completed = completed
	a.CompletedAt = completedAt
	a.UpdatedAt = time.Now().UTC()
	updated, err := json.Marshal(a)
	if err != nil {
		return core.Achievement{}, err
	}
	if err := s.client.HSet(ctx, achievementsKey(ref.User), string(ref.Type), updated).Err(); err != nil {
		return core.Achievement{}, fmt.Errorf("failed to update achievement: %w", err)
	}
	return a, nil
}

func (s *Store) ScoresByUser(ctx context.Context, user core.UserID) ([]core.Score, error) {
	items, err := s.client.LRange(ctx, scoresKey(user), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}
	out := make([]core.Score, 0, len(items))
	for _, item := range items {
		var sc core.Score
		if err := json.Unmarshal([]byte(item), &sc); err != nil {
			continue
		}
		out = append(out, sc)
	}
	return out, nil
}

func (s *Store) SaveScore(ctx context.Context, score core.Score) (core.Score, error) {
	score.ID = uuid.NewString()
	score.CreatedAt = time.Now().UTC()
	data, err := json.Marshal(score)
	if err != nil {
		return core.Score{}, err
	}
	if err := s.client.RPush(ctx, scoresKey(score.UserID), data).Err(); err != nil {
		return core.Score{}, fmt.Errorf("failed to save score: %w", err)
	}
	return score, nil
}

func (s *Store) GamesByUser(ctx context.Context, user core.UserID) ([]core.Game, error) {
	items, err := s.client.LRange(ctx, gamesKey(user), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	out := make([]core.Game, 0, len(items))
	for _, item := range items {
		var g core.Game
		if err := json.Unmarshal([]byte(item), &g); err != nil {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *Store) SaveGame(ctx context.Context, game core.Game) (core.Game, error) {
	if game.ID == "" {
		game.ID = core.GameID(uuid.NewString())
	}
	game.CreatedAt = time.Now().UTC()
	data, err := json.Marshal(game)
	if err != nil {
		return core.Game{}, err
	}
	if err := s.client.RPush(ctx, gamesKey(game.UserID), data).Err(); err != nil {
		return core.Game{}, fmt.Errorf("failed to save game: %w", err)
	}
	return game, nil
}

func (s *Store) Credits(ctx context.Context, user core.UserID) (int64, error) {
	val, err := s.client.Get(ctx, creditsKey(user)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load credits: %w", err)
	}
	return val, nil
}

// AddCredits atomically adjusts the balance with overflow protection
func (s *Store) AddCredits(ctx context.Context, user core.UserID, delta int64) (int64, error) {
	if delta == 0 {
		return 0, errors.New("delta cannot be zero")
	}
	result, err := addCreditsScript.Run(ctx, s.client, []string{creditsKey(user)}, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to add credits: %w", err)
	}
	total, ok := result.(int64)
	if !ok {
		return 0, errors.New("unexpected result type from Redis script")
	}
	return total, nil
}

var _ engine.Storage = (*Store)(nil)
