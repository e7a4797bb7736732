package history

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
)

// Config holds ClickHouse connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "ace_estimator",
		Username: "default",
		Password: "",
	}
}

// ClickHouseStore implements Store on ClickHouse. The corpus is small but
// the collection-stats queries are analytical, which is where ClickHouse
// earns its keep.
type ClickHouseStore struct {
	conn clickhouse.Conn
	cfg  *Config
}

// NewClickHouseStore connects to ClickHouse and returns the corpus store.
func NewClickHouseStore(cfg *Config) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	return &ClickHouseStore{conn: conn, cfg: cfg}, nil
}

// Ping checks database connectivity.
func (s *ClickHouseStore) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection.
func (s *ClickHouseStore) Close() error {
	return s.conn.Close()
}

// EnsureSchema creates the historical projects table if missing.
func (s *ClickHouseStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS historical_projects (
			project_id          String,
			source_version      String,
			target_version      String,
			flow_count          Int32,
			infrastructure      String,
			has_mq              UInt8,
			has_custom_plugins  UInt8,
			estimated_days      Float64,
			actual_days         Float64,
			variance_percentage Float64,
			issues_encountered  Array(String),
			lessons_learned     String,
			complexity_score    Float64,
			created_at          DateTime
		) ENGINE = MergeTree()
		ORDER BY project_id
	`
	return s.conn.Exec(ctx, query)
}

// AddProject inserts a historical project, generating an ID when absent.
func (s *ClickHouseStore) AddProject(ctx context.Context, p Project) (string, error) {
	if p.ID == "" {
		p.ID = "PROJ_" + uuid.New().String()[:8]
	}

	query := `
		INSERT INTO historical_projects (
			project_id, source_version, target_version, flow_count,
			infrastructure, has_mq, has_custom_plugins, estimated_days,
			actual_days, variance_percentage, issues_encountered,
			lessons_learned, complexity_score, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	err := s.conn.Exec(ctx, query,
		p.ID,
		p.SourceVersion,
		p.TargetVersion,
		int32(p.FlowCount),
		p.Infrastructure,
		boolToUInt8(p.HasMQ),
		boolToUInt8(p.HasCustomPlugins),
		p.EstimatedDays,
		p.ActualDays,
		p.VariancePercentage,
		p.IssuesEncountered,
		p.LessonsLearned,
		p.ComplexityScore,
		time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert project: %w", err)
	}
	return p.ID, nil
}

// SimilarProjects pre-filters candidates by flow count range (±30% around
// the profile, widened to a floor for small projects) and ranks them with
// the deterministic similarity score.
func (s *ClickHouseStore) SimilarProjects(ctx context.Context, profile Profile, topK int) ([]Match, error) {
	minFlows := int32(float64(profile.FlowCount) * 0.7)
	maxFlows := int32(float64(profile.FlowCount) * 1.3)
	if maxFlows-minFlows < 20 {
		minFlows -= 10
		maxFlows += 10
	}

	query := `
		SELECT project_id, source_version, target_version, flow_count,
			   infrastructure, has_mq, has_custom_plugins, estimated_days,
			   actual_days, variance_percentage, issues_encountered,
			   lessons_learned, complexity_score
		FROM historical_projects
		WHERE flow_count BETWEEN ? AND ?
		ORDER BY project_id
	`
	rows, err := s.conn.Query(ctx, query, minFlows, maxFlows)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar projects: %w", err)
	}
	defer rows.Close()

	var candidates []Project
	for rows.Next() {
		var (
			p          Project
			flowCount  int32
			hasMQ      uint8
			hasPlugins uint8
		)
		if err := rows.Scan(
			&p.ID, &p.SourceVersion, &p.TargetVersion, &flowCount,
			&p.Infrastructure, &hasMQ, &hasPlugins, &p.EstimatedDays,
			&p.ActualDays, &p.VariancePercentage, &p.IssuesEncountered,
			&p.LessonsLearned, &p.ComplexityScore,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.FlowCount = int(flowCount)
		p.HasMQ = hasMQ == 1
		p.HasCustomPlugins = hasPlugins == 1
		candidates = append(candidates, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read similar projects: %w", err)
	}

	return Rank(profile, candidates, topK), nil
}

// CollectionStats aggregates corpus statistics.
func (s *ClickHouseStore) CollectionStats(ctx context.Context) (Stats, error) {
	stats := Stats{ByInfrastructure: make(map[string]int)}

	row := s.conn.QueryRow(ctx, `
		SELECT count(), avg(variance_percentage)
		FROM historical_projects
	`)
	var (
		total uint64
		avg   float64
	)
	if err := row.Scan(&total, &avg); err != nil {
		return Stats{}, fmt.Errorf("failed to read corpus totals: %w", err)
	}
	stats.TotalProjects = int(total)
	stats.AvgVariancePercentage = avg

	rows, err := s.conn.Query(ctx, `
		SELECT infrastructure, count()
		FROM historical_projects
		GROUP BY infrastructure
	`)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read infrastructure breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			infra string
			n     uint64
		)
		if err := rows.Scan(&infra, &n); err != nil {
			return Stats{}, fmt.Errorf("failed to scan infrastructure breakdown: %w", err)
		}
		stats.ByInfrastructure[infra] = int(n)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("failed to read infrastructure breakdown: %w", err)
	}

	return stats, nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
