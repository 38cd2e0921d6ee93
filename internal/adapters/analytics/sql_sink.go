package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/core"
)

type dialect struct {
	name      string
	driver    string
	schema    []string
	upsertSQL string
}

var sqliteDialect = dialect{
	name:   "SQLite",
	driver: "sqlite3",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS email_analytics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sender_email TEXT,
			sender_name TEXT,
			sender_domain TEXT,
			category TEXT NOT NULL,
			subcategory TEXT NOT NULL,
			tone TEXT,
			urgency TEXT,
			confidence REAL,
			word_count INTEGER,
			char_count INTEGER,
			has_attachments BOOLEAN,
			attachment_score INTEGER,
			keywords TEXT,
			processing_time_ms INTEGER,
			source TEXT,
			technical_data TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_email_analytics_created_at ON email_analytics(created_at)`,
		`CREATE TABLE IF NOT EXISTS category_stats (
			category TEXT NOT NULL,
			subcategory TEXT NOT NULL,
			total INTEGER NOT NULL DEFAULT 0,
			confidence_sum REAL NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (category, subcategory)
		)`,
	},
	upsertSQL: `
		INSERT INTO category_stats (category, subcategory, total, confidence_sum, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(category, subcategory) DO UPDATE SET
			total = total + 1,
			confidence_sum = confidence_sum + excluded.confidence_sum,
			updated_at = excluded.updated_at`,
}

var mysqlDialect = dialect{
	name:   "MySQL",
	driver: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS email_analytics (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			sender_email VARCHAR(255),
			sender_name VARCHAR(255),
			sender_domain VARCHAR(255),
			category VARCHAR(32) NOT NULL,
			subcategory VARCHAR(64) NOT NULL,
			tone VARCHAR(16),
			urgency VARCHAR(16),
			confidence DOUBLE,
			word_count INT,
			char_count INT,
			has_attachments BOOLEAN,
			attachment_score INT,
			keywords TEXT,
			processing_time_ms BIGINT,
			source VARCHAR(32),
			technical_data TEXT,
			created_at DATETIME NOT NULL,
			INDEX idx_email_analytics_created_at (created_at)
		)`,
		`CREATE TABLE IF NOT EXISTS category_stats (
			category VARCHAR(32) NOT NULL,
			subcategory VARCHAR(64) NOT NULL,
			total BIGINT NOT NULL DEFAULT 0,
			confidence_sum DOUBLE NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (category, subcategory)
		)`,
	},
	upsertSQL: `
		INSERT INTO category_stats (category, subcategory, total, confidence_sum, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON DUPLICATE KEY UPDATE
			total = total + 1,
			confidence_sum = confidence_sum + VALUES(confidence_sum),
			updated_at = VALUES(updated_at)`,
}

// CategoryStat is one row of the per-subcategory counters
type CategoryStat struct {
	Category      string
	Subcategory   string
	Total         int64
	AvgConfidence float64
}

// SQLSink stores analytics records in a SQL database
type SQLSink struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
}

// NewSQLiteSink opens or creates the analytics tables in a SQLite file
func NewSQLiteSink(path string, logger *zap.Logger) (*SQLSink, error) {
	return newSQLSink(sqliteDialect, path, logger)
}

// NewMySQLSink opens or creates the analytics tables in MySQL
func NewMySQLSink(dsn string, logger *zap.Logger) (*SQLSink, error) {
	return newSQLSink(mysqlDialect, dsn, logger)
}

func newSQLSink(d dialect, dsn string, logger *zap.Logger) (*SQLSink, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", d.name, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", d.name, err)
	}

	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create analytics schema: %w", err)
		}
	}

	return &SQLSink{db: db, dialect: d, logger: logger}, nil
}

// Record inserts the record and bumps its category counter in one transaction
func (s *SQLSink) Record(ctx context.Context, r *core.AnalyticsRecord) error {
	keywords, err := json.Marshal(r.Keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}
	technical, err := json.Marshal(r.TechnicalData)
	if err != nil {
		return fmt.Errorf("failed to encode technical data: %w", err)
	}

	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	createdAt = createdAt.UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin analytics transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO email_analytics (
			sender_email, sender_name, sender_domain, category, subcategory, tone, urgency,
			confidence, word_count, char_count, has_attachments, attachment_score, keywords,
			processing_time_ms, source, technical_data, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		nullable(r.SenderEmail), nullable(r.SenderName), nullable(r.SenderDomain),
		string(r.Category), r.Subcategory, string(r.Tone), string(r.Urgency),
		r.Confidence, r.WordCount, r.CharCount, r.HasAttachments, r.AttachmentScore, string(keywords),
		r.ProcessingTimeMs, r.Source, string(technical), createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analytics record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.dialect.upsertSQL, string(r.Category), r.Subcategory, r.Confidence, createdAt); err != nil {
		return fmt.Errorf("failed to update category stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analytics record: %w", err)
	}
	return nil
}

// CategoryStats returns the counters ordered by category and subcategory
func (s *SQLSink) CategoryStats(ctx context.Context) ([]CategoryStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, subcategory, total, confidence_sum
		FROM category_stats
		ORDER BY category, subcategory
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category stats: %w", err)
	}
	defer rows.Close()

	var stats []CategoryStat
	for rows.Next() {
		var (
			st  CategoryStat
			sum float64
		)
		if err := rows.Scan(&st.Category, &st.Subcategory, &st.Total, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan category stats: %w", err)
		}
		if st.Total > 0 {
			st.AvgConfidence = sum / float64(st.Total)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// Close closes the database connection
func (s *SQLSink) Close() error {
	return s.db.Close()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
