package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Vamsibolem10/Mini-Researcher/internal/store"
)

type PostgresStore struct {
	db *sql.DB
}

var openDB = sql.Open

func New(conn string) (*PostgresStore, error) {
	db, err := openDB("pgx", conn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := verifySchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

func verifySchema(ctx context.Context, db *sql.DB) error {
	required := []string{
		"research_records",
	}
	for _, table := range required {
		var regclass sql.NullString
		if err := db.QueryRowContext(ctx, "SELECT to_regclass($1)", fmt.Sprintf("public.%s", table)).Scan(&regclass); err != nil {
			return err
		}
		if !regclass.Valid {
			return fmt.Errorf("database schema missing: %s table not found (run migrations/001_init.sql)", table)
		}
	}
	return nil
}

func (p *PostgresStore) SaveRecord(ctx context.Context, record store.ResearchRecord) error {
	answers := record.Answers
	if answers == nil {
		answers = []store.Answer{}
	}
	answersBytes, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO research_records (
			id,
			session_id,
			query,
			mode,
			breadth,
			depth,
			answers,
			result,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			result = EXCLUDED.result,
			answers = EXCLUDED.answers
	`
	_, err = p.db.ExecContext(
		ctx,
		query,
		record.ID,
		nullString(record.SessionID),
		record.Query,
		record.Mode,
		record.Breadth,
		record.Depth,
		answersBytes,
		record.Result,
		parseTimestampValue(record.CreatedAt),
	)
	return err
}

func (p *PostgresStore) GetRecord(ctx context.Context, recordID string) (*store.ResearchRecord, error) {
	const query = `
		SELECT id, session_id, query, mode, breadth, depth, answers, result, created_at
		FROM research_records
		WHERE id = $1
	`
	record, err := scanRecord(p.db.QueryRowContext(ctx, query, recordID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (p *PostgresStore) ListRecords(ctx context.Context, limit int) ([]store.ResearchRecord, error) {
	query := `
		SELECT id, session_id, query, mode, breadth, depth, answers, result, created_at
		FROM research_records
		ORDER BY created_at DESC, id ASC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []store.ResearchRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *PostgresStore) DeleteRecord(ctx context.Context, recordID string) error {
	_, err := p.db.ExecContext(ctx, "DELETE FROM research_records WHERE id = $1", recordID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (store.ResearchRecord, error) {
	var record store.ResearchRecord
	var sessionID sql.NullString
	var answersBytes []byte
	var createdAt time.Time
	if err := row.Scan(
		&record.ID,
		&sessionID,
		&record.Query,
		&record.Mode,
		&record.Breadth,
		&record.Depth,
		&answersBytes,
		&record.Result,
		&createdAt,
	); err != nil {
		return store.ResearchRecord{}, err
	}
	if sessionID.Valid {
		record.SessionID = sessionID.String
	}
	record.Answers = decodeAnswers(answersBytes)
	record.CreatedAt = createdAt.UTC().Format(time.RFC3339Nano)
	return record, nil
}

func parseTimestampValue(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(value))
	if err != nil {
		return time.Now().UTC()
	}
	return parsed.UTC()
}

func nullString(value string) any {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return value
}

func decodeAnswers(raw []byte) []store.Answer {
	if len(raw) == 0 {
		return nil
	}
	values := []store.Answer{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	if len(values) == 0 {
		return nil
	}
	return values
}
