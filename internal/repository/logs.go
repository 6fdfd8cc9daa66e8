package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/akave-ai/seclog/internal/model"
)

// RecentLimit is the number of rows returned by Recent.
const RecentLimit = 50

// DB is the connection provider. *pgxpool.Pool satisfies it; every call
// acquires its own connection and gives it back when the transaction or rows
// are closed.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LogRepository writes and reads the logs table.
type LogRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewLogRepository returns a LogRepository using the given connection provider.
func NewLogRepository(db DB, logger zerolog.Logger) *LogRepository {
	return &LogRepository{db: db, logger: logger.With().Str("component", "repository").Logger()}
}

const insertLogSQL = `INSERT INTO logs (log_type, message, data, timestamp) VALUES ($1, $2, $3, $4)`

// WriteBatch inserts records in order inside one transaction. Either all of
// them are committed or, on any error, the transaction is rolled back and
// nothing is stored.
func (r *LogRepository) WriteBatch(ctx context.Context, records []model.LogRecord) (n int, err error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.logger.Error().Err(rbErr).Msg("rollback log batch")
		}
	}()

	for i, rec := range records {
		if _, err = tx.Exec(ctx, insertLogSQL, rec.LogType, rec.Message, rec.Data, rec.Timestamp); err != nil {
			return 0, fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}

const recentLogsSQL = `
		SELECT id, log_type, message, data, timestamp, received_at
		FROM logs
		ORDER BY id DESC
		LIMIT $1`

// Recent returns the newest RecentLimit entries, newest first. Stored payloads
// are decoded; a payload that is not valid JSON is replaced by
// model.DataDecodeError for that row only.
func (r *LogRepository) Recent(ctx context.Context) ([]model.StoredLogEntry, error) {
	rows, err := r.db.Query(ctx, recentLogsSQL, RecentLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]model.StoredLogEntry, 0, RecentLimit)
	for rows.Next() {
		var (
			e    model.StoredLogEntry
			data pgtype.Text
		)
		if err := rows.Scan(
			&e.ID,
			&e.LogType,
			&e.Message,
			&data,
			&e.Timestamp,
			&e.ReceivedAt,
		); err != nil {
			return nil, err
		}
		switch {
		case !data.Valid:
		case data.String == "":
			e.Data = ""
		default:
			e.Data = r.decodeData(e.ID, data.String)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *LogRepository) decodeData(id int64, raw string) any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	err := dec.Decode(&v)
	if err == nil {
		if extra := dec.Decode(&struct{}{}); !errors.Is(extra, io.EOF) {
			err = errors.New("trailing data after JSON value")
		}
	}
	if err != nil {
		r.logger.Warn().Err(err).Int64("id", id).Msg("stored data is not valid JSON")
		return model.DataDecodeError
	}
	return v
}
