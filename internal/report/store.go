package report

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/astocklab/astock-eval/internal/evaluator"
	"github.com/astocklab/astock-eval/internal/logger"
	"github.com/astocklab/astock-eval/internal/types"
)

// Store persists batch runs in DuckDB so past evaluations can be
// queried after the process exits. Pass ":memory:" for an ephemeral
// store.
type Store struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

func NewStore(path string, log *logger.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result store: %w", err)
	}

	store := &Store{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := store.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return store, nil
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS batch_runs (
			run_id TEXT PRIMARY KEY,
			strategy TEXT,
			start_date TIMESTAMP,
			end_date TIMESTAMP,
			total INTEGER,
			success INTEGER,
			fail INTEGER,
			created_at TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create batch_runs table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS batch_records (
			run_id TEXT,
			symbol TEXT,
			initial_cash DOUBLE,
			final_value DOUBLE,
			total_return DOUBLE,
			trade_count INTEGER,
			win_rate DOUBLE,
			max_drawdown DOUBLE,
			sharpe_ratio DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create batch_records table: %w", err)
	}

	return nil
}

// SaveBatch stores the run header and every successful record in one
// transaction.
func (s *Store) SaveBatch(result *evaluator.BatchResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	runQuery := s.sq.
		Insert("batch_runs").
		Columns("run_id", "strategy", "start_date", "end_date", "total", "success", "fail", "created_at").
		Values(result.RunID, result.StrategyName, result.Start, result.End, result.Total, result.Success, result.Fail, time.Now())

	query, args, err := runQuery.ToSql()
	if err != nil {
		tx.Rollback()

		return fmt.Errorf("failed to build run insert: %w", err)
	}

	if _, err := tx.Exec(query, args...); err != nil {
		tx.Rollback()

		return fmt.Errorf("failed to insert run %s: %w", result.RunID, err)
	}

	for _, item := range result.Records() {
		record := item.Record
		recordQuery := s.sq.
			Insert("batch_records").
			Columns("run_id", "symbol", "initial_cash", "final_value", "total_return", "trade_count", "win_rate", "max_drawdown", "sharpe_ratio").
			Values(result.RunID, item.Symbol, record.InitialCash, record.FinalValue, record.TotalReturn, record.TotalTrades, record.WinRate, record.MaxDrawdown, record.SharpeRatio)

		query, args, err := recordQuery.ToSql()
		if err != nil {
			tx.Rollback()

			return fmt.Errorf("failed to build record insert: %w", err)
		}

		if _, err := tx.Exec(query, args...); err != nil {
			tx.Rollback()

			return fmt.Errorf("failed to insert record for %s: %w", item.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch %s: %w", result.RunID, err)
	}

	return nil
}

// RunSummary is one stored batch run header.
type RunSummary struct {
	RunID     string
	Strategy  string
	Start     time.Time
	End       time.Time
	Total     int
	Success   int
	Fail      int
	CreatedAt time.Time
}

// Runs lists stored runs, newest first.
func (s *Store) Runs() ([]RunSummary, error) {
	query, args, err := s.sq.
		Select("run_id", "strategy", "start_date", "end_date", "total", "success", "fail", "created_at").
		From("batch_runs").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build runs query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary

	for rows.Next() {
		var run RunSummary
		if err := rows.Scan(&run.RunID, &run.Strategy, &run.Start, &run.End, &run.Total, &run.Success, &run.Fail, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Records returns the stored per-symbol records of one run, best return
// first.
func (s *Store) Records(runID string) ([]evaluator.RankedRecord, error) {
	query, args, err := s.sq.
		Select("symbol", "initial_cash", "final_value", "total_return", "trade_count", "win_rate", "max_drawdown", "sharpe_ratio").
		From("batch_records").
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("total_return DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build records query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []evaluator.RankedRecord

	for rows.Next() {
		record := &types.PerformanceRecord{}

		var symbol string
		if err := rows.Scan(&symbol, &record.InitialCash, &record.FinalValue, &record.TotalReturn, &record.TotalTrades, &record.WinRate, &record.MaxDrawdown, &record.SharpeRatio); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		records = append(records, evaluator.RankedRecord{Symbol: symbol, Record: record})
	}

	return records, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
