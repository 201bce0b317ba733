package store

import (
	"context"
	"embed"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

var ErrNotFound = errors.New("not found")

type DB struct{ *pgxpool.Pool }

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

type Run struct {
	ID        uuid.UUID      `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	EndedAt   *time.Time     `json:"ended_at"`
	DataDir   string         `json:"data_dir"`
	Filter    string         `json:"filter"`
	Boards    int            `json:"boards"`
	Passed    int            `json:"passed"`
	Failed    int            `json:"failed"`
	Kinds     map[string]int `json:"error_kinds"`
}

type RunTotals struct {
	Boards int
	Passed int
	Failed int
	Kinds  map[string]int
}

// BoardRow is one replayed board as stored.
type BoardRow struct {
	File             string   `json:"file"`
	Index            int      `json:"index"`
	OK               bool     `json:"ok"`
	Declarer         string   `json:"declarer"`
	Contract         string   `json:"contract"`
	Result           *int     `json:"result"`
	Score            string   `json:"score"`
	ExpectedDeclarer string   `json:"expected_declarer"`
	ExpectedContract string   `json:"expected_contract"`
	ExpectedResult   *int     `json:"expected_result"`
	ExpectedScore    string   `json:"expected_score"`
	Errors           []string `json:"errors"`
}

// CreateRun opens a run row and returns its id.
func (db *DB) CreateRun(ctx context.Context, dataDir, filter string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.Exec(ctx, `
		INSERT INTO replay_runs(id, data_dir, filter)
		VALUES ($1,$2,$3)
	`, id, dataDir, filter)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// InsertBoardResults writes every row in one transaction.
func (db *DB) InsertBoardResults(ctx context.Context, runID uuid.UUID, rows []BoardRow) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // safe if already committed

	for _, r := range rows {
		errs := r.Errors
		if errs == nil {
			errs = []string{}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO board_results(
				run_id, file, board_index, ok,
				declarer, contract, result, score,
				expected_declarer, expected_contract, expected_result, expected_score,
				errors
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		`, runID, r.File, r.Index, r.OK,
			r.Declarer, r.Contract, r.Result, r.Score,
			r.ExpectedDeclarer, r.ExpectedContract, r.ExpectedResult, r.ExpectedScore,
			errs); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, t RunTotals) error {
	kinds := t.Kinds
	if kinds == nil {
		kinds = map[string]int{}
	}
	tag, err := db.Exec(ctx, `
		UPDATE replay_runs
		   SET ended_at = now(),
		       boards = $2,
		       passed = $3,
		       failed = $4,
		       error_kinds = $5
		 WHERE id = $1
	`, runID, t.Boards, t.Passed, t.Failed, kinds)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const runColumns = `id, created_at, ended_at, data_dir, filter, boards, passed, failed, error_kinds`

func scanRun(row pgx.Row) (Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.CreatedAt, &r.EndedAt, &r.DataDir, &r.Filter,
		&r.Boards, &r.Passed, &r.Failed, &r.Kinds)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return r, err
}

func (db *DB) LatestRun(ctx context.Context) (Run, error) {
	return scanRun(db.QueryRow(ctx, `SELECT `+runColumns+` FROM replay_runs ORDER BY created_at DESC LIMIT 1`))
}

func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	return scanRun(db.QueryRow(ctx, `SELECT `+runColumns+` FROM replay_runs WHERE id = $1`, id))
}

// RunBoards lists a run's boards in file order, optionally only the
// failed ones.
func (db *DB) RunBoards(ctx context.Context, id uuid.UUID, onlyFailed bool) ([]BoardRow, error) {
	if _, err := db.GetRun(ctx, id); err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, `
		SELECT file, board_index, ok, declarer, contract, result, score,
		       expected_declarer, expected_contract, expected_result, expected_score,
		       errors
		  FROM board_results
		 WHERE run_id = $1 AND (NOT $2 OR NOT ok)
		 ORDER BY file, board_index
	`, id, onlyFailed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BoardRow{}
	for rows.Next() {
		var b BoardRow
		if err := rows.Scan(&b.File, &b.Index, &b.OK, &b.Declarer, &b.Contract, &b.Result, &b.Score,
			&b.ExpectedDeclarer, &b.ExpectedContract, &b.ExpectedResult, &b.ExpectedScore,
			&b.Errors); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
