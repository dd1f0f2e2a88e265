package leadstore

import (
	"context"
	"database/sql"
	"time"

	"sccjs-backend/lib/scrapers/cjs"

	_ "embed"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Store keeps a local history of scraped batches so a delivered CSV can
// be reproduced or inspected later.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// Open opens (or creates) a sqlite-backed store at path.
func Open(path string) (Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	_, err = database.Exec(Schema)
	if err != nil {
		database.Close()
		return Store{}, err
	}
	return Store{db: database}, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

// Push records one scraped batch, all rows stamped with the same scrape
// time, in a single transaction.
func (s Store) Push(ctx context.Context, at time.Time, records []cjs.HearingRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range records {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO hearing_records (
				scraped_at, hearing_date, hearing_type, judge_name,
				defendant_case_type, charges, case_number, defendant_name,
				defendant_address, defendant_has_attorney, hearing_details
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			at.Unix(),
			r.HearingDate,
			r.HearingType,
			r.JudgeName,
			r.DefendantCaseType,
			r.Charges,
			r.CaseNumber,
			r.DefendantName,
			r.DefendantAddress,
			r.DefendantHasAttorney,
			r.HearingDetails,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Pull returns every record scraped at or after since, in insertion
// order.
func (s Store) Pull(ctx context.Context, since time.Time) ([]cjs.HearingRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT hearing_date, hearing_type, judge_name,
			defendant_case_type, charges, case_number, defendant_name,
			defendant_address, defendant_has_attorney, hearing_details
		FROM hearing_records
		WHERE scraped_at >= ?
		ORDER BY id`,
		since.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []cjs.HearingRecord
	for rows.Next() {
		var r cjs.HearingRecord
		err := rows.Scan(
			&r.HearingDate,
			&r.HearingType,
			&r.JudgeName,
			&r.DefendantCaseType,
			&r.Charges,
			&r.CaseNumber,
			&r.DefendantName,
			&r.DefendantAddress,
			&r.DefendantHasAttorney,
			&r.HearingDetails,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
