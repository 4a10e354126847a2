package modelio

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/BorisVSchmid/SimInf/internal/engine"
)

// SQLiteSink persists a finished run's dense U/V trajectory into a SQLite
// file, one row per (time point, node, compartment/variable), grounded on
// sarchlab-akita/tracing/sqlite.go's create-table-then-prepared-insert
// shape.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLiteSink creates (overwriting) the SQLite file at path and
// prepares its schema.
func OpenSQLiteSink(path string) (*SQLiteSink, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("modelio: remove %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("modelio: open %s: %w", path, err)
	}

	s := &SQLiteSink{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSink) createSchema() error {
	_, err := s.db.Exec(`
		create table if not exists u_trajectory (
			time_index int not null,
			node       int not null,
			compartment int not null,
			count      int not null
		);
		create index if not exists u_trajectory_time_index on u_trajectory (time_index);

		create table if not exists v_trajectory (
			time_index int not null,
			node       int not null,
			variable   int not null,
			value      real not null
		);
		create index if not exists v_trajectory_time_index on v_trajectory (time_index);

		create table if not exists run_info (
			run_id  text not null,
			seed    int not null,
			nthread int not null
		);
	`)
	if err != nil {
		return fmt.Errorf("modelio: create schema: %w", err)
	}
	return nil
}

// WriteRunInfo stamps the run_info table with the run's identity.
func (s *SQLiteSink) WriteRunInfo(runID string, seed uint64, nthread int) error {
	_, err := s.db.Exec(`insert into run_info (run_id, seed, nthread) values (?, ?, ?)`,
		runID, seed, nthread)
	return err
}

// WriteOutput flushes every point of out's dense U/V buffers into the
// trajectory tables, inside one transaction per table (spec §6 "Output
// sink"). out must have been built with engine.NewDenseOutput; sparse
// outputs are not supported by this sink (the in-memory sparse buffers
// are already the serialization the caller asked for).
func (s *SQLiteSink) WriteOutput(out *engine.Output) error {
	if out.U != nil {
		if err := s.writeU(out); err != nil {
			return err
		}
	}
	if out.V != nil {
		if err := s.writeV(out); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteSink) writeU(out *engine.Output) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`insert into u_trajectory (time_index, node, compartment, count) values (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	Nn, Nc, Tlen := out.Dims.Nn, out.Dims.Nc, out.Dims.Tlen
	for k := 0; k < Tlen; k++ {
		base := k * Nn * Nc
		for node := 0; node < Nn; node++ {
			for c := 0; c < Nc; c++ {
				if _, err := stmt.Exec(k, node, c, out.U[base+node*Nc+c]); err != nil {
					tx.Rollback()
					return err
				}
			}
		}
	}
	return tx.Commit()
}

func (s *SQLiteSink) writeV(out *engine.Output) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`insert into v_trajectory (time_index, node, variable, value) values (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	Nn, Nd, Tlen := out.Dims.Nn, out.Dims.Nd, out.Dims.Tlen
	for k := 0; k < Tlen; k++ {
		base := k * Nn * Nd
		for node := 0; node < Nn; node++ {
			for d := 0; d < Nd; d++ {
				if _, err := stmt.Exec(k, node, d, out.V[base+node*Nd+d]); err != nil {
					tx.Rollback()
					return err
				}
			}
		}
	}
	return tx.Commit()
}

// Close closes the underlying database handle.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
