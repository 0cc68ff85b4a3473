package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/inspection-cli/internal/model"
	"github.com/sells-group/inspection-cli/internal/rules"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Dates are stored as YYYY-MM-DD text, timestamps as DATETIME.
const dateLayout = "2006-01-02"

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS contracts (
	id                  TEXT PRIMARY KEY,
	operator_id         TEXT NOT NULL,
	procurement_unit_id TEXT NOT NULL,
	description         TEXT NOT NULL DEFAULT '',
	start_date          TEXT NOT NULL,
	end_date            TEXT NOT NULL,
	rules               TEXT NOT NULL DEFAULT '[]',
	created_at          DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS inspections (
	id          TEXT PRIMARY KEY,
	operator_id TEXT NOT NULL,
	season      TEXT NOT NULL DEFAULT '',
	start_date  TEXT NOT NULL,
	end_date    TEXT NOT NULL,
	max_date    TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS execution_requirements (
	inspection_id   TEXT NOT NULL REFERENCES inspections(id) ON DELETE CASCADE,
	year            INTEGER NOT NULL,
	week            INTEGER NOT NULL,
	area            TEXT NOT NULL,
	equipment_class INTEGER NOT NULL,
	requirement     TEXT NOT NULL DEFAULT '0',
	PRIMARY KEY (inspection_id, year, week, area, equipment_class)
);

CREATE TABLE IF NOT EXISTS rule_templates (
	template    TEXT NOT NULL,
	position    INTEGER NOT NULL,
	category    TEXT NOT NULL,
	name        TEXT NOT NULL,
	condition   TEXT NOT NULL DEFAULT '',
	value       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (template, category, name)
);

CREATE INDEX IF NOT EXISTS idx_contracts_operator ON contracts(operator_id);
CREATE INDEX IF NOT EXISTS idx_contracts_procurement_unit ON contracts(procurement_unit_id);
CREATE INDEX IF NOT EXISTS idx_inspections_operator ON inspections(operator_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateContract(ctx context.Context, c model.Contract) (*model.Contract, error) {
	c.ID = uuid.New().String()
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	if c.Rules == nil {
		c.Rules = []model.ContractRule{}
	}

	rulesJSON, err := json.Marshal(c.Rules)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal rules")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contracts (id, operator_id, procurement_unit_id, description, start_date, end_date, rules, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OperatorID, c.ProcurementUnitID, c.Description,
		formatDate(c.StartDate), formatDate(c.EndDate), string(rulesJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert contract")
	}
	return &c, nil
}

const sqliteContractColumns = `id, operator_id, procurement_unit_id, description, start_date, end_date, rules, created_at, updated_at`

func (s *SQLiteStore) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteContractColumns+` FROM contracts WHERE id = ?`, id)
	c, err := scanContract(row)
	if err == sql.ErrNoRows {
		return nil, notFound("contract", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get contract %s", id)
	}
	return c, nil
}

func (s *SQLiteStore) ListContracts(ctx context.Context, filter ContractFilter) ([]model.Contract, error) {
	query := `SELECT ` + sqliteContractColumns + ` FROM contracts WHERE 1=1`
	var args []any

	if filter.OperatorID != "" {
		query += ` AND operator_id = ?`
		args = append(args, filter.OperatorID)
	}
	if filter.ProcurementUnitID != "" {
		query += ` AND procurement_unit_id = ?`
		args = append(args, filter.ProcurementUnitID)
	}
	query += ` ORDER BY created_at DESC`
	query, args = appendSQLitePaging(query, args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contracts")
	}
	defer rows.Close()

	var out []model.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contract")
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list contracts iterate")
}

func (s *SQLiteStore) UpdateContractRules(ctx context.Context, id string, rules []model.ContractRule) error {
	if rules == nil {
		rules = []model.ContractRule{}
	}
	rulesJSON, err := json.Marshal(rules)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal rules")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE contracts SET rules = ?, updated_at = ? WHERE id = ?`,
		string(rulesJSON), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update contract rules %s", id)
	}
	return checkRowsAffected(res, "contract", id)
}

func (s *SQLiteStore) CreateInspection(ctx context.Context, insp model.Inspection) (*model.Inspection, error) {
	insp.ID = uuid.New().String()
	insp.CreatedAt = time.Now().UTC()

	var maxDate any
	if !insp.MaxDate.IsZero() {
		maxDate = formatDate(insp.MaxDate)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO inspections (id, operator_id, season, start_date, end_date, max_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		insp.ID, insp.OperatorID, insp.Season, formatDate(insp.StartDate), formatDate(insp.EndDate), maxDate, insp.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert inspection")
	}
	return &insp, nil
}

const sqliteInspectionColumns = `id, operator_id, season, start_date, end_date, max_date, created_at`

func (s *SQLiteStore) GetInspection(ctx context.Context, id string) (*model.Inspection, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteInspectionColumns+` FROM inspections WHERE id = ?`, id)
	insp, err := scanInspection(row)
	if err == sql.ErrNoRows {
		return nil, notFound("inspection", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get inspection %s", id)
	}
	return insp, nil
}

func (s *SQLiteStore) ListInspections(ctx context.Context, filter InspectionFilter) ([]model.Inspection, error) {
	query := `SELECT ` + sqliteInspectionColumns + ` FROM inspections WHERE 1=1`
	var args []any
	if filter.OperatorID != "" {
		query += ` AND operator_id = ?`
		args = append(args, filter.OperatorID)
	}
	query += ` ORDER BY start_date DESC`
	query, args = appendSQLitePaging(query, args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list inspections")
	}
	defer rows.Close()

	var out []model.Inspection
	for rows.Next() {
		insp, err := scanInspection(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan inspection")
		}
		out = append(out, *insp)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list inspections iterate")
}

func (s *SQLiteStore) ListRequirements(ctx context.Context, inspectionID string) ([]model.ExecutionRequirement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT year, week, area, equipment_class, requirement FROM execution_requirements
		 WHERE inspection_id = ? ORDER BY year, week, area, equipment_class`,
		inspectionID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list requirements %s", inspectionID)
	}
	defer rows.Close()

	var out []model.ExecutionRequirement
	for rows.Next() {
		var r model.ExecutionRequirement
		var area string
		if err := rows.Scan(&r.Year, &r.Week, &area, &r.EquipmentClass, &r.Requirement); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan requirement")
		}
		r.Area = model.Area(area)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list requirements iterate")
}

func (s *SQLiteStore) ReplaceRequirements(ctx context.Context, inspectionID string, reqs []model.ExecutionRequirement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM execution_requirements WHERE inspection_id = ?`, inspectionID); err != nil {
		return eris.Wrapf(err, "sqlite: delete requirements %s", inspectionID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO execution_requirements (inspection_id, year, week, area, equipment_class, requirement)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare requirement insert")
	}
	defer stmt.Close()

	for _, r := range reqs {
		if _, err := stmt.ExecContext(ctx, inspectionID, r.Year, r.Week, string(r.Area), r.EquipmentClass, r.Requirement); err != nil {
			return eris.Wrapf(err, "sqlite: insert requirement %s", r.Key())
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit requirements")
}

func (s *SQLiteStore) UpsertRuleTemplates(ctx context.Context, templates []rules.Template) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	var n int64
	for _, t := range templates {
		if len(t.Rules) == 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM rule_templates WHERE template = ?`, t.Name); err != nil {
			return 0, eris.Wrapf(err, "sqlite: clear rule template %s", t.Name)
		}
		for i, r := range t.Rules {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO rule_templates (template, position, category, name, condition, value, description)
				 VALUES (?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT (template, category, name) DO UPDATE SET
				   position = excluded.position, condition = excluded.condition,
				   value = excluded.value, description = excluded.description`,
				t.Name, i, r.Category, r.Name, r.Condition, r.Value, r.Description,
			)
			if err != nil {
				return 0, eris.Wrapf(err, "sqlite: upsert rule template %s %s", t.Name, r.IdentityKey())
			}
			n++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit rule templates")
	}
	return n, nil
}

func (s *SQLiteStore) GetRuleTemplate(ctx context.Context, name string) (*rules.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, name, condition, value, description FROM rule_templates
		 WHERE template = ? ORDER BY position`,
		name,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get rule template %s", name)
	}
	defer rows.Close()

	t := rules.Template{Name: name}
	for rows.Next() {
		var r model.ContractRule
		if err := rows.Scan(&r.Category, &r.Name, &r.Condition, &r.Value, &r.Description); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan rule template")
		}
		t.Rules = append(t.Rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: get rule template iterate")
	}
	if len(t.Rules) == 0 {
		return nil, notFound("rule template", name)
	}
	return &t, nil
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return notFound(entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanContract(row scannable) (*model.Contract, error) {
	var c model.Contract
	var start, end, rulesJSON string
	if err := row.Scan(&c.ID, &c.OperatorID, &c.ProcurementUnitID, &c.Description,
		&start, &end, &rulesJSON, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if c.StartDate, err = parseDate(start); err != nil {
		return nil, err
	}
	if c.EndDate, err = parseDate(end); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(rulesJSON), &c.Rules); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal rules")
	}
	return &c, nil
}

func scanInspection(row scannable) (*model.Inspection, error) {
	var insp model.Inspection
	var start, end string
	var maxDate sql.NullString
	if err := row.Scan(&insp.ID, &insp.OperatorID, &insp.Season, &start, &end, &maxDate, &insp.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if insp.StartDate, err = parseDate(start); err != nil {
		return nil, err
	}
	if insp.EndDate, err = parseDate(end); err != nil {
		return nil, err
	}
	if maxDate.Valid {
		if insp.MaxDate, err = parseDate(maxDate.String); err != nil {
			return nil, err
		}
	}
	return &insp, nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	return t, eris.Wrapf(err, "sqlite: parse date %q", s)
}

func appendSQLitePaging(query string, args []any, limit, offset int) (string, []any) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if offset > 0 {
		query += ` OFFSET ?`
		args = append(args, offset)
	}
	return query, args
}
