package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/inspection-cli/internal/db"
	"github.com/sells-group/inspection-cli/internal/model"
	"github.com/sells-group/inspection-cli/internal/rules"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// Pool returns the underlying database pool.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS contracts (
	id                  TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	operator_id         TEXT NOT NULL,
	procurement_unit_id TEXT NOT NULL,
	description         TEXT NOT NULL DEFAULT '',
	start_date          DATE NOT NULL,
	end_date            DATE NOT NULL,
	rules               JSONB NOT NULL DEFAULT '[]',
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS inspections (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	operator_id TEXT NOT NULL,
	season      TEXT NOT NULL DEFAULT '',
	start_date  DATE NOT NULL,
	end_date    DATE NOT NULL,
	max_date    DATE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS execution_requirements (
	inspection_id   TEXT NOT NULL REFERENCES inspections(id) ON DELETE CASCADE,
	year            INTEGER NOT NULL,
	week            INTEGER NOT NULL CHECK (week BETWEEN 1 AND 53),
	area            TEXT NOT NULL,
	equipment_class INTEGER NOT NULL CHECK (equipment_class BETWEEN 1 AND 9),
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

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *PostgresStore) CreateContract(ctx context.Context, c model.Contract) (*model.Contract, error) {
	c.ID = uuid.New().String()
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	if c.Rules == nil {
		c.Rules = []model.ContractRule{}
	}

	rulesJSON, err := json.Marshal(c.Rules)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal rules")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO contracts (id, operator_id, procurement_unit_id, description, start_date, end_date, rules, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.OperatorID, c.ProcurementUnitID, c.Description, c.StartDate, c.EndDate, rulesJSON, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert contract")
	}
	return &c, nil
}

const contractColumns = `id, operator_id, procurement_unit_id, description, start_date, end_date, rules, created_at, updated_at`

func (s *PostgresStore) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id)
	c, err := scanPgContract(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("contract", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get contract %s", id)
	}
	return c, nil
}

func (s *PostgresStore) ListContracts(ctx context.Context, filter ContractFilter) ([]model.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE 1=1`
	var args []any

	if filter.OperatorID != "" {
		args = append(args, filter.OperatorID)
		query += ` AND operator_id = $` + strconv.Itoa(len(args))
	}
	if filter.ProcurementUnitID != "" {
		args = append(args, filter.ProcurementUnitID)
		query += ` AND procurement_unit_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`
	query, args = appendPaging(query, args, filter.Limit, filter.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contracts")
	}
	defer rows.Close()

	var out []model.Contract
	for rows.Next() {
		c, err := scanPgContract(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan contract")
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list contracts iterate")
}

func (s *PostgresStore) UpdateContractRules(ctx context.Context, id string, rules []model.ContractRule) error {
	if rules == nil {
		rules = []model.ContractRule{}
	}
	rulesJSON, err := json.Marshal(rules)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal rules")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE contracts SET rules = $1, updated_at = $2 WHERE id = $3`,
		rulesJSON, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update contract rules %s", id)
	}
	if tag.RowsAffected() == 0 {
		return notFound("contract", id)
	}
	return nil
}

func (s *PostgresStore) CreateInspection(ctx context.Context, insp model.Inspection) (*model.Inspection, error) {
	insp.ID = uuid.New().String()
	insp.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO inspections (id, operator_id, season, start_date, end_date, max_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		insp.ID, insp.OperatorID, insp.Season, insp.StartDate, insp.EndDate, nullTime(insp.MaxDate), insp.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert inspection")
	}
	return &insp, nil
}

const inspectionColumns = `id, operator_id, season, start_date, end_date, max_date, created_at`

func (s *PostgresStore) GetInspection(ctx context.Context, id string) (*model.Inspection, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+inspectionColumns+` FROM inspections WHERE id = $1`, id)
	insp, err := scanPgInspection(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("inspection", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get inspection %s", id)
	}
	return insp, nil
}

func (s *PostgresStore) ListInspections(ctx context.Context, filter InspectionFilter) ([]model.Inspection, error) {
	query := `SELECT ` + inspectionColumns + ` FROM inspections WHERE 1=1`
	var args []any
	if filter.OperatorID != "" {
		args = append(args, filter.OperatorID)
		query += ` AND operator_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY start_date DESC`
	query, args = appendPaging(query, args, filter.Limit, filter.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list inspections")
	}
	defer rows.Close()

	var out []model.Inspection
	for rows.Next() {
		insp, err := scanPgInspection(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan inspection")
		}
		out = append(out, *insp)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list inspections iterate")
}

var requirementColumns = []string{"inspection_id", "year", "week", "area", "equipment_class", "requirement"}

func (s *PostgresStore) ListRequirements(ctx context.Context, inspectionID string) ([]model.ExecutionRequirement, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT year, week, area, equipment_class, requirement FROM execution_requirements
		 WHERE inspection_id = $1 ORDER BY year, week, area, equipment_class`,
		inspectionID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list requirements %s", inspectionID)
	}
	defer rows.Close()

	var out []model.ExecutionRequirement
	for rows.Next() {
		var r model.ExecutionRequirement
		var area string
		if err := rows.Scan(&r.Year, &r.Week, &area, &r.EquipmentClass, &r.Requirement); err != nil {
			return nil, eris.Wrap(err, "postgres: scan requirement")
		}
		r.Area = model.Area(area)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list requirements iterate")
}

func (s *PostgresStore) ReplaceRequirements(ctx context.Context, inspectionID string, reqs []model.ExecutionRequirement) error {
	rows := make([][]any, len(reqs))
	for i, r := range reqs {
		rows[i] = []any{inspectionID, r.Year, r.Week, string(r.Area), r.EquipmentClass, r.Requirement}
	}
	_, err := db.ReplaceRows(ctx, s.pool, db.ReplaceConfig{
		Table:    "execution_requirements",
		Columns:  requirementColumns,
		ScopeCol: "inspection_id",
		ScopeVal: inspectionID,
	}, rows)
	return eris.Wrapf(err, "postgres: replace requirements %s", inspectionID)
}

var ruleTemplateColumns = []string{"template", "position", "category", "name", "condition", "value", "description"}

func (s *PostgresStore) UpsertRuleTemplates(ctx context.Context, templates []rules.Template) (int64, error) {
	var rows [][]any
	for _, t := range templates {
		for i, r := range t.Rules {
			rows = append(rows, []any{t.Name, i, r.Category, r.Name, r.Condition, r.Value, r.Description})
		}
	}
	res, err := db.Sync(ctx, s.pool, db.SyncConfig{
		Table:    "rule_templates",
		Columns:  ruleTemplateColumns,
		Keys:     []string{"template", "category", "name"},
		ScopeCol: "template",
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert rule templates")
	}
	return res.Upserted, nil
}

func (s *PostgresStore) GetRuleTemplate(ctx context.Context, name string) (*rules.Template, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT category, name, condition, value, description FROM rule_templates
		 WHERE template = $1 ORDER BY position`,
		name,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get rule template %s", name)
	}
	defer rows.Close()

	t := rules.Template{Name: name}
	for rows.Next() {
		var r model.ContractRule
		if err := rows.Scan(&r.Category, &r.Name, &r.Condition, &r.Value, &r.Description); err != nil {
			return nil, eris.Wrap(err, "postgres: scan rule template")
		}
		t.Rules = append(t.Rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: get rule template iterate")
	}
	if len(t.Rules) == 0 {
		return nil, notFound("rule template", name)
	}
	return &t, nil
}

func scanPgContract(row pgx.Row) (*model.Contract, error) {
	var c model.Contract
	var rulesJSON []byte
	if err := row.Scan(&c.ID, &c.OperatorID, &c.ProcurementUnitID, &c.Description,
		&c.StartDate, &c.EndDate, &rulesJSON, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rulesJSON, &c.Rules); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal rules")
	}
	return &c, nil
}

func scanPgInspection(row pgx.Row) (*model.Inspection, error) {
	var insp model.Inspection
	var maxDate *time.Time
	if err := row.Scan(&insp.ID, &insp.OperatorID, &insp.Season, &insp.StartDate,
		&insp.EndDate, &maxDate, &insp.CreatedAt); err != nil {
		return nil, err
	}
	if maxDate != nil {
		insp.MaxDate = *maxDate
	}
	return &insp, nil
}

func appendPaging(query string, args []any, limit, offset int) (string, []any) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))
	if offset > 0 {
		args = append(args, offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}
	return query, args
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
