package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"scorecard/internal/platform/db"
)

const employeeColumns = `
    e.id, COALESCE(e.user_id, ''), e.name, COALESCE(e.email, ''),
    COALESCE(e.org_unit_id, ''), COALESCE(e.sub_unit_id, ''),
    e.salary, e.salary_enc, e.currency, e.active, e.created_at, e.updated_at`

func (s *Store) scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	var salaryPlain *decimal.Decimal
	var salaryEnc []byte
	if err := row.Scan(
		&emp.ID, &emp.UserID, &emp.Name, &emp.Email, &emp.OrgUnitID, &emp.SubUnitID,
		&salaryPlain, &salaryEnc, &emp.Currency, &emp.Active, &emp.CreatedAt, &emp.UpdatedAt,
	); err != nil {
		return Employee{}, err
	}
	emp.BaseSalary = openSalary(s.Crypto, salaryEnc, salaryPlain)
	return emp, nil
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (*Employee, error) {
	emp, err := s.scanEmployee(s.DB.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees e WHERE e.id = $1`, employeeID))
	if err != nil {
		return nil, db.MapError(err, ErrEmployeeNotFound)
	}
	if err := s.attachParticipations(ctx, []*Employee{&emp}); err != nil {
		return nil, err
	}
	return &emp, nil
}

func (s *Store) GetEmployeeByUserID(ctx context.Context, userID string) (*Employee, error) {
	emp, err := s.scanEmployee(s.DB.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees e WHERE e.user_id = $1`, userID))
	if err != nil {
		return nil, db.MapError(err, ErrEmployeeNotFound)
	}
	if err := s.attachParticipations(ctx, []*Employee{&emp}); err != nil {
		return nil, err
	}
	return &emp, nil
}

// ListEmployees returns the given employees, or every active employee when
// employeeIDs is empty.
func (s *Store) ListEmployees(ctx context.Context, employeeIDs []string) ([]Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees e`
	var args []any
	if len(employeeIDs) > 0 {
		query += ` WHERE e.id = ANY($1)`
		args = append(args, employeeIDs)
	} else {
		query += ` WHERE e.active`
	}
	query += ` ORDER BY e.name, e.id`
	return s.listEmployees(ctx, query, args...)
}

func (s *Store) ListByOrgUnit(ctx context.Context, orgUnitID string) ([]Employee, error) {
	return s.listEmployees(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    WHERE e.org_unit_id = $1 AND e.active
    ORDER BY e.name, e.id
  `, orgUnitID)
}

func (s *Store) listEmployees(ctx context.Context, query string, args ...any) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*Employee, len(out))
	for i := range out {
		refs[i] = &out[i]
	}
	if err := s.attachParticipations(ctx, refs); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) attachParticipations(ctx context.Context, emps []*Employee) error {
	if len(emps) == 0 {
		return nil
	}
	byID := make(map[string]*Employee, len(emps))
	ids := make([]string, 0, len(emps))
	for _, emp := range emps {
		byID[emp.ID] = emp
		ids = append(ids, emp.ID)
	}

	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, sub_unit_id, percent
    FROM employee_participations
    WHERE employee_id = ANY($1)
    ORDER BY employee_id, sub_unit_id
  `, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var employeeID string
		var p Participation
		if err := rows.Scan(&employeeID, &p.SubUnitID, &p.Percent); err != nil {
			return err
		}
		if emp := byID[employeeID]; emp != nil {
			emp.Participations = append(emp.Participations, p)
		}
	}
	return rows.Err()
}

func (s *Store) UpsertEmployee(ctx context.Context, emp Employee) error {
	salaryPlain, salaryEnc, err := sealSalary(s.Crypto, emp.BaseSalary)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO employees (id, user_id, name, email, org_unit_id, sub_unit_id, salary, salary_enc, currency, active)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    ON CONFLICT (id) DO UPDATE SET
      user_id = EXCLUDED.user_id,
      name = EXCLUDED.name,
      email = EXCLUDED.email,
      org_unit_id = EXCLUDED.org_unit_id,
      sub_unit_id = EXCLUDED.sub_unit_id,
      salary = EXCLUDED.salary,
      salary_enc = EXCLUDED.salary_enc,
      currency = EXCLUDED.currency,
      active = EXCLUDED.active,
      updated_at = now()
  `, emp.ID, db.NullIfEmpty(emp.UserID), emp.Name, db.NullIfEmpty(emp.Email),
		db.NullIfEmpty(emp.OrgUnitID), db.NullIfEmpty(emp.SubUnitID),
		salaryPlain, salaryEnc, emp.Currency, emp.Active)
	return db.MapError(err, nil)
}

func (s *Store) ReplaceParticipations(ctx context.Context, employeeID string, parts []Participation) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM employee_participations WHERE employee_id = $1`, employeeID); err != nil {
		return err
	}
	for _, p := range parts {
		if _, err := tx.Exec(ctx, `
      INSERT INTO employee_participations (employee_id, sub_unit_id, percent)
      VALUES ($1,$2,$3)
    `, employeeID, p.SubUnitID, p.Percent); err != nil {
			return db.MapError(err, nil)
		}
	}
	return tx.Commit(ctx)
}
