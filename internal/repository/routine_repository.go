package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/frii-edu/examiner-api/internal/models"
)

// RoutineRepository manages the flattened class routine entries. Each row is
// one teacher/year/class/subject link and the table enforces uniqueness over
// that tuple.
type RoutineRepository struct {
	db *sqlx.DB
}

// NewRoutineRepository constructs a RoutineRepository.
func NewRoutineRepository(db *sqlx.DB) *RoutineRepository {
	return &RoutineRepository{db: db}
}

// Exists reports whether the exact routine entry is already present.
func (r *RoutineRepository) Exists(ctx context.Context, teacherID string, year int, classID, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM routine_entries WHERE teacher_id = $1 AND year = $2 AND class_id = $3 AND subject_id = $4 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, teacherID, year, classID, subjectID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check routine entry: %w", err)
	}
	return true, nil
}

// Insert adds a single routine entry.
func (r *RoutineRepository) Insert(ctx context.Context, entry *models.RoutineEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO routine_entries (id, teacher_id, year, class_id, subject_id, created_at)
		VALUES (:id, :teacher_id, :year, :class_id, :subject_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert routine entry: %w", err)
	}
	return nil
}

// UpsertForTeacherYear writes uploaded routine entries inside a transaction,
// overwriting only the exact (class, subject) pairs the upload names. Other
// entries of the same teacher and year are left untouched.
func (r *RoutineRepository) UpsertForTeacherYear(ctx context.Context, teacherID string, year int, entries []models.RoutineEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin routine upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const remove = `DELETE FROM routine_entries WHERE teacher_id = $1 AND year = $2 AND class_id = $3 AND subject_id = $4`
	const insert = `INSERT INTO routine_entries (id, teacher_id, year, class_id, subject_id, created_at)
		VALUES (:id, :teacher_id, :year, :class_id, :subject_id, :created_at)`
	now := time.Now().UTC()
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		entries[i].TeacherID = teacherID
		entries[i].Year = year
		entries[i].CreatedAt = now
		if _, err := tx.ExecContext(ctx, remove, teacherID, year, entries[i].ClassID, entries[i].SubjectID); err != nil {
			return fmt.Errorf("clear routine entry: %w", err)
		}
		if _, err := tx.NamedExecContext(ctx, insert, entries[i]); err != nil {
			return fmt.Errorf("insert routine entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit routine upsert: %w", err)
	}
	return nil
}

// FindEntryTeacher returns the owning teacher ID of a routine entry.
func (r *RoutineRepository) FindEntryTeacher(ctx context.Context, entryID string) (string, error) {
	const query = `SELECT teacher_id FROM routine_entries WHERE id = $1`
	var teacherID string
	if err := r.db.GetContext(ctx, &teacherID, query, entryID); err != nil {
		return "", err
	}
	return teacherID, nil
}

// DeleteEntry removes a single routine entry.
func (r *RoutineRepository) DeleteEntry(ctx context.Context, entryID string) error {
	const query = `DELETE FROM routine_entries WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, entryID)
	if err != nil {
		return fmt.Errorf("delete routine entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByTeacher returns a teacher's routine entries with names resolved,
// ordered by class level then subject name.
func (r *RoutineRepository) ListByTeacher(ctx context.Context, teacherID string, year int) ([]models.RoutineEntryDetail, error) {
	query := `SELECT re.id, re.teacher_id, re.year, re.class_id, c.name AS class_name, re.subject_id, s.name AS subject_name, re.created_at
		FROM routine_entries re
		JOIN classes c ON c.id = re.class_id
		JOIN subjects s ON s.id = re.subject_id
		WHERE re.teacher_id = $1`
	args := []interface{}{teacherID}
	if year > 0 {
		query += " AND re.year = $2"
		args = append(args, year)
	}
	query += " ORDER BY re.year DESC, c.level ASC, s.name ASC"

	var entries []models.RoutineEntryDetail
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list routine entries: %w", err)
	}
	return entries, nil
}

// ListForCampus returns the full routine of a year with display fields, for
// the campus routine export. An empty campusID lists every campus.
func (r *RoutineRepository) ListForCampus(ctx context.Context, campusID string, year int) ([]models.RoutineCampusRow, error) {
	query := `SELECT t.name AS teacher_name, t.teacher_id AS teacher_code, c.name AS class_name, s.name AS subject_name, re.year
		FROM routine_entries re
		JOIN teachers t ON t.id = re.teacher_id
		JOIN classes c ON c.id = re.class_id
		JOIN subjects s ON s.id = re.subject_id
		WHERE re.year = $1`
	args := []interface{}{year}
	if campusID != "" {
		query += " AND t.campus_id = $2"
		args = append(args, campusID)
	}
	query += " ORDER BY c.level ASC, s.name ASC, t.name ASC"

	var rows []models.RoutineCampusRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list campus routine: %w", err)
	}
	return rows, nil
}

// ListTeachers returns teachers that hold routine entries matching the year,
// class and subject filters, scoped to a campus when campusID is set.
func (r *RoutineRepository) ListTeachers(ctx context.Context, year int, classID, subjectID, campusID string) ([]models.RoutineTeacher, error) {
	query := `SELECT DISTINCT t.id, t.teacher_id, t.name, t.campus_id, b.name AS campus_name
		FROM routine_entries re
		JOIN teachers t ON t.id = re.teacher_id
		LEFT JOIN branches b ON b.id = t.campus_id
		WHERE re.year = $1`
	args := []interface{}{year}

	if classID != "" {
		query += fmt.Sprintf(" AND re.class_id = $%d", len(args)+1)
		args = append(args, classID)
	}
	if subjectID != "" {
		query += fmt.Sprintf(" AND re.subject_id = $%d", len(args)+1)
		args = append(args, subjectID)
	}
	if campusID != "" {
		query += fmt.Sprintf(" AND t.campus_id = $%d", len(args)+1)
		args = append(args, campusID)
	}
	query += " ORDER BY t.name ASC"

	var teachers []models.RoutineTeacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, fmt.Errorf("list routine teachers: %w", err)
	}
	return teachers, nil
}
