package repository

import (
	"context"

	"github.com/DevFelipeRT/EduMentorBack/internal/models"
)

type CreateStudentInput struct {
	FullName string
	Email    *string
	Phone    *string
}

type StudentRepository struct {
	db DBTX
}

func NewStudentRepository(db DBTX) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) Create(ctx context.Context, input CreateStudentInput) (*models.Student, error) {
	query := `
		INSERT INTO students (full_name, email, phone)
		VALUES ($1, $2, $3)
		RETURNING id, full_name, email, phone, created_at, updated_at
	`
	var student models.Student
	err := r.db.QueryRow(ctx, query, input.FullName, input.Email, input.Phone).Scan(
		&student.ID,
		&student.FullName,
		&student.Email,
		&student.Phone,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) GetByID(ctx context.Context, studentID int64) (*models.Student, error) {
	query := `
		SELECT id, full_name, email, phone, created_at, updated_at
		FROM students
		WHERE id = $1
	`
	var student models.Student
	err := r.db.QueryRow(ctx, query, studentID).Scan(
		&student.ID,
		&student.FullName,
		&student.Email,
		&student.Phone,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	query := `
		SELECT id, full_name, email, phone, created_at, updated_at
		FROM students
		ORDER BY full_name ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]models.Student, 0)
	for rows.Next() {
		var student models.Student
		if err := rows.Scan(
			&student.ID,
			&student.FullName,
			&student.Email,
			&student.Phone,
			&student.CreatedAt,
			&student.UpdatedAt,
		); err != nil {
			return nil, err
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return students, nil
}

func (r *StudentRepository) Update(ctx context.Context, studentID int64, input CreateStudentInput) (*models.Student, error) {
	query := `
		UPDATE students
		SET full_name = $2, email = $3, phone = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING id, full_name, email, phone, created_at, updated_at
	`
	var student models.Student
	err := r.db.QueryRow(ctx, query, studentID, input.FullName, input.Email, input.Phone).Scan(
		&student.ID,
		&student.FullName,
		&student.Email,
		&student.Phone,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) Delete(ctx context.Context, studentID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, studentID)
	return err
}
