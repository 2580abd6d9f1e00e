package repository

import (
	"context"

	"github.com/DevFelipeRT/EduMentorBack/internal/models"
)

type CreateTeacherInput struct {
	FullName string
	Email    *string
	Phone    *string
}

type TeacherRepository struct {
	db DBTX
}

func NewTeacherRepository(db DBTX) *TeacherRepository {
	return &TeacherRepository{db: db}
}

func (r *TeacherRepository) Create(ctx context.Context, input CreateTeacherInput) (*models.Teacher, error) {
	query := `
		INSERT INTO teachers (full_name, email, phone)
		VALUES ($1, $2, $3)
		RETURNING id, full_name, email, phone, created_at, updated_at
	`
	var teacher models.Teacher
	err := r.db.QueryRow(ctx, query, input.FullName, input.Email, input.Phone).Scan(
		&teacher.ID,
		&teacher.FullName,
		&teacher.Email,
		&teacher.Phone,
		&teacher.CreatedAt,
		&teacher.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *TeacherRepository) GetByID(ctx context.Context, teacherID int64) (*models.Teacher, error) {
	query := `
		SELECT id, full_name, email, phone, created_at, updated_at
		FROM teachers
		WHERE id = $1
	`
	var teacher models.Teacher
	err := r.db.QueryRow(ctx, query, teacherID).Scan(
		&teacher.ID,
		&teacher.FullName,
		&teacher.Email,
		&teacher.Phone,
		&teacher.CreatedAt,
		&teacher.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	query := `
		SELECT id, full_name, email, phone, created_at, updated_at
		FROM teachers
		ORDER BY full_name ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teachers := make([]models.Teacher, 0)
	for rows.Next() {
		var teacher models.Teacher
		if err := rows.Scan(
			&teacher.ID,
			&teacher.FullName,
			&teacher.Email,
			&teacher.Phone,
			&teacher.CreatedAt,
			&teacher.UpdatedAt,
		); err != nil {
			return nil, err
		}
		teachers = append(teachers, teacher)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return teachers, nil
}

func (r *TeacherRepository) Update(ctx context.Context, teacherID int64, input CreateTeacherInput) (*models.Teacher, error) {
	query := `
		UPDATE teachers
		SET full_name = $2, email = $3, phone = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING id, full_name, email, phone, created_at, updated_at
	`
	var teacher models.Teacher
	err := r.db.QueryRow(ctx, query, teacherID, input.FullName, input.Email, input.Phone).Scan(
		&teacher.ID,
		&teacher.FullName,
		&teacher.Email,
		&teacher.Phone,
		&teacher.CreatedAt,
		&teacher.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *TeacherRepository) Delete(ctx context.Context, teacherID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM teachers WHERE id = $1`, teacherID)
	return err
}
