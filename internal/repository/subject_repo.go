package repository

import (
	"context"

	"github.com/DevFelipeRT/EduMentorBack/internal/models"
)

type SubjectRepository struct {
	db DBTX
}

func NewSubjectRepository(db DBTX) *SubjectRepository {
	return &SubjectRepository{db: db}
}

func (r *SubjectRepository) Create(ctx context.Context, name string) (*models.Subject, error) {
	query := `
		INSERT INTO subjects (name)
		VALUES ($1)
		RETURNING id, name, created_at, updated_at
	`
	var subject models.Subject
	err := r.db.QueryRow(ctx, query, name).Scan(
		&subject.ID,
		&subject.Name,
		&subject.CreatedAt,
		&subject.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *SubjectRepository) GetByID(ctx context.Context, subjectID int64) (*models.Subject, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM subjects
		WHERE id = $1
	`
	var subject models.Subject
	err := r.db.QueryRow(ctx, query, subjectID).Scan(
		&subject.ID,
		&subject.Name,
		&subject.CreatedAt,
		&subject.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM subjects
		ORDER BY name ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := make([]models.Subject, 0)
	for rows.Next() {
		var subject models.Subject
		if err := rows.Scan(
			&subject.ID,
			&subject.Name,
			&subject.CreatedAt,
			&subject.UpdatedAt,
		); err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subjects, nil
}

func (r *SubjectRepository) Update(ctx context.Context, subjectID int64, name string) (*models.Subject, error) {
	query := `
		UPDATE subjects
		SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, created_at, updated_at
	`
	var subject models.Subject
	err := r.db.QueryRow(ctx, query, subjectID, name).Scan(
		&subject.ID,
		&subject.Name,
		&subject.CreatedAt,
		&subject.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *SubjectRepository) Delete(ctx context.Context, subjectID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, subjectID)
	return err
}
