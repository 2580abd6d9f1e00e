package repository

import (
	"context"
	"time"

	"github.com/DevFelipeRT/EduMentorBack/internal/models"
	"github.com/jackc/pgx/v5"
)

type CreateMentorshipInput struct {
	StudentID  int64
	TeacherID  int64
	SubjectID  *int64
	HourlyRate string
	Status     string
	StartDate  *time.Time
	EndDate    *time.Time
}

type MentorshipRepository struct {
	db DBTX
}

func NewMentorshipRepository(db DBTX) *MentorshipRepository {
	return &MentorshipRepository{db: db}
}

const mentorshipColumns = `id, student_id, teacher_id, subject_id, hourly_rate::text, status, start_date, end_date, created_at, updated_at`

func scanMentorship(row pgx.Row) (*models.Mentorship, error) {
	var mentorship models.Mentorship
	err := row.Scan(
		&mentorship.ID,
		&mentorship.StudentID,
		&mentorship.TeacherID,
		&mentorship.SubjectID,
		&mentorship.HourlyRate,
		&mentorship.Status,
		&mentorship.StartDate,
		&mentorship.EndDate,
		&mentorship.CreatedAt,
		&mentorship.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &mentorship, nil
}

func (r *MentorshipRepository) Create(ctx context.Context, input CreateMentorshipInput) (*models.Mentorship, error) {
	query := `
		INSERT INTO mentorships (student_id, teacher_id, subject_id, hourly_rate, status, start_date, end_date)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
		RETURNING ` + mentorshipColumns
	return scanMentorship(r.db.QueryRow(
		ctx,
		query,
		input.StudentID,
		input.TeacherID,
		input.SubjectID,
		input.HourlyRate,
		input.Status,
		input.StartDate,
		input.EndDate,
	))
}

func (r *MentorshipRepository) GetByID(ctx context.Context, mentorshipID int64) (*models.Mentorship, error) {
	query := `
		SELECT ` + mentorshipColumns + `
		FROM mentorships
		WHERE id = $1
	`
	return scanMentorship(r.db.QueryRow(ctx, query, mentorshipID))
}

func (r *MentorshipRepository) List(ctx context.Context) ([]models.Mentorship, error) {
	query := `
		SELECT ` + mentorshipColumns + `
		FROM mentorships
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mentorships := make([]models.Mentorship, 0)
	for rows.Next() {
		mentorship, err := scanMentorship(rows)
		if err != nil {
			return nil, err
		}
		mentorships = append(mentorships, *mentorship)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return mentorships, nil
}

func (r *MentorshipRepository) Update(ctx context.Context, mentorshipID int64, input CreateMentorshipInput) (*models.Mentorship, error) {
	query := `
		UPDATE mentorships
		SET student_id = $2, teacher_id = $3, subject_id = $4, hourly_rate = $5::numeric,
			status = $6, start_date = $7, end_date = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + mentorshipColumns
	return scanMentorship(r.db.QueryRow(
		ctx,
		query,
		mentorshipID,
		input.StudentID,
		input.TeacherID,
		input.SubjectID,
		input.HourlyRate,
		input.Status,
		input.StartDate,
		input.EndDate,
	))
}

func (r *MentorshipRepository) Delete(ctx context.Context, mentorshipID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM mentorships WHERE id = $1`, mentorshipID)
	return err
}
