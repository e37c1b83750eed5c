package api

import (
	"context"
	"time"

	"github.com/trezcool/shule/core"
)

type Exam struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Course          Course    `json:"course"`
	TeacherName     string    `json:"teacher_name"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	MaxMarks        int       `json:"max_marks"`
	PassingMarks    int       `json:"passing_marks"`
	IsPublished     bool      `json:"is_published"`
	AllowRetake     bool      `json:"allow_retake"`
	IsActive        bool      `json:"is_active"`
	IsUpcoming      bool      `json:"is_upcoming"`
	IsEnded         bool      `json:"is_ended"`
	CreatedAt       time.Time `json:"created_at"`
}

type NewExam struct {
	Title           string    `json:"title" validate:"required"`
	Description     string    `json:"description"`
	CourseID        int       `json:"course_id" validate:"required"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	EndTime         time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=1"`
	MaxMarks        int       `json:"max_marks"`
	PassingMarks    int       `json:"passing_marks"`
}

func (in *NewExam) Validate() error {
	in.Title = core.CleanString(in.Title)
	in.Description = core.CleanString(in.Description)
	if in.MaxMarks == 0 {
		in.MaxMarks = 100
	}
	if in.PassingMarks == 0 {
		in.PassingMarks = 40
	}
	return core.Validate.Struct(in)
}

func (c *Client) Exams(ctx context.Context) ([]Exam, error) {
	var exams []Exam
	err := c.getList(ctx, "/exams/", &exams)
	return exams, err
}

func (c *Client) CreateExam(ctx context.Context, in NewExam) (Exam, error) {
	var created Exam
	if err := in.Validate(); err != nil {
		return created, err
	}
	err := c.post(ctx, "/exams/", in, &created)
	return created, err
}
