package api

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/session"
)

type Assignment struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Course          Course    `json:"course"`
	TeacherName     string    `json:"teacher_name"`
	Deadline        time.Time `json:"deadline"`
	MaxMarks        int       `json:"max_marks"`
	SubmissionCount int       `json:"submission_count"`
	IsOverdue       bool      `json:"is_overdue"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Submission struct {
	ID            int          `json:"id"`
	Assignment    Assignment   `json:"assignment"`
	Student       session.User `json:"student"`
	Content       string       `json:"content"`
	SubmittedAt   time.Time    `json:"submitted_at"`
	MarksObtained null.Int     `json:"marks_obtained"`
	Feedback      string       `json:"feedback"`
	IsGraded      bool         `json:"is_graded"`
	IsLate        bool         `json:"is_late"`
}

// NewAssignment is the teacher's creation form.
type NewAssignment struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	CourseID    int       `json:"course_id" validate:"required"`
	Deadline    time.Time `json:"deadline" validate:"required"`
	MaxMarks    int       `json:"max_marks"`
}

func (in *NewAssignment) Validate() error {
	in.Title = core.CleanString(in.Title)
	in.Description = core.CleanString(in.Description)
	if in.MaxMarks == 0 {
		in.MaxMarks = 100
	}
	return core.Validate.Struct(in)
}

func (c *Client) Assignments(ctx context.Context) ([]Assignment, error) {
	var assignments []Assignment
	err := c.getList(ctx, "/assignments/", &assignments)
	return assignments, err
}

func (c *Client) CreateAssignment(ctx context.Context, in NewAssignment) (Assignment, error) {
	var created Assignment
	if err := in.Validate(); err != nil {
		return created, err
	}
	err := c.post(ctx, "/assignments/", in, &created)
	return created, err
}
