package api

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"
)

// Role-specific aggregate views; shapes follow the /dashboard/{role}/ payloads.

type (
	UpcomingClass struct {
		ID         int         `json:"id"`
		Course     string      `json:"course"`
		CourseName string      `json:"course_name"`
		Teacher    string      `json:"teacher"`
		Room       null.String `json:"room"`
		Day        string      `json:"day"`
		Time       string      `json:"time"`
	}

	PendingAssignment struct {
		ID        int       `json:"id"`
		Title     string    `json:"title"`
		Course    string    `json:"course"`
		Deadline  time.Time `json:"deadline"`
		IsOverdue bool      `json:"is_overdue"`
	}

	AnnouncementBrief struct {
		ID        int       `json:"id"`
		Title     string    `json:"title"`
		Priority  string    `json:"priority"`
		CreatedAt time.Time `json:"created_at"`
	}

	ExamBrief struct {
		ID              int       `json:"id"`
		Title           string    `json:"title"`
		Course          string    `json:"course"`
		StartTime       time.Time `json:"start_time"`
		DurationMinutes int       `json:"duration_minutes"`
	}

	StudentDashboard struct {
		UpcomingClasses []UpcomingClass `json:"upcoming_classes"`
		Attendance      struct {
			Percent float64 `json:"percent"`
		} `json:"attendance"`
		PendingAssignments  []PendingAssignment `json:"pending_assignments"`
		RecentAnnouncements []AnnouncementBrief `json:"recent_announcements"`
		UnreadNotifications int                 `json:"unread_notifications"`
		UpcomingExams       []ExamBrief         `json:"upcoming_exams"`
	}

	PendingGrading struct {
		ID          int       `json:"id"`
		Assignment  string    `json:"assignment"`
		Student     string    `json:"student"`
		SubmittedAt time.Time `json:"submitted_at"`
		IsLate      bool      `json:"is_late"`
	}

	AssignmentBrief struct {
		ID              int       `json:"id"`
		Title           string    `json:"title"`
		Course          string    `json:"course"`
		Deadline        time.Time `json:"deadline"`
		SubmissionCount int       `json:"submission_count"`
	}

	TeacherDashboard struct {
		TodayClasses      []UpcomingClass   `json:"today_classes"`
		PendingGrading    []PendingGrading  `json:"pending_grading"`
		RecentAssignments []AssignmentBrief `json:"recent_assignments"`
		Stats             struct {
			CoursesTaught       int `json:"courses_taught"`
			TotalStudents       int `json:"total_students"`
			PendingGradingCount int `json:"pending_grading_count"`
		} `json:"stats"`
	}

	LeaveBrief struct {
		ID        int    `json:"id"`
		Student   string `json:"student"`
		LeaveType string `json:"leave_type"`
		StartDate Date   `json:"start_date"`
		EndDate   Date   `json:"end_date"`
		Status    string `json:"status"`
	}

	AdminDashboard struct {
		Stats struct {
			TotalStudents    int `json:"total_students"`
			TotalTeachers    int `json:"total_teachers"`
			TotalCourses     int `json:"total_courses"`
			TotalAssignments int `json:"total_assignments"`
			TotalExams       int `json:"total_exams"`
		} `json:"stats"`
		RecentLeaves        []LeaveBrief `json:"recent_leaves"`
		AttendanceAnalytics struct {
			AverageAttendance float64 `json:"average_attendance"`
			Trend             string  `json:"trend"`
		} `json:"attendance_analytics"`
		DBHealth struct {
			Status       string `json:"status"`
			TotalUsers   int    `json:"total_users"`
			TotalCourses int    `json:"total_courses"`
		} `json:"db_health"`
	}
)

func (c *Client) StudentDashboard(ctx context.Context) (StudentDashboard, error) {
	var dash StudentDashboard
	err := c.get(ctx, "/dashboard/student/", &dash)
	return dash, err
}

func (c *Client) TeacherDashboard(ctx context.Context) (TeacherDashboard, error) {
	var dash TeacherDashboard
	err := c.get(ctx, "/dashboard/teacher/", &dash)
	return dash, err
}

func (c *Client) AdminDashboard(ctx context.Context) (AdminDashboard, error) {
	var dash AdminDashboard
	err := c.get(ctx, "/dashboard/admin/", &dash)
	return dash, err
}
