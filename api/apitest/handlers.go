package apitest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/api"
)

// paginated mimics the service's list envelope.
func paginated(ctx echo.Context, results interface{}) error {
	return ctx.JSON(http.StatusOK, echo.Map{"count": 0, "next": nil, "previous": nil, "results": results})
}

func course(id int) api.Course {
	return api.Course{ID: id, Name: fmt.Sprintf("Course %d", id), Code: fmt.Sprintf("C%03d", id), Credits: 3}
}

// Assignments

func (s *Server) listAssignments(ctx echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assignments == nil {
		return paginated(ctx, []api.Assignment{})
	}
	return paginated(ctx, s.assignments)
}

func (s *Server) createAssignment(ctx echo.Context) error {
	data := new(api.NewAssignment)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if data.Title == "" {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"title": []string{"This field is required."}})
	}

	usr := contextUser(ctx)
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	created := api.Assignment{
		ID:          s.newID(),
		Title:       data.Title,
		Description: data.Description,
		Course:      course(data.CourseID),
		TeacherName: usr.FirstName + " " + usr.LastName,
		Deadline:    data.Deadline,
		MaxMarks:    data.MaxMarks,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.assignments = append(s.assignments, created)
	return ctx.JSON(http.StatusCreated, created)
}

// Announcements

func (s *Server) listAnnouncements(ctx echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.announcements == nil {
		return paginated(ctx, []api.Announcement{})
	}
	return paginated(ctx, s.announcements)
}

func (s *Server) createAnnouncement(ctx echo.Context) error {
	data := new(api.NewAnnouncement)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if data.Title == "" || data.Content == "" {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "title and content are required"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	created := api.Announcement{
		ID:             s.newID(),
		Title:          data.Title,
		Content:        data.Content,
		Author:         contextUser(ctx),
		Priority:       data.Priority,
		TargetAudience: data.TargetAudience,
		IsPinned:       data.IsPinned,
		CreatedAt:      time.Now().UTC(),
	}
	s.announcements = append(s.announcements, created)
	return ctx.JSON(http.StatusCreated, created)
}

// Leave requests

func (s *Server) listLeaves(ctx echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	usr := contextUser(ctx)
	leaves := make([]api.LeaveRequest, 0, len(s.leaves))
	for _, leave := range s.leaves {
		// students only see their own requests
		if usr.IsStudent && leave.Student.ID != usr.ID {
			continue
		}
		leaves = append(leaves, leave)
	}
	return paginated(ctx, leaves)
}

func (s *Server) createLeave(ctx echo.Context) error {
	data := new(api.NewLeaveRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if data.Reason == "" {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"reason": []string{"This field is required."}})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	created := api.LeaveRequest{
		ID:           s.newID(),
		Student:      contextUser(ctx),
		LeaveType:    data.LeaveType,
		StartDate:    data.StartDate,
		EndDate:      data.EndDate,
		Reason:       data.Reason,
		Status:       api.LeavePending,
		DurationDays: int(data.EndDate.Sub(data.StartDate.Time)/(24*time.Hour)) + 1,
		CreatedAt:    time.Now().UTC(),
	}
	s.leaves = append(s.leaves, created)
	return ctx.JSON(http.StatusCreated, created)
}

func (s *Server) approveLeave(ctx echo.Context) error {
	return s.transitionLeave(ctx, api.LeaveApproved, "")
}

func (s *Server) rejectLeave(ctx echo.Context) error {
	data := new(struct {
		RejectionReason string `json:"rejection_reason"`
	})
	if err := ctx.Bind(data); err != nil {
		return err
	}
	return s.transitionLeave(ctx, api.LeaveRejected, data.RejectionReason)
}

func (s *Server) transitionLeave(ctx echo.Context, status, rejectionReason string) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	usr := contextUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.leaves {
		if s.leaves[i].ID != id {
			continue
		}
		s.leaves[i].Status = status
		s.leaves[i].ApprovedByName = null.StringFrom(usr.FirstName + " " + usr.LastName)
		s.leaves[i].RejectionReason = rejectionReason
		return ctx.JSON(http.StatusOK, s.leaves[i])
	}
	return ctx.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
}

// Exams

func (s *Server) listExams(ctx echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exams == nil {
		return paginated(ctx, []api.Exam{})
	}
	return paginated(ctx, s.exams)
}

func (s *Server) createExam(ctx echo.Context) error {
	data := new(api.NewExam)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if data.Title == "" {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"title": []string{"This field is required."}})
	}

	usr := contextUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	created := api.Exam{
		ID:              s.newID(),
		Title:           data.Title,
		Description:     data.Description,
		Course:          course(data.CourseID),
		TeacherName:     usr.FirstName + " " + usr.LastName,
		StartTime:       data.StartTime,
		EndTime:         data.EndTime,
		DurationMinutes: data.DurationMinutes,
		MaxMarks:        data.MaxMarks,
		PassingMarks:    data.PassingMarks,
		IsUpcoming:      data.StartTime.After(time.Now()),
		CreatedAt:       time.Now().UTC(),
	}
	s.exams = append(s.exams, created)
	return ctx.JSON(http.StatusCreated, created)
}

// Timetable

func (s *Server) listTimetable(ctx echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timetable == nil {
		return paginated(ctx, []api.TimetableEntry{})
	}
	return paginated(ctx, s.timetable)
}

func (s *Server) createTimetableEntry(ctx echo.Context) error {
	data := new(api.NewTimetableEntry)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	created := api.TimetableEntry{
		ID:           s.newID(),
		Course:       course(data.CourseID),
		TimeSlot:     api.TimeSlot{ID: data.TimeSlotID, Day: "monday", StartTime: "09:00:00", EndTime: "10:00:00"},
		Semester:     data.Semester,
		AcademicYear: data.AcademicYear,
		CreatedAt:    time.Now().UTC(),
	}
	if data.RoomID.Valid {
		created.Room = &api.Room{ID: int(data.RoomID.Int), Name: fmt.Sprintf("Room %d", data.RoomID.Int), Capacity: 40}
	}
	s.timetable = append(s.timetable, created)
	return ctx.JSON(http.StatusCreated, created)
}

func (s *Server) listRooms(ctx echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rooms == nil {
		return paginated(ctx, []api.Room{})
	}
	return paginated(ctx, s.rooms)
}

func (s *Server) listTimeSlots(ctx echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timeSlots == nil {
		return paginated(ctx, []api.TimeSlot{})
	}
	return paginated(ctx, s.timeSlots)
}

func (s *Server) generateTimetable(ctx echo.Context) error {
	data := new(struct {
		Semester     int    `json:"semester"`
		AcademicYear string `json:"academic_year"`
	})
	if err := ctx.Bind(data); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	result := api.GenerationResult{
		ID:               s.newID(),
		Status:           "success",
		CoursesScheduled: len(s.timetable),
		GeneratedAt:      time.Now().UTC(),
	}
	return ctx.JSON(http.StatusOK, result)
}

// Dashboards

func (s *Server) dashboard(ctx echo.Context) error {
	usr := contextUser(ctx)
	role := ctx.Param("role")
	if usr.Role.String() != role {
		return ctx.JSON(http.StatusForbidden, echo.Map{"error": "Access denied."})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch role {
	case "student":
		dash := api.StudentDashboard{
			UpcomingClasses:     []api.UpcomingClass{},
			PendingAssignments:  []api.PendingAssignment{},
			RecentAnnouncements: []api.AnnouncementBrief{},
			UpcomingExams:       []api.ExamBrief{},
		}
		dash.Attendance.Percent = 85.5
		for _, ass := range s.assignments {
			dash.PendingAssignments = append(dash.PendingAssignments, api.PendingAssignment{
				ID: ass.ID, Title: ass.Title, Course: ass.Course.Code, Deadline: ass.Deadline,
			})
		}
		for _, ann := range s.announcements {
			dash.RecentAnnouncements = append(dash.RecentAnnouncements, api.AnnouncementBrief{
				ID: ann.ID, Title: ann.Title, Priority: ann.Priority, CreatedAt: ann.CreatedAt,
			})
		}
		return ctx.JSON(http.StatusOK, dash)
	case "teacher":
		dash := api.TeacherDashboard{
			TodayClasses:      []api.UpcomingClass{},
			PendingGrading:    []api.PendingGrading{},
			RecentAssignments: []api.AssignmentBrief{},
		}
		for _, ass := range s.assignments {
			dash.RecentAssignments = append(dash.RecentAssignments, api.AssignmentBrief{
				ID: ass.ID, Title: ass.Title, Course: ass.Course.Code, Deadline: ass.Deadline,
			})
		}
		dash.Stats.CoursesTaught = len(s.timetable)
		return ctx.JSON(http.StatusOK, dash)
	case "admin":
		var dash api.AdminDashboard
		dash.RecentLeaves = []api.LeaveBrief{}
		for _, acct := range s.accounts {
			switch {
			case acct.usr.IsStudent:
				dash.Stats.TotalStudents++
			case acct.usr.IsTeacher:
				dash.Stats.TotalTeachers++
			}
		}
		dash.Stats.TotalAssignments = len(s.assignments)
		dash.Stats.TotalExams = len(s.exams)
		for _, leave := range s.leaves {
			if leave.Status != api.LeavePending {
				continue
			}
			dash.RecentLeaves = append(dash.RecentLeaves, api.LeaveBrief{
				ID: leave.ID, Student: leave.Student.Email, LeaveType: leave.LeaveType,
				StartDate: leave.StartDate, EndDate: leave.EndDate, Status: leave.Status,
			})
		}
		dash.DBHealth.Status = "healthy"
		dash.DBHealth.TotalUsers = len(s.accounts)
		return ctx.JSON(http.StatusOK, dash)
	}
	return ctx.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
}
