package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/trezcool/shule/api"
	"github.com/trezcool/shule/core/session"
)

// Data screens fetch, render and optionally submit. A failed fetch is logged
// and the screen degrades to an empty rendering; it never crashes the view.

func (cli *commandLine) tabber() *tabwriter.Writer {
	return tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
}

// dashboardScreen renders the requested role variant (own role by default);
// requesting another role's dashboard reroutes to the caller's own.
func (cli *commandLine) dashboardScreen(args []string) error {
	usr, _ := cli.store.User()
	requested := usr.Role
	if len(args) > 0 {
		requested = session.Role(args[0])
		if !requested.Valid() {
			cli.printUsage()
			return errHelp
		}
	}

	verdict := session.Evaluate(cli.store.Loading(), usr, requested)
	if verdict.Decision == session.RedirectDashboard {
		requested = usr.Role
	}
	return cli.renderDashboard(requested)
}

func (cli *commandLine) renderDashboard(role session.Role) error {
	ctx := context.Background()
	switch role {
	case session.RoleTeacher:
		dash, err := cli.client.TeacherDashboard(ctx)
		if err != nil {
			cli.logger.Error("fetching teacher dashboard", err)
		}
		fmt.Fprintf(cli.out, "== Teacher dashboard ==\n")
		fmt.Fprintf(cli.out, "Courses taught: %d | Students: %d | Pending grading: %d\n",
			dash.Stats.CoursesTaught, dash.Stats.TotalStudents, dash.Stats.PendingGradingCount)
		w := cli.tabber()
		fmt.Fprintln(w, "RECENT ASSIGNMENTS\tCOURSE\tDEADLINE\tSUBMISSIONS")
		for _, ass := range dash.RecentAssignments {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", ass.Title, ass.Course, ass.Deadline.Format(time.RFC822), ass.SubmissionCount)
		}
		return w.Flush()
	case session.RoleAdmin:
		dash, err := cli.client.AdminDashboard(ctx)
		if err != nil {
			cli.logger.Error("fetching admin dashboard", err)
		}
		fmt.Fprintf(cli.out, "== Admin dashboard ==\n")
		fmt.Fprintf(cli.out, "Students: %d | Teachers: %d | Courses: %d | Assignments: %d | Exams: %d\n",
			dash.Stats.TotalStudents, dash.Stats.TotalTeachers, dash.Stats.TotalCourses,
			dash.Stats.TotalAssignments, dash.Stats.TotalExams)
		w := cli.tabber()
		fmt.Fprintln(w, "PENDING LEAVE\tTYPE\tFROM\tTO")
		for _, leave := range dash.RecentLeaves {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", leave.Student, leave.LeaveType, leave.StartDate, leave.EndDate)
		}
		return w.Flush()
	default:
		dash, err := cli.client.StudentDashboard(ctx)
		if err != nil {
			cli.logger.Error("fetching student dashboard", err)
		}
		fmt.Fprintf(cli.out, "== Student dashboard ==\n")
		fmt.Fprintf(cli.out, "Attendance: %.1f%% | Unread notifications: %d\n",
			dash.Attendance.Percent, dash.UnreadNotifications)
		w := cli.tabber()
		fmt.Fprintln(w, "PENDING ASSIGNMENTS\tCOURSE\tDEADLINE")
		for _, ass := range dash.PendingAssignments {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ass.Title, ass.Course, ass.Deadline.Format(time.RFC822))
		}
		fmt.Fprintln(w, "UPCOMING EXAMS\tCOURSE\tSTARTS")
		for _, exam := range dash.UpcomingExams {
			fmt.Fprintf(w, "%s\t%s\t%s\n", exam.Title, exam.Course, exam.StartTime.Format(time.RFC822))
		}
		return w.Flush()
	}
}

func (cli *commandLine) assignmentsScreen(args []string) error {
	fs := flag.NewFlagSet("assignments", flag.ExitOnError)
	create := fs.Bool("create", false, "Create an assignment (teachers only).")
	title := fs.String("title", "", "Assignment title.")
	description := fs.String("description", "", "Assignment description.")
	courseID := fs.Int("course", 0, "Course ID.")
	deadline := fs.String("deadline", "", "Deadline (RFC3339).")
	maxMarks := fs.Int("max-marks", 100, "Maximum marks.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	usr, _ := cli.store.User()

	if *create && usr.IsTeacher {
		due, err := time.Parse(time.RFC3339, *deadline)
		if err != nil {
			fs.Usage()
			return errHelp
		}
		in := api.NewAssignment{Title: *title, Description: *description, CourseID: *courseID, Deadline: due, MaxMarks: *maxMarks}
		if _, err := cli.client.CreateAssignment(ctx, in); err != nil {
			cli.logger.Error("creating assignment", err)
		}
	}

	assignments, err := cli.client.Assignments(ctx)
	if err != nil {
		cli.logger.Error("fetching assignments", err)
	}
	w := cli.tabber()
	fmt.Fprintln(w, "ID\tTITLE\tCOURSE\tDEADLINE\tMAX MARKS")
	for _, ass := range assignments {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", ass.ID, ass.Title, ass.Course.Code, ass.Deadline.Format(time.RFC822), ass.MaxMarks)
	}
	return w.Flush()
}

func (cli *commandLine) announcementsScreen(args []string) error {
	fs := flag.NewFlagSet("announcements", flag.ExitOnError)
	create := fs.Bool("create", false, "Post an announcement (teachers/admins only).")
	title := fs.String("title", "", "Announcement title.")
	content := fs.String("content", "", "Announcement body.")
	priority := fs.String("priority", "medium", "One of: low, medium, high, urgent.")
	audience := fs.String("audience", "all", "One of: all, students, teachers, admin.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	usr, _ := cli.store.User()

	if *create && (usr.IsTeacher || usr.IsAdmin) {
		in := api.NewAnnouncement{Title: *title, Content: *content, Priority: *priority, TargetAudience: *audience}
		if _, err := cli.client.CreateAnnouncement(ctx, in); err != nil {
			cli.logger.Error("creating announcement", err)
		}
	}

	announcements, err := cli.client.Announcements(ctx)
	if err != nil {
		cli.logger.Error("fetching announcements", err)
	}
	w := cli.tabber()
	fmt.Fprintln(w, "ID\tTITLE\tPRIORITY\tAUDIENCE\tPOSTED")
	for _, ann := range announcements {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", ann.ID, ann.Title, ann.Priority, ann.TargetAudience, ann.CreatedAt.Format(time.RFC822))
	}
	return w.Flush()
}

func (cli *commandLine) leaveScreen(args []string) error {
	fs := flag.NewFlagSet("leave", flag.ExitOnError)
	apply := fs.Bool("apply", false, "Apply for leave (students only).")
	leaveType := fs.String("type", "casual", "One of: sick, casual, emergency, other.")
	from := fs.String("from", "", "Start date (YYYY-MM-DD).")
	to := fs.String("to", "", "End date (YYYY-MM-DD).")
	reason := fs.String("reason", "", "Reason for the leave.")
	approve := fs.Int("approve", 0, "Approve a leave request by ID (admins/teachers).")
	reject := fs.Int("reject", 0, "Reject a leave request by ID (admins/teachers).")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	usr, _ := cli.store.User()

	switch {
	case *apply && usr.IsStudent:
		start, err := api.ParseDate(*from)
		if err != nil {
			fs.Usage()
			return errHelp
		}
		end, err := api.ParseDate(*to)
		if err != nil {
			fs.Usage()
			return errHelp
		}
		in := api.NewLeaveRequest{LeaveType: *leaveType, StartDate: start, EndDate: end, Reason: *reason}
		if _, err := cli.client.CreateLeaveRequest(ctx, in); err != nil {
			cli.logger.Error("creating leave request", err)
		}
	case *approve > 0 && (usr.IsAdmin || usr.IsTeacher):
		if _, err := cli.client.ApproveLeave(ctx, *approve); err != nil {
			cli.logger.Error("approving leave", err)
		}
	case *reject > 0 && (usr.IsAdmin || usr.IsTeacher):
		if _, err := cli.client.RejectLeave(ctx, *reject, *reason); err != nil {
			cli.logger.Error("rejecting leave", err)
		}
	}

	leaves, err := cli.client.LeaveRequests(ctx)
	if err != nil {
		cli.logger.Error("fetching leave requests", err)
	}
	w := cli.tabber()
	fmt.Fprintln(w, "ID\tSTUDENT\tTYPE\tFROM\tTO\tSTATUS")
	for _, leave := range leaves {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", leave.ID, leave.Student.Email, leave.LeaveType, leave.StartDate, leave.EndDate, leave.Status)
	}
	return w.Flush()
}

func (cli *commandLine) examsScreen(args []string) error {
	fs := flag.NewFlagSet("exams", flag.ExitOnError)
	create := fs.Bool("create", false, "Schedule an exam (teachers only).")
	title := fs.String("title", "", "Exam title.")
	courseID := fs.Int("course", 0, "Course ID.")
	start := fs.String("start", "", "Start time (RFC3339).")
	duration := fs.Int("duration", 60, "Duration in minutes.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	usr, _ := cli.store.User()

	if *create && usr.IsTeacher {
		startTime, err := time.Parse(time.RFC3339, *start)
		if err != nil {
			fs.Usage()
			return errHelp
		}
		in := api.NewExam{
			Title:           *title,
			CourseID:        *courseID,
			StartTime:       startTime,
			EndTime:         startTime.Add(time.Duration(*duration) * time.Minute),
			DurationMinutes: *duration,
		}
		if _, err := cli.client.CreateExam(ctx, in); err != nil {
			cli.logger.Error("creating exam", err)
		}
	}

	exams, err := cli.client.Exams(ctx)
	if err != nil {
		cli.logger.Error("fetching exams", err)
	}
	w := cli.tabber()
	fmt.Fprintln(w, "ID\tTITLE\tCOURSE\tSTARTS\tDURATION\tPUBLISHED")
	for _, exam := range exams {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%dm\t%t\n", exam.ID, exam.Title, exam.Course.Code, exam.StartTime.Format(time.RFC822), exam.DurationMinutes, exam.IsPublished)
	}
	return w.Flush()
}

func (cli *commandLine) timetableScreen(args []string) error {
	fs := flag.NewFlagSet("timetable", flag.ExitOnError)
	generate := fs.Bool("generate", false, "Trigger the timetable-generation job (admins only).")
	semester := fs.Int("semester", 1, "Semester.")
	year := fs.String("year", "2024-2025", "Academic year.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	usr, _ := cli.store.User()

	if *generate && usr.IsAdmin {
		// the generation itself is a single opaque call to an external job
		result, err := cli.client.GenerateTimetable(ctx, *semester, *year)
		if err != nil {
			cli.logger.Error("generating timetable", err)
		} else {
			fmt.Fprintf(cli.out, "Generation %s: %d scheduled, %d conflicts (%d resolved)\n",
				result.Status, result.CoursesScheduled, result.ConflictsFound, result.ConflictsResolved)
		}
	}

	entries, err := cli.client.Timetable(ctx)
	if err != nil {
		cli.logger.Error("fetching timetable", err)
	}
	w := cli.tabber()
	fmt.Fprintln(w, "ID\tCOURSE\tDAY\tTIME\tROOM")
	for _, entry := range entries {
		room := "-"
		if entry.Room != nil {
			room = entry.Room.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s-%s\t%s\n", entry.ID, entry.Course.Code, entry.TimeSlot.Day, entry.TimeSlot.StartTime, entry.TimeSlot.EndTime, room)
	}
	return w.Flush()
}
