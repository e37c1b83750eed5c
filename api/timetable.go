package api

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/session"
)

type Room struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Capacity   int    `json:"capacity"`
	Building   string `json:"building"`
	Facilities string `json:"facilities"`
}

type TimeSlot struct {
	ID        int    `json:"id"`
	Day       string `json:"day"` // monday..sunday
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type TimetableEntry struct {
	ID           int          `json:"id"`
	Course       Course       `json:"course"`
	Teacher      session.User `json:"teacher"`
	Room         *Room        `json:"room"`
	TimeSlot     TimeSlot     `json:"time_slot"`
	Semester     int          `json:"semester"`
	AcademicYear string       `json:"academic_year"`
	CreatedAt    time.Time    `json:"created_at"`
}

type NewTimetableEntry struct {
	CourseID     int      `json:"course_id" validate:"required"`
	TeacherID    int      `json:"teacher_id" validate:"required"`
	RoomID       null.Int `json:"room_id,omitempty"`
	TimeSlotID   int      `json:"time_slot_id" validate:"required"`
	Semester     int      `json:"semester"`
	AcademicYear string   `json:"academic_year"`
}

func (in *NewTimetableEntry) Validate() error {
	if in.Semester == 0 {
		in.Semester = 1
	}
	in.AcademicYear = core.CleanString(in.AcademicYear)
	return core.Validate.Struct(in)
}

// GenerationResult is the outcome of the external timetable-generation job; the
// generation itself is a single opaque call.
type GenerationResult struct {
	ID                int       `json:"id"`
	Status            string    `json:"status"` // success|failed|partial
	CoursesScheduled  int       `json:"courses_scheduled"`
	ConflictsFound    int       `json:"conflicts_found"`
	ConflictsResolved int       `json:"conflicts_resolved"`
	ErrorMessage      string    `json:"error_message"`
	GeneratedAt       time.Time `json:"generated_at"`
}

func (c *Client) Timetable(ctx context.Context) ([]TimetableEntry, error) {
	var entries []TimetableEntry
	err := c.getList(ctx, "/timetable/", &entries)
	return entries, err
}

func (c *Client) CreateTimetableEntry(ctx context.Context, in NewTimetableEntry) (TimetableEntry, error) {
	var created TimetableEntry
	if err := in.Validate(); err != nil {
		return created, err
	}
	err := c.post(ctx, "/timetable/", in, &created)
	return created, err
}

func (c *Client) Rooms(ctx context.Context) ([]Room, error) {
	var rooms []Room
	err := c.getList(ctx, "/timetable/rooms/", &rooms)
	return rooms, err
}

func (c *Client) TimeSlots(ctx context.Context) ([]TimeSlot, error) {
	var slots []TimeSlot
	err := c.getList(ctx, "/timetable/time-slots/", &slots)
	return slots, err
}

func (c *Client) GenerateTimetable(ctx context.Context, semester int, academicYear string) (GenerationResult, error) {
	payload := struct {
		Semester     int    `json:"semester"`
		AcademicYear string `json:"academic_year"`
	}{semester, academicYear}

	var result GenerationResult
	err := c.post(ctx, "/timetable/generate/", payload, &result)
	return result, err
}
