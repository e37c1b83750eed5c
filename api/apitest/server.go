// Package apitest provides an in-process fake of the remote school-management
// service for integration tests: in-memory accounts with bcrypt passwords,
// opaque tokens and the full REST surface the client consumes.
package apitest

import (
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/shule/api"
	"github.com/trezcool/shule/core/session"
)

const ctxAccountKey = "account"

type account struct {
	usr          session.User
	passwordHash []byte
}

type Server struct {
	app *echo.Echo

	mu       sync.Mutex
	accounts map[string]*account // by email
	tokens   map[string]*account
	nextID   int

	assignments   []api.Assignment
	announcements []api.Announcement
	leaves        []api.LeaveRequest
	exams         []api.Exam
	timetable     []api.TimetableEntry
	rooms         []api.Room
	timeSlots     []api.TimeSlot

	resetTokens map[string]string // uid -> token, issued by forgot-password

	// failure knobs
	FailLogout bool
	FailMe     bool
}

var _ http.Handler = (*Server)(nil)

func NewServer() *Server {
	s := &Server{
		app:         echo.New(),
		accounts:    make(map[string]*account),
		tokens:      make(map[string]*account),
		resetTokens: make(map[string]string),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.HideBanner = true

	s.app.POST("/api/auth/register", s.register)
	s.app.POST("/api/auth/login", s.login)
	s.app.POST("/api/auth/forgot-password", s.forgotPassword)
	s.app.POST("/api/auth/reset-password/:uid/:token", s.resetPassword)

	ag := s.app.Group("/api", s.tokenMiddleware)
	ag.POST("/auth/logout", s.logout)
	ag.GET("/auth/me", s.me)

	ag.GET("/dashboard/:role", s.dashboard)

	ag.GET("/assignments", s.listAssignments)
	ag.POST("/assignments", s.createAssignment, roleMiddleware(session.RoleTeacher))
	ag.GET("/announcements", s.listAnnouncements)
	ag.POST("/announcements", s.createAnnouncement, roleMiddleware(session.RoleTeacher, session.RoleAdmin))
	ag.GET("/leave", s.listLeaves)
	ag.POST("/leave", s.createLeave, roleMiddleware(session.RoleStudent))
	ag.POST("/leave/:id/approve", s.approveLeave, roleMiddleware(session.RoleAdmin, session.RoleTeacher))
	ag.POST("/leave/:id/reject", s.rejectLeave, roleMiddleware(session.RoleAdmin, session.RoleTeacher))
	ag.GET("/exams", s.listExams)
	ag.POST("/exams", s.createExam, roleMiddleware(session.RoleTeacher))
	ag.GET("/timetable", s.listTimetable)
	ag.POST("/timetable", s.createTimetableEntry, roleMiddleware(session.RoleAdmin))
	ag.GET("/timetable/rooms", s.listRooms)
	ag.GET("/timetable/time-slots", s.listTimeSlots)
	ag.POST("/timetable/generate", s.generateTimetable, roleMiddleware(session.RoleAdmin))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

// tokenMiddleware resolves the bearer token to an account.
func (s *Server) tokenMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		header := ctx.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"error": "user not authenticated"})
		}

		s.mu.Lock()
		acct, ok := s.tokens[strings.TrimPrefix(header, "Bearer ")]
		s.mu.Unlock()
		if !ok {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}
		ctx.Set(ctxAccountKey, acct)
		return next(ctx)
	}
}

func roleMiddleware(roles ...session.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr := contextUser(ctx)
			for _, role := range roles {
				if usr.Role == role {
					return next(ctx)
				}
			}
			return ctx.JSON(http.StatusForbidden, echo.Map{"error": "Permission denied."})
		}
	}
}

func contextUser(ctx echo.Context) session.User {
	if acct, ok := ctx.Get(ctxAccountKey).(*account); ok {
		return acct.usr
	}
	return session.User{}
}

// AddUser seeds an account and returns its identity.
func (s *Server) AddUser(email, username, password string, role session.Role) session.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	usr := session.User{
		ID:        s.nextID,
		Email:     email,
		Username:  username,
		Role:      role,
		IsStudent: role == session.RoleStudent,
		IsTeacher: role == session.RoleTeacher,
		IsAdmin:   role == session.RoleAdmin,
	}
	s.accounts[email] = &account{usr: usr, passwordHash: hash}
	return usr
}

// TokenFor issues a valid token for a seeded account.
func (s *Server) TokenFor(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[email]
	if !ok {
		panic("apitest: no such account: " + email)
	}
	token := uuid.New().String()
	s.tokens[token] = acct
	return token
}

// RevokeToken invalidates a previously issued token (an "expired" session).
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

func (s *Server) newID() int {
	s.nextID++
	return s.nextID
}
