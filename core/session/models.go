package session

import (
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

// Role is the closed set of portals a user may belong to.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

var AllRoles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// User is the identity returned by the API. The is_* flags are set by the server
// and drive UI conditionals; Role drives redirection targets.
type User struct {
	ID          int       `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	Role        Role      `json:"role"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	DateOfBirth null.Time `json:"date_of_birth"`
	IsStudent   bool      `json:"is_student"`
	IsTeacher   bool      `json:"is_teacher"`
	IsAdmin     bool      `json:"is_admin"`
}

func (u User) IsZero() bool { return u.ID == 0 && u.Email == "" }

// DashboardPath is the user's own role dashboard, the "home" they are rerouted
// to when a guarded screen rejects them.
func (u User) DashboardPath() string { return "/" + u.Role.String() + "/dashboard" }

// Session pairs the opaque auth token with the identity it authorizes.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// LoginInput is the credential-exchange form.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (in *LoginInput) Validate() error {
	in.Email = core.CleanString(in.Email, true /* lower */)
	return core.Validate.Struct(in)
}

// RegisterInput is the account-creation form; its payload shape follows the
// registration endpoint.
type RegisterInput struct {
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required,min=6,alphanum_"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password2" validate:"required,eqfield=Password"`
	Role            Role   `json:"role" validate:"required,oneof=student teacher admin"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
}

func (in *RegisterInput) Validate() error {
	in.Email = core.CleanString(in.Email, true /* lower */)
	in.Username = core.CleanString(in.Username, true /* lower */)
	in.FirstName = core.CleanString(in.FirstName)
	in.LastName = core.CleanString(in.LastName)
	return core.Validate.Struct(in)
}

// Phase tracks the session state machine. Optimistic is the persisted identity
// rendered before the startup verification settles; the verification outcome is
// the only path out of it.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseOptimistic
	PhaseVerified
	PhaseUnauthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseOptimistic:
		return "optimistic"
	case PhaseVerified:
		return "verified"
	case PhaseUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}
