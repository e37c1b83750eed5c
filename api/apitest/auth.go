package apitest

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/shule/core/session"
)

func (s *Server) register(ctx echo.Context) error {
	data := new(session.RegisterInput)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if data.Email == "" || data.Password == "" {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}
	if data.Password != data.PasswordConfirm {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"password": []string{"Password fields didn't match."}})
	}

	s.mu.Lock()
	if _, exists := s.accounts[data.Email]; exists {
		s.mu.Unlock()
		return ctx.JSON(http.StatusBadRequest, echo.Map{"email": []string{"user with this email already exists."}})
	}
	s.mu.Unlock()

	role := data.Role
	if role == "" {
		role = session.RoleStudent
	}
	usr := s.AddUser(data.Email, data.Username, data.Password, role)
	usr.FirstName = data.FirstName
	usr.LastName = data.LastName
	usr.Phone = data.Phone

	s.mu.Lock()
	s.accounts[data.Email].usr = usr
	s.mu.Unlock()

	return ctx.JSON(http.StatusCreated, session.Session{Token: s.TokenFor(data.Email), User: usr})
}

func (s *Server) login(ctx echo.Context) error {
	data := new(struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	})
	if err := ctx.Bind(data); err != nil {
		return err
	}

	s.mu.Lock()
	acct, ok := s.accounts[data.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(data.Password)) != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid email or password."})
	}
	return ctx.JSON(http.StatusOK, session.Session{Token: s.TokenFor(data.Email), User: acct.usr})
}

func (s *Server) logout(ctx echo.Context) error {
	if s.FailLogout {
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "token store unavailable"})
	}
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	s.RevokeToken(header[len("Bearer "):])
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Successfully logged out."})
}

func (s *Server) me(ctx echo.Context) error {
	if s.FailMe {
		return ctx.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	return ctx.JSON(http.StatusOK, contextUser(ctx))
}

func (s *Server) forgotPassword(ctx echo.Context) error {
	data := new(struct {
		Email string `json:"email"`
	})
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if data.Email == "" {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "Email is required."})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if acct, ok := s.accounts[data.Email]; ok {
		s.resetTokens[strconv.Itoa(acct.usr.ID)] = uuid.New().String()
		return ctx.JSON(http.StatusOK, echo.Map{"message": "Password reset link sent to your email."})
	}
	// do not reveal whether the email exists
	return ctx.JSON(http.StatusOK, echo.Map{"message": "If the email exists, a reset link has been sent."})
}

func (s *Server) resetPassword(ctx echo.Context) error {
	data := new(struct {
		Password  string `json:"password"`
		Password2 string `json:"password2"`
	})
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if data.Password == "" || data.Password != data.Password2 {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "Passwords do not match."})
	}

	uid, token := ctx.Param("uid"), ctx.Param("token")

	s.mu.Lock()
	defer s.mu.Unlock()
	if issued, ok := s.resetTokens[uid]; !ok || issued != token {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or expired reset link."})
	}
	delete(s.resetTokens, uid)

	for _, acct := range s.accounts {
		if strconv.Itoa(acct.usr.ID) == uid {
			hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.MinCost)
			if err != nil {
				return err
			}
			acct.passwordHash = hash
			break
		}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Password reset successfully."})
}

// ResetTokenFor exposes the issued reset token for tests.
func (s *Server) ResetTokenFor(usr session.User) (uid, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid = strconv.Itoa(usr.ID)
	return uid, s.resetTokens[uid]
}
