package web

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/tegenaria/internal/common"
	"github.com/dmitrijs2005/tegenaria/internal/server/listing"
	"github.com/dmitrijs2005/tegenaria/internal/server/models"
)

const loginFailedMessage = "Invalid username or password."

// pageData is what every page template receives.
type pageData struct {
	User       *models.User
	Flash      string
	FlashLevel string
	Next       string
	Errors     []string
	Login      LoginForm
	Register   RegisterForm
	Table      *listing.TableView
	Status     int
	Message    string
}

// page collects the common template data. GET requests consume the pending
// flash message.
func (s *Server) page(w http.ResponseWriter, r *http.Request) pageData {
	var flash, level string
	if r.Method == http.MethodGet {
		flash, level = s.popFlash(w, r)
	}
	return pageData{
		User:       currentUser(r),
		Flash:      flash,
		FlashLevel: level,
		Next:       safeNext(r.URL.Query().Get("next")),
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "home", s.page(w, r))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form payload.")
		return
	}

	data := s.page(w, r)
	data.Login = loginFormFromRequest(r)

	if msgs := s.validate.Messages(data.Login); msgs != nil {
		s.metrics.logins.WithLabelValues("invalid_form").Inc()
		data.Errors = msgs
		s.render(w, r, http.StatusOK, "home", data)
		return
	}

	user, err := s.sessions.Authenticate(r.Context(), data.Login.Username, data.Login.Password)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) ||
			errors.Is(err, common.ErrInvalidCredentials) ||
			errors.Is(err, common.ErrUserInactive) {
			s.metrics.logins.WithLabelValues("rejected").Inc()
			data.Errors = []string{loginFailedMessage}
			s.render(w, r, http.StatusOK, "home", data)
			return
		}
		s.requestLogger(r).Error(r.Context(), "authentication failed", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	token, err := s.sessions.IssueToken(user)
	if err != nil {
		s.requestLogger(r).Error(r.Context(), "session issuance failed", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	s.metrics.logins.WithLabelValues("success").Inc()
	http.SetCookie(w, s.sessionCookie(token))

	target := data.Next
	if target == "" {
		target = "/users/"
	}
	s.redirectWithFlash(w, r, target, "You are logged in.", "success")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(r.Context(), currentUser(r))
	http.SetCookie(w, s.expiredSessionCookie())
	s.redirectWithFlash(w, r, "/", "You are logged out.", "info")
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	data := s.page(w, r)

	if r.Method != http.MethodPost {
		s.render(w, r, http.StatusOK, "register", data)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form payload.")
		return
	}

	data.Register = registerFormFromRequest(r)

	msgs, err := s.validateRegistration(r.Context(), data.Register)
	if err != nil {
		s.requestLogger(r).Error(r.Context(), "registration check failed", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Something went wrong.")
		return
	}
	if msgs != nil {
		data.Errors = msgs
		s.render(w, r, http.StatusOK, "register", data)
		return
	}

	form := data.Register
	if _, err := s.users.Create(r.Context(), form.Username, form.Email, form.Password, true); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			data.Errors = []string{fieldMessage("Username", "Username or email already registered")}
			s.render(w, r, http.StatusOK, "register", data)
			return
		}
		s.requestLogger(r).Error(r.Context(), "user creation failed", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	s.metrics.registrations.Inc()
	s.redirectWithFlash(w, r, "/", "Thank you for registering. You can now log in.", "success")
}

// validateRegistration runs the field rules and, when they pass, checks that
// the username and email are still free.
func (s *Server) validateRegistration(ctx context.Context, form RegisterForm) ([]string, error) {
	if msgs := s.validate.Messages(form); msgs != nil {
		return msgs, nil
	}

	var msgs []string

	taken, err := s.users.UsernameTaken(ctx, form.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		msgs = append(msgs, fieldMessage("Username", "Username already registered"))
	}

	taken, err = s.users.EmailTaken(ctx, form.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		msgs = append(msgs, fieldMessage("Email", "Email already registered"))
	}

	return msgs, nil
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "about", s.page(w, r))
}

func (s *Server) handleApartments(w http.ResponseWriter, r *http.Request) {
	items, err := s.apartments.ListOrdered(r.Context())
	if err != nil {
		s.requestLogger(r).Error(r.Context(), "listing apartments failed", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	table := listing.Format(listing.ApartmentColumns, items, common.ApartmentTableClasses...)

	data := s.page(w, r)
	data.Table = &table
	s.render(w, r, http.StatusOK, "apartments", data)
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "members", s.page(w, r))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.PingContext(ctx); err != nil {
			s.requestLogger(r).Warn(r.Context(), "health check failed", "error", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, "Sorry, that page does not exist.")
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	t, ok := s.pages[page]
	if !ok {
		s.requestLogger(r).Error(r.Context(), "unknown template", "template", page)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.requestLogger(r).Error(r.Context(), "template render failed", "template", page, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := pageData{User: currentUser(r), Status: status, Message: message}
	s.render(w, r, status, "error", data)
}
