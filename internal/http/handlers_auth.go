package http

import (
	"net/http"

	"pennypal/internal/core"
	"pennypal/internal/log"
	"pennypal/internal/services"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User      core.User `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt string    `json:"expires_at"`
}

// startSession issues a token, sets the cookie and writes the session body.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, status int, u core.User) {
	token, exp, err := s.sessions.Issue(u.ID)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	s.sessions.SetCookie(w, token, exp)
	NewResponse().Status(status).Data(sessionResponse{
		User:      u,
		Token:     token,
		ExpiresAt: exp.UTC().Format("2006-01-02T15:04:05Z"),
	}).Write(w)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	u, err := s.svc.Users.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	log.FromContext(r.Context()).WithComponent(log.ComponentAuth).InfoContext(r.Context(), "User registered", log.FieldUserID, u.ID)
	s.startSession(w, r, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	u, err := s.svc.Users.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		if core.OutcomeOf(err) == core.OutcomeUnauthorized {
			UnauthorizedError("Invalid email or password").Write(w)
			return
		}
		writeError(w, r, log.OpRead, err)
		return
	}
	s.startSession(w, r, http.StatusOK, u)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	NewResponse().Data(map[string]string{"message": "Logged out"}).Write(w)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.Users.Profile(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewResponse().Data(u).Write(w)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in core.ProfileUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	u, err := s.svc.Users.UpdateProfile(r.Context(), currentUser(r), in)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	NewResponse().Data(u).Write(w)
}

func (s *Server) handleGoogleBegin(w http.ResponseWriter, r *http.Request) {
	if s.google == nil {
		NotFoundError("Google sign-in is not configured").Write(w)
		return
	}
	http.Redirect(w, r, s.google.Begin(w), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.google == nil {
		NotFoundError("Google sign-in is not configured").Write(w)
		return
	}
	logger := log.FromContext(r.Context()).WithComponent(log.ComponentAuth)

	profile, err := s.google.Complete(r.Context(), w, r)
	if err != nil {
		logger.WarnContext(r.Context(), "Google sign-in failed", log.FieldError, err)
		UnauthorizedError("Google sign-in failed").Write(w)
		return
	}
	u, err := s.svc.Users.SignInWithGoogle(r.Context(), profile)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	token, exp, err := s.sessions.Issue(u.ID)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	s.sessions.SetCookie(w, token, exp)
	logger.InfoContext(r.Context(), "Google sign-in completed", log.FieldUserID, u.ID)
	http.Redirect(w, r, s.redirect, http.StatusFound)
}
