package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatherly/gatherly-api/internal/ledger"
	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gatherly/gatherly-api/internal/session"
)

// SessionInput carries the caller's cookies for operations that need a
// login. Embed it in a request struct and resolve it with requireLogin.
type SessionInput struct {
	Cookie string `header:"Cookie" doc:"Session token cookie" required:"false"`
}

// requireLogin resolves the session cookie to a logged-in user. The
// error it returns is ready to hand back to huma.
func requireLogin(sessions *session.Manager, input SessionInput) (*session.Context, models.User, error) {
	sess, ok := sessions.FromCookieHeader(input.Cookie)
	if !ok {
		return nil, models.User{}, huma.Error401Unauthorized("Not logged in")
	}
	user, ok := sess.CurrentUser()
	if !ok {
		return nil, models.User{}, huma.Error401Unauthorized("Not logged in")
	}
	return sess, user, nil
}

type SessionHandler struct {
	sessions *session.Manager
	ledger   *ledger.Ledger
}

func NewSessionHandler(sessions *session.Manager, ledger *ledger.Ledger) *SessionHandler {
	return &SessionHandler{sessions: sessions, ledger: ledger}
}

type LoginRequest struct {
	Body struct {
		Email string `json:"email" doc:"Email of an active user" required:"true"`
	}
}

type LoginResponse struct {
	SetCookie string `header:"Set-Cookie"`
	Body      struct {
		Message string      `json:"message"`
		User    models.User `json:"user"`
	}
}

// HandleLogin opens a session for the user with the given email. Unknown
// emails and deactivated users get the same answer, so the endpoint does
// not leak which addresses exist.
func (h *SessionHandler) HandleLogin(ctx context.Context, input *LoginRequest) (*LoginResponse, error) {
	sess, err := h.sessions.Open()
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to open session: " + err.Error())
	}
	if !sess.Login(input.Body.Email) {
		h.sessions.Discard(sess.ID())
		return nil, huma.Error401Unauthorized("No active user with that email")
	}

	cookie, err := h.sessions.MintCookie(sess.ID())
	if err != nil {
		h.sessions.Discard(sess.ID())
		return nil, huma.Error500InternalServerError("Failed to issue session token: " + err.Error())
	}

	user, _ := sess.CurrentUser()
	res := &LoginResponse{SetCookie: cookie.String()}
	res.Body.Message = "Logged in as " + user.FullName()
	res.Body.User = user
	return res, nil
}

type LogoutRequest struct {
	SessionInput
}

type LogoutResponse struct {
	SetCookie string `header:"Set-Cookie"`
	Body      struct {
		Message string `json:"message"`
	}
}

// HandleLogout ends the caller's session. It is idempotent: a request
// without a live session still gets its cookie cleared.
func (h *SessionHandler) HandleLogout(ctx context.Context, input *LogoutRequest) (*LogoutResponse, error) {
	if sess, ok := h.sessions.FromCookieHeader(input.Cookie); ok {
		sess.Logout()
		h.sessions.Discard(sess.ID())
	}

	res := &LogoutResponse{SetCookie: session.ExpiredCookie().String()}
	res.Body.Message = "Logged out"
	return res, nil
}

type MeRequest struct {
	SessionInput
}

type MeResponse struct {
	Body models.User
}

func (h *SessionHandler) HandleMe(ctx context.Context, input *MeRequest) (*MeResponse, error) {
	_, user, err := requireLogin(h.sessions, input.SessionInput)
	if err != nil {
		return nil, err
	}
	return &MeResponse{Body: user}, nil
}

type HistoryRequest struct {
	SessionInput
}

type HistoryResponse struct {
	Body []ledger.ChangeEntry
}

// HandleHistory returns the change log entries for the logged-in user,
// newest first, including entries for registrations since cancelled.
func (h *SessionHandler) HandleHistory(ctx context.Context, input *HistoryRequest) (*HistoryResponse, error) {
	_, user, err := requireLogin(h.sessions, input.SessionInput)
	if err != nil {
		return nil, err
	}
	return &HistoryResponse{Body: h.ledger.HistoryByUser(user.ID)}, nil
}
