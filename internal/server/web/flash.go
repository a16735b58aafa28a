package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/tegenaria/internal/common"
	"github.com/dmitrijs2005/tegenaria/internal/server/auth"
)

// flashTTL bounds how long a flash survives between the redirect and the
// page that shows it.
const flashTTL = time.Minute

func (s *Server) flashCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     common.FlashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// redirectWithFlash stores message in a signed cookie and redirects to
// target. The message is shown once, on the next page rendered for a GET.
func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, message, level string) {
	if strings.TrimSpace(target) == "" {
		target = "/"
	}
	if strings.TrimSpace(message) != "" {
		tok, err := auth.NewFlashToken(message, level, s.secretKey, flashTTL)
		if err != nil {
			s.requestLogger(r).Error(r.Context(), "flash signing failed", "error", err)
		} else {
			http.SetCookie(w, s.flashCookie(tok, int(flashTTL.Seconds())))
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// popFlash returns the pending flash message and clears its cookie. Unsigned
// or expired cookies are dropped without being shown.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) (string, string) {
	c, err := r.Cookie(common.FlashCookieName)
	if err != nil {
		return "", ""
	}
	http.SetCookie(w, s.flashCookie("", -1))

	msg, level, err := auth.ParseFlashToken(c.Value, s.secretKey)
	if err != nil {
		s.requestLogger(r).Debug(r.Context(), "flash cookie rejected", "error", err)
		return "", ""
	}

	switch level {
	case "success", "info", "warning", "danger":
	default:
		level = "info"
	}
	return msg, level
}
