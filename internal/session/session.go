// Package session wraps session tokens in the application's cookie
// policy. There is no server-side session table: logout only clears the
// cookie, so a stolen token stays valid until its embedded expiry.
package session

import (
	"net/http"

	"backend/internal/token"

	"github.com/gin-gonic/gin"
)

// CookieName is the session cookie, shared by login, Google login,
// logout and account deletion.
const CookieName = "access_token"

// Manager issues session tokens and applies the fixed cookie policy:
// HttpOnly, SameSite=Lax, Path=/, 7-day max age. The Secure flag is a
// deployment switch.
type Manager struct {
	codec  *token.Codec
	secure bool
}

func NewManager(codec *token.Codec, secure bool) *Manager {
	return &Manager{codec: codec, secure: secure}
}

// Establish issues a 7-day session token for the user and sets it as
// the session cookie on the response.
func (m *Manager) Establish(c *gin.Context, userID int64) (string, error) {
	tokenString, err := m.codec.Issue(token.KindSession, userID, token.SessionTTL)
	if err != nil {
		return "", err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, tokenString, int(token.SessionTTL.Seconds()), "/", "", m.secure, true)
	return tokenString, nil
}

// Revoke overwrites the session cookie with an immediately expiring one.
func (m *Manager) Revoke(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", m.secure, true)
}
