package sessions

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Session is the Cognito token bundle the Winix APIs are authorised with.
// It is persisted under the "cognito" key of the config file.
type Session struct {
	UserID       string `json:"user_id"`            // Cognito username (USER_ID_FOR_SRP)
	AccessToken  string `json:"access_token"`       // Short-lived JWT, sent to the Winix mobile API
	RefreshToken string `json:"refresh_token"`      // Long-lived opaque token used by login --refresh
	IDToken      string `json:"id_token,omitempty"` // OIDC ID token, not required by any call
}

// Complete reports whether every required field is populated. A Session that
// is not complete must never be persisted.
func (s *Session) Complete() bool {
	return s != nil && s.UserID != "" && s.AccessToken != "" && s.RefreshToken != ""
}

// Expiry returns the "exp" claim of the access token. The token is decoded
// without verification; a zero time is returned when it cannot be decoded
// or carries no expiry.
func (s *Session) Expiry() time.Time {
	if s == nil || s.AccessToken == "" {
		return time.Time{}
	}
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Token exposes the session as an oauth2 token so callers can use Valid().
func (s *Session) Token() *oauth2.Token {
	if s == nil {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       s.Expiry(),
	}
}
