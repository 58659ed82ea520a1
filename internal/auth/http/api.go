package http

// Request and response bodies for the auth API. Access tokens travel in
// JSON bodies and the Authorization header; the refresh token only ever
// travels in the HttpOnly cookie.

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AdminJoinRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	ClubName string `json:"club_name"`
	ClubUniv string `json:"club_univ"`
}

type UserJoinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type JoinResponse struct {
	ID string `json:"id"`
}

type AdminLoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	ClubName    string `json:"club_name"`
	ClubUniv    string `json:"club_univ,omitempty"`
}

type UserLoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Name        string `json:"name"`
}

// ReissueResponse reports the fresh access token plus how long the
// session itself has left before a full re-login is forced.
type ReissueResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

type LogoutResponse struct {
	Status string `json:"status"`
}

type AdminProfileResponse struct {
	Username string `json:"username"`
	ClubName string `json:"club_name"`
	ClubUniv string `json:"club_univ,omitempty"`
}

type UserProfileResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type HealthChecks struct {
	Database     string `json:"database"`
	SessionStore string `json:"session_store"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

const tokenTypeBearer = "Bearer"
