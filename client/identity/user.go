package identity

import "context"

// Role represents an access level
type Role string

const (
	RoleNotLogin Role = "notLogin"
	RoleUser     Role = "user"
	RoleAdmin    Role = "admin"
)

// Rank orders roles notLogin < user < admin, unknown roles rank -1
func (r Role) Rank() int {
	switch r {
	case RoleNotLogin:
		return 0
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	}
	return -1
}

// User represents the authenticated user as returned by /user/get/info
type User struct {
	ID          int64  `json:"id,omitempty"`
	UserAccount string `json:"userAccount,omitempty"`
	UserEmail   string `json:"userEmail,omitempty"`
	UserPhone   string `json:"userPhone,omitempty"`
	UserAvatar  string `json:"userAvatar,omitempty"`
	UserProfile string `json:"userProfile,omitempty"`
	UserRole    Role   `json:"userRole"`
	UserStatus  int    `json:"userStatus,omitempty"`
	IsVip       int    `json:"isVip,omitempty"`
	InviteCode  string `json:"inviteCode,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
}

// NotLoggedIn returns the not-logged-in sentinel
func NotLoggedIn() *User {
	return &User{UserRole: RoleNotLogin}
}

// LoggedIn returns true when the user carries an authenticated role
func (u *User) LoggedIn() bool {
	return u != nil && u.UserRole != "" && u.UserRole != RoleNotLogin
}

// HasRole returns true when the user has been resolved to any role, not-logged-in included
func (u *User) HasRole() bool {
	return u != nil && u.UserRole != ""
}

// Login types accepted by /user/login
const (
	LoginAccountPassword = "ACCOUNT_PASSWORD"
	LoginPhonePassword   = "PHONE_PASSWORD"
	LoginEmailCode       = "EMAIL_CODE"
)

// LoginRequest represents /user/login payload
type LoginRequest struct {
	LoginType    string `json:"loginType"`
	UserAccount  string `json:"userAccount,omitempty"`
	UserPassword string `json:"userPassword,omitempty"`
	UserPhone    string `json:"userPhone,omitempty"`
	UserEmail    string `json:"userEmail,omitempty"`
	LoginCode    string `json:"loginCode,omitempty"`
}

type (
	// Fetcher retrieves the current identity from the API
	Fetcher interface {
		FetchIdentity(ctx context.Context) (*User, error)
	}

	// Remote represents the identity endpoints of the API
	Remote interface {
		Fetcher
		Login(ctx context.Context, request *LoginRequest) (*User, error)
		Logout(ctx context.Context) error
	}
)
