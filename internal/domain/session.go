package domain

import "time"

// UserRole is the backend role of an authenticated user
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleUser   UserRole = "user"
	RoleViewer UserRole = "viewer"
)

// User mirrors the backend user read model
type User struct {
	ID                int64    `json:"id" msgpack:"id"`
	Email             string   `json:"email" msgpack:"email"`
	FullName          string   `json:"full_name" msgpack:"full_name"`
	Role              UserRole `json:"role" msgpack:"role"`
	IsActive          bool     `json:"is_active" msgpack:"is_active"`
	IsVerified        bool     `json:"is_verified" msgpack:"is_verified"`
	HasKISCredentials bool     `json:"has_kis_credentials" msgpack:"has_kis_credentials"`
	CreatedAt         string   `json:"created_at" msgpack:"created_at"`
	UpdatedAt         string   `json:"updated_at" msgpack:"updated_at"`
}

// Session is the process-wide authentication state.
// IsAuthenticated is true only when both a user and an access token are present.
type Session struct {
	User            *User     `json:"user" msgpack:"user"`
	AccessToken     string    `json:"-" msgpack:"access_token"`
	RefreshToken    string    `json:"-" msgpack:"refresh_token"`
	IsAuthenticated bool      `json:"is_authenticated" msgpack:"is_authenticated"`
	TradingMode     string    `json:"trading_mode,omitempty" msgpack:"trading_mode"`
	CreatedAt       time.Time `json:"created_at" msgpack:"created_at"`
}

// LoginRequest is the login form
type LoginRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8"`
	KISTradingMode string `json:"kis_trading_mode,omitempty" validate:"omitempty,oneof=MOCK REAL"`
}

// ValidationMessages implements MessageProvider
func (LoginRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"email":            "유효한 이메일을 입력해주세요",
		"password":         "비밀번호는 최소 8자 이상이어야 합니다",
		"kis_trading_mode": "거래 모드는 MOCK 또는 REAL 이어야 합니다",
	}
}

// RegisterRequest is the sign-up form
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,max=100"`
}

// ValidationMessages implements MessageProvider
func (RegisterRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"email":     "유효한 이메일을 입력해주세요",
		"password":  "비밀번호는 최소 8자 이상이어야 합니다",
		"full_name": "이름을 입력해주세요",
	}
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	User         *User  `json:"user"`
}
