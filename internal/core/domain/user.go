package domain

import "time"

// AuthType identifies how a credential record authenticates the user.
type AuthType string

const (
	AuthTypeLocal  AuthType = "LOCAL"
	AuthTypeGoogle AuthType = "GOOGLE"
	AuthTypeNaver  AuthType = "NAVER"
	AuthTypeKakao  AuthType = "KAKAO"
)

// UserRole is the coarse authorization role attached to an account.
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

// User is the account entity as seen by the authentication core. The core
// reads it for identity and credential lookup; ownership lives elsewhere.
type User struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Role      UserRole
	CreatedAt time.Time
}

// UserAuth is a single credential record bound to a user. LOCAL records carry
// a bcrypt password hash; social records carry the provider's subject id.
type UserAuth struct {
	ID           int64
	UserID       int64
	AuthType     AuthType
	PasswordHash string
	SocialID     string
	Verified     bool
	LastUsedAt   *time.Time
}

// OAuthProvider enumerates supported social login providers.
type OAuthProvider string

const (
	ProviderGoogle OAuthProvider = "google"
	ProviderNaver  OAuthProvider = "naver"
	ProviderKakao  OAuthProvider = "kakao"
)

// OAuthUserInfo is the normalized identity extracted from a provider's
// user-info payload.
type OAuthUserInfo struct {
	Provider OAuthProvider `json:"provider"`
	SocialID string        `json:"social_id"`
	Email    string        `json:"email"`
	Name     string        `json:"name"`
}

// Valid reports whether the info carries everything signup completion needs.
func (i OAuthUserInfo) Valid() bool {
	return i.Provider != "" && i.SocialID != "" && i.Email != ""
}
