package store

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// StringSlice stores a string slice as a JSON column.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Account is a persisted identity record, uniquely keyed by normalized email.
// PublicID, not the storage primary key, is what clients and session tokens
// carry.
type Account struct {
	ID       uint   `gorm:"primaryKey"`
	PublicID string `gorm:"size:64;uniqueIndex;not null"`
	Email    string `gorm:"size:255;uniqueIndex;not null"`

	// PasswordHash is empty for accounts created through OAuth that never
	// set a local password. Such accounts can only sign in federated.
	PasswordHash string `gorm:"size:100"`

	// GoogleID is the provider subject id; non-empty means the account is
	// linked to Google.
	GoogleID string `gorm:"size:128;index"`

	EmailVerified           bool
	EmailVerificationToken  string `gorm:"size:64;index"`
	EmailVerificationExpiry *time.Time
	PasswordResetToken      string `gorm:"size:64;index"`
	PasswordResetExpiry     *time.Time

	// Profile fields populated by onboarding; not part of the auth
	// invariants but Phone drives the OAuth callback's onboarding check.
	Name      string     `gorm:"size:255"`
	Phone     string     `gorm:"size:32"`
	Address   string     `gorm:"size:512"`
	DOB       *time.Time `gorm:"column:dob"`
	Gender    string     `gorm:"size:16"`
	AvatarURL string     `gorm:"size:512"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Account) TableName() string { return "accounts" }

// HasPassword reports whether local signin is possible at all.
func (a *Account) HasPassword() bool { return a.PasswordHash != "" }

// HasOAuthLink reports whether the account is linked to a federated provider.
func (a *Account) HasOAuthLink() bool { return a.GoogleID != "" }

// Onboarded reports whether the account completed the onboarding form.
func (a *Account) Onboarded() bool { return a.Phone != "" }

// Post is a community feed entry. The feed itself is served elsewhere; the
// auth core only touches posts when an account deletion cascades into them.
type Post struct {
	ID       uint   `gorm:"primaryKey"`
	Content  string `gorm:"size:500;not null"`
	AuthorID string `gorm:"size:64;index;not null"` // Account.PublicID
	Likes    int
	LikedBy  StringSlice `gorm:"type:json"` // Account.PublicIDs that liked this post

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Post) TableName() string { return "posts" }
