package models

import "time"

// AccessToken is a single-use, time-boxed credential granting session-equivalent
// access to one user, primarily for administrator bootstrap and recovery.
// Tokens are never deleted through the API; they are only marked used.
type AccessToken struct {
	BaseModel

	Token  string `gorm:"uniqueIndex;not null;size:32" json:"-"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	Used      bool       `gorm:"default:false;index" json:"used"`
	UsedAt    *time.Time `json:"used_at"`

	OriginIP    string `gorm:"size:45" json:"origin_ip"`
	Description string `gorm:"size:200" json:"description"`
}

// ExpiredAt reports whether the token is past its expiry at the given instant.
func (t *AccessToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Preview returns the first characters of the token for listings; the full
// value is only ever shown at issue time.
func (t *AccessToken) Preview() string {
	if len(t.Token) <= 8 {
		return t.Token
	}
	return t.Token[:8] + "..."
}
