package family

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Family struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"size:255;not null"`
	InviteCode string    `gorm:"size:32;not null;uniqueIndex"`
	CreatedBy  string    `gorm:"type:uuid;not null;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

type Membership struct {
	FamilyID string    `gorm:"type:uuid;primaryKey"`
	UserID   string    `gorm:"type:uuid;primaryKey;index"`
	Role     string    `gorm:"type:varchar(16);not null"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

func (Membership) TableName() string {
	return "family_members"
}

func (m Membership) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// Summary is one row of the caller's family list.
type Summary struct {
	ID          string
	Name        string
	InviteCode  string
	CreatedBy   string
	CreatedAt   time.Time
	Role        string
	JoinedAt    time.Time
	MemberCount int64
	RecipeCount int64
}

type Member struct {
	UserID   string
	Name     string
	Email    string
	PhotoURL *string
	Role     string
	JoinedAt time.Time
}

type Details struct {
	Family      Family
	Role        string
	Members     []Member
	RecipeCount int64
}

type InviteLink struct {
	Code string
	Link string
}
