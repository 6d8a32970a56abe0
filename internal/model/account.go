package model

// Account roles.
const (
	RoleAdmin    = "admin"
	RoleLecturer = "lecturer"
	RoleStudent  = "student"
)

// Account portal login (accounts).
type Account struct {
	AccountID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"account_id"`
	Name         string  `gorm:"type:varchar(255);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	RegNumber    *string `gorm:"type:varchar(50);uniqueIndex"                   json:"reg_number,omitempty"` // students only
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'student'"    json:"role"` // admin | lecturer | student
	IsActive     bool    `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

// TableName table name.
func (Account) TableName() string { return "accounts" }
