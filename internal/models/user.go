package models

// User is the identity anchor for transactions, report settings and reports.
type User struct {
	Base
	Email        string        `gorm:"uniqueIndex;not null" json:"email"`
	Password     string        `gorm:"not null" json:"-"`
	Name         string        `json:"name"`
	IsActive     bool          `gorm:"default:true" json:"is_active"`
	Transactions []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
}
