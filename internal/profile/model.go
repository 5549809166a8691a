package profile

import "time"

// Profile holds the tradesperson's business identity used on invoices.
// The app keeps exactly one profile; saves replace the whole object.
type Profile struct {
	ID            string    `gorm:"primaryKey" json:"-"`
	BusinessName  string    `json:"business_name"`
	ABN           string    `gorm:"column:abn" json:"abn"`
	GSTRegistered bool      `gorm:"column:gst_registered" json:"gst_registered"`
	LogoImage     string    `gorm:"type:text" json:"logo_base64"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

const defaultID = "profile_default"

// Defaults mirrors the empty profile the client renders before any save.
func Defaults() *Profile {
	return &Profile{
		ID:           defaultID,
		BusinessName: "My Business",
	}
}
