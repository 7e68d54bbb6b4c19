package models

// DefaultCompanyName is used until the operator fills in the settings.
const DefaultCompanyName = "SEIZE"

// Company is the single business profile printed on invoice headers.
type Company struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:255;not null;default:'SEIZE'" json:"name"`
	Address  string `gorm:"size:500" json:"address,omitempty"`
	Phone    string `gorm:"size:50" json:"phone,omitempty"`
	Email    string `gorm:"size:255" json:"email,omitempty"`
	GSTIN    string `gorm:"column:gstin;size:20" json:"gstin,omitempty"`
	LogoPath string `gorm:"size:500" json:"logo_path,omitempty"`
}

// TableName keeps the historical singular table name.
func (Company) TableName() string {
	return "company"
}
