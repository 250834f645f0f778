package models

// Group is a family sharing one ledger. Every transaction, savings box and
// subcategory belongs to exactly one group.
type Group struct {
	Base
	Name      string `gorm:"not null" json:"name"`
	CreatedBy string `gorm:"type:uuid" json:"created_by"`
}

// TableName avoids the GROUPS keyword of SQLite window functions.
func (Group) TableName() string {
	return "family_groups"
}

// Subcategory refines a bucket inside a group, e.g. "groceries" under needs.
type Subcategory struct {
	Base
	GroupID       string        `gorm:"type:uuid;not null;uniqueIndex:idx_subcategories_group_code,priority:1" json:"group_id"`
	CategoryGroup CategoryGroup `gorm:"not null" json:"category_group"`
	Code          string        `gorm:"not null;uniqueIndex:idx_subcategories_group_code,priority:2" json:"code"`
	Name          string        `gorm:"not null" json:"name"`
}
