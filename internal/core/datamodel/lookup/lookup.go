package lookup

import "time"

// LookupSource maps an opaque reference string to the parameterized query
// that produces (value, label) option rows for select fields.
type LookupSource struct {
	ID        int64     `gorm:"primaryKey"`
	Ref       string    `gorm:"column:ref;uniqueIndex;not null"`
	Query     string    `gorm:"column:query;not null"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (LookupSource) TableName() string {
	return "lookup_sources"
}
