package models

// DefaultEventCategory is used when an event is saved without a category.
const DefaultEventCategory = "General"

// Event is a one-off occurrence. Date is YYYY-MM-DD and sorts lexically.
type Event struct {
	ID          string `json:"id"                  firestore:"-"                   gorm:"type:char(36);primaryKey"`
	Title       string `json:"title"               firestore:"title"               gorm:"size:255"`
	Date        string `json:"date"                firestore:"date"                gorm:"size:10;index"`
	Time        string `json:"time"                firestore:"time"                gorm:"size:64"`
	Location    string `json:"location"            firestore:"location"            gorm:"size:255"`
	Category    string `json:"category"            firestore:"category"            gorm:"size:64"`
	Description string `json:"description"         firestore:"description"         gorm:"type:text"`
	CreatedAt   int64  `json:"createdAt"           firestore:"createdAt"           gorm:"autoCreateTime:false"`
	UpdatedAt   int64  `json:"updatedAt,omitempty" firestore:"updatedAt,omitempty" gorm:"autoUpdateTime:false"`
}

func (e *Event) GetID() string { return e.ID }
func (e *Event) SetID(id string) { e.ID = id }
func (e *Event) GetCreatedAt() int64 { return e.CreatedAt }
func (e *Event) SetCreatedAt(ms int64) { e.CreatedAt = ms }
func (e *Event) GetUpdatedAt() int64 { return e.UpdatedAt }
func (e *Event) SetUpdatedAt(ms int64) { e.UpdatedAt = ms }

func (e *Event) Fields() map[string]interface{} {
	return map[string]interface{}{
		"title":       e.Title,
		"date":        e.Date,
		"time":        e.Time,
		"location":    e.Location,
		"category":    e.Category,
		"description": e.Description,
	}
}

// CategoryOrDefault returns the category, falling back to "General".
func (e *Event) CategoryOrDefault() string {
	if e.Category == "" {
		return DefaultEventCategory
	}
	return e.Category
}
