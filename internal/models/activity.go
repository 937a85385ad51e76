package models

// Activity type tags written by the dashboard.
const (
	ActivityInfo    = "info"
	ActivityProgram = "program"
	ActivityEvent   = "event"
	ActivityGallery = "gallery"
	ActivityTheme   = "theme"
)

// ActivityLog is one audit trail entry. Entries kept only in the local
// fallback ring have an empty ID.
type ActivityLog struct {
	ID        string `json:"id,omitempty" firestore:"-"         gorm:"type:char(36);primaryKey"`
	Message   string `json:"message"      firestore:"message"   gorm:"size:512"`
	Type      string `json:"type"         firestore:"type"      gorm:"size:32"`
	CreatedAt int64  `json:"createdAt"    firestore:"createdAt" gorm:"index;autoCreateTime:false"`
}

func (ActivityLog) TableName() string { return "activity_logs" }

func (a *ActivityLog) GetID() string { return a.ID }
func (a *ActivityLog) SetID(id string) { a.ID = id }
func (a *ActivityLog) GetCreatedAt() int64 { return a.CreatedAt }
func (a *ActivityLog) SetCreatedAt(ms int64) { a.CreatedAt = ms }
func (a *ActivityLog) GetUpdatedAt() int64 { return 0 }
func (a *ActivityLog) SetUpdatedAt(int64) {}

func (a *ActivityLog) Fields() map[string]interface{} {
	return map[string]interface{}{"message": a.Message, "type": a.Type}
}

// TypeOrDefault returns the type tag, falling back to "info".
func (a *ActivityLog) TypeOrDefault() string {
	if a.Type == "" {
		return ActivityInfo
	}
	return a.Type
}
