package models

// Program is a weekly recurring activity.
type Program struct {
	ID        string `json:"id"                  firestore:"-"                   gorm:"type:char(36);primaryKey"`
	Day       string `json:"day"                 firestore:"day"                 gorm:"size:32"`
	Title     string `json:"title"               firestore:"title"               gorm:"size:255"`
	Time      string `json:"time"                firestore:"time"                gorm:"size:64"`
	Venue     string `json:"venue"               firestore:"venue"               gorm:"size:255"`
	CreatedAt int64  `json:"createdAt"           firestore:"createdAt"           gorm:"index;autoCreateTime:false"`
	UpdatedAt int64  `json:"updatedAt,omitempty" firestore:"updatedAt,omitempty" gorm:"autoUpdateTime:false"`
}

func (p *Program) GetID() string { return p.ID }
func (p *Program) SetID(id string) { p.ID = id }
func (p *Program) GetCreatedAt() int64 { return p.CreatedAt }
func (p *Program) SetCreatedAt(ms int64) { p.CreatedAt = ms }
func (p *Program) GetUpdatedAt() int64 { return p.UpdatedAt }
func (p *Program) SetUpdatedAt(ms int64) { p.UpdatedAt = ms }

func (p *Program) Fields() map[string]interface{} {
	return map[string]interface{}{
		"day":   p.Day,
		"title": p.Title,
		"time":  p.Time,
		"venue": p.Venue,
	}
}
