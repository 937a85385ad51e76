package models

// SiteConfigID is the fixed key of the singleton site config document.
const SiteConfigID = "current"

// SiteConfig is the verse, theme and contact block. ThemeSemester is the
// legacy name of ThemeDay and is only read.
type SiteConfig struct {
	ID              string `json:"-"                       firestore:"-"                       gorm:"type:varchar(32);primaryKey"`
	VerseText       string `json:"verseText"               firestore:"verseText"               gorm:"type:text"`
	VerseReference  string `json:"verseReference"          firestore:"verseReference"          gorm:"size:255"`
	ThemeYear       string `json:"themeYear"               firestore:"themeYear"               gorm:"size:255"`
	ThemeDay        string `json:"themeDay"                firestore:"themeDay"                gorm:"size:255"`
	ThemeSemester   string `json:"themeSemester,omitempty" firestore:"themeSemester,omitempty" gorm:"size:255"`
	ContactEmail    string `json:"contactEmail"            firestore:"contactEmail"            gorm:"size:255"`
	FellowshipDay   string `json:"fellowshipDay"           firestore:"fellowshipDay"           gorm:"size:64"`
	FellowshipTime  string `json:"fellowshipTime"          firestore:"fellowshipTime"          gorm:"size:64"`
	FellowshipVenue string `json:"fellowshipVenue"         firestore:"fellowshipVenue"         gorm:"size:255"`
	UpdatedAt       int64  `json:"updatedAt"               firestore:"updatedAt"               gorm:"autoUpdateTime:false"`
}

func (SiteConfig) TableName() string { return "site_config" }

// DayTheme returns themeDay, falling back to the legacy themeSemester.
func (c *SiteConfig) DayTheme() string {
	if c.ThemeDay != "" {
		return c.ThemeDay
	}
	return c.ThemeSemester
}

// SiteConfigPatch is a merge-upsert: nil fields are left untouched.
type SiteConfigPatch struct {
	VerseText       *string `json:"verseText"`
	VerseReference  *string `json:"verseReference"`
	ThemeYear       *string `json:"themeYear"`
	ThemeDay        *string `json:"themeDay"`
	ContactEmail    *string `json:"contactEmail"`
	FellowshipDay   *string `json:"fellowshipDay"`
	FellowshipTime  *string `json:"fellowshipTime"`
	FellowshipVenue *string `json:"fellowshipVenue"`
}

// Map returns the set fields keyed by stored name.
func (p SiteConfigPatch) Map() map[string]interface{} {
	out := make(map[string]interface{}, 8)
	set := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	set("verseText", p.VerseText)
	set("verseReference", p.VerseReference)
	set("themeYear", p.ThemeYear)
	set("themeDay", p.ThemeDay)
	set("contactEmail", p.ContactEmail)
	set("fellowshipDay", p.FellowshipDay)
	set("fellowshipTime", p.FellowshipTime)
	set("fellowshipVenue", p.FellowshipVenue)
	return out
}

// Apply merges the patch into c.
func (p SiteConfigPatch) Apply(c *SiteConfig) {
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&c.VerseText, p.VerseText)
	apply(&c.VerseReference, p.VerseReference)
	apply(&c.ThemeYear, p.ThemeYear)
	apply(&c.ThemeDay, p.ThemeDay)
	apply(&c.ContactEmail, p.ContactEmail)
	apply(&c.FellowshipDay, p.FellowshipDay)
	apply(&c.FellowshipTime, p.FellowshipTime)
	apply(&c.FellowshipVenue, p.FellowshipVenue)
}
