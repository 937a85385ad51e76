package office

import (
	"strings"

	"github.com/ummachristians-netizen/umma-christians/internal/models"
)

// Dashboard status lines.
const (
	StatusProgramAdded   = "Weekly program added."
	StatusProgramUpdated = "Weekly program updated."
	StatusProgramRemoved = "Weekly program removed."
	StatusEventAdded     = "Event added."
	StatusEventUpdated   = "Event updated."
	StatusEventRemoved   = "Event removed."
	StatusSiteUpdated    = "Verse and themes updated."
	StatusPhotoAdded     = "Gallery item added successfully."
	StatusPhotoUpdated   = "Photo updated."
	StatusPhotoRemoved   = "Photo removed."
	StatusActivityDelete = "Activity item deleted."

	StatusPhotoRequired   = "Photo title and image file are required."
	StatusPhotoTooLarge   = "Image is still too large after compression. Use a smaller image."
	StatusPhotoFailed     = "Failed to add gallery item. Check the link or image file."
	StatusPhotoNoPayload  = "Photo record missing image payload."
	StatusActivityBlocked = "Activity log is blocked by Firestore rules. Update rules for activity_logs."
	StatusNotFound        = "That item no longer exists. Refresh the dashboard."
	StatusSaveFailed      = "Could not save changes. Try again."
	StatusInvalidForm     = "Check the form and try again."
)

// ProgramDTO is the weekly program form.
type ProgramDTO struct {
	Day   string `form:"day"   json:"day"   binding:"required"`
	Title string `form:"title" json:"title" binding:"required"`
	Time  string `form:"time"  json:"time"`
	Venue string `form:"venue" json:"venue"`
}

func (d ProgramDTO) model() models.Program {
	return models.Program{
		Day:   strings.TrimSpace(d.Day),
		Title: strings.TrimSpace(d.Title),
		Time:  strings.TrimSpace(d.Time),
		Venue: strings.TrimSpace(d.Venue),
	}
}

// EventDTO is the event form. An empty category is saved as "General".
type EventDTO struct {
	Title       string `form:"title"       json:"title"       binding:"required"`
	Date        string `form:"date"        json:"date"        binding:"required"`
	Time        string `form:"time"        json:"time"`
	Location    string `form:"location"    json:"location"`
	Category    string `form:"category"    json:"category"`
	Description string `form:"description" json:"description"`
}

func (d EventDTO) model() models.Event {
	e := models.Event{
		Title:       strings.TrimSpace(d.Title),
		Date:        strings.TrimSpace(d.Date),
		Time:        strings.TrimSpace(d.Time),
		Location:    strings.TrimSpace(d.Location),
		Category:    strings.TrimSpace(d.Category),
		Description: strings.TrimSpace(d.Description),
	}
	e.Category = e.CategoryOrDefault()
	return e
}

// SiteConfigDTO is the verse and theme form. Fields left out of a JSON body
// are not touched; the HTML form always sends all of them.
type SiteConfigDTO struct {
	VerseText       *string `form:"verseText"       json:"verseText"`
	VerseReference  *string `form:"verseReference"  json:"verseReference"`
	ThemeYear       *string `form:"themeYear"       json:"themeYear"`
	ThemeDay        *string `form:"themeDay"        json:"themeDay"`
	ContactEmail    *string `form:"contactEmail"    json:"contactEmail"`
	FellowshipDay   *string `form:"fellowshipDay"   json:"fellowshipDay"`
	FellowshipTime  *string `form:"fellowshipTime"  json:"fellowshipTime"`
	FellowshipVenue *string `form:"fellowshipVenue" json:"fellowshipVenue"`
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	return &s
}

func (d SiteConfigDTO) patch() models.SiteConfigPatch {
	return models.SiteConfigPatch{
		VerseText:       trimmed(d.VerseText),
		VerseReference:  trimmed(d.VerseReference),
		ThemeYear:       trimmed(d.ThemeYear),
		ThemeDay:        trimmed(d.ThemeDay),
		ContactEmail:    trimmed(d.ContactEmail),
		FellowshipDay:   trimmed(d.FellowshipDay),
		FellowshipTime:  trimmed(d.FellowshipTime),
		FellowshipVenue: trimmed(d.FellowshipVenue),
	}
}

// PhotoDTO is the text part of the gallery forms. The file comes separately.
type PhotoDTO struct {
	Title string `form:"title" json:"title"`
	Link  string `form:"link"  json:"link"`
}

// Upload is a gallery image as received.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}
