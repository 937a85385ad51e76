package models

// GalleryPhoto is an image record in the key-value store. A renderable
// photo carries inline bytes, a stored URL or an external link.
type GalleryPhoto struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Image       string `json:"image,omitempty"`
	StoragePath string `json:"storagePath,omitempty"`
	URL         string `json:"url,omitempty"`
	Size        int64  `json:"size,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt,omitempty"`
}

// HasSource reports whether the photo has anything the renderer can show.
func (g *GalleryPhoto) HasSource() bool {
	return g.Image != "" || g.URL != "" || g.Link != ""
}
