package vo

type Markdown string

// Section names a page region whose fragment lives at sections/{name}.html
type Section string

const DefaultSection Section = "home"

type ContentSummary struct {
	Title       string   `json:"title"`       // First heading of the fragment
	Description string   `json:"description"` // First paragraph of the fragment
	Keywords    []string `json:"keywords,omitempty"`
}

type BlogEntry struct {
	Date    string `json:"date"`
	Title   string `json:"title"`
	Content string `json:"content"` // raw HTML
}

type ImageDescriptor struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

type Category string

const (
	CategoryAthletics Category = "athletics"
	CategoryEvents    Category = "events"
)

// Categories lists the gallery categories in load order.
var Categories = []Category{CategoryAthletics, CategoryEvents}

type ImageManifest struct {
	Athletics []ImageDescriptor `json:"athletics"`
	Events    []ImageDescriptor `json:"events"`
}

func (m ImageManifest) Items(c Category) []ImageDescriptor {
	switch c {
	case CategoryAthletics:
		return m.Athletics
	case CategoryEvents:
		return m.Events
	}
	return nil
}

type BlogView struct {
	Dates  []string `json:"dates"`
	Active string   `json:"active,omitempty"`
}

type GalleryView struct {
	Athletics      int  `json:"athletics"`
	Events         int  `json:"events"`
	Hidden         int  `json:"hidden"` // images hidden after a load failure
	SpinnerVisible bool `json:"spinnerVisible"`
	BannerVisible  bool `json:"bannerVisible"`
}

type LightboxView struct {
	Open bool   `json:"open"`
	Src  string `json:"src,omitempty"`
}

// Snapshot is a read-only view of the page after the last interaction.
type Snapshot struct {
	Section    Section        `json:"section"`
	Location   string         `json:"location"`
	Generation uint64         `json:"generation"`
	Summary    ContentSummary `json:"summary"`
	Markdown   Markdown       `json:"markdown,omitempty"`
	Expanded   []int          `json:"expanded,omitempty"` // indexes of expanded experience blocks
	Blog       *BlogView      `json:"blog,omitempty"`
	Gallery    *GalleryView   `json:"gallery,omitempty"`
	Lightbox   *LightboxView  `json:"lightbox,omitempty"`
	Alerts     []string       `json:"alerts,omitempty"` // notices raised by the last interaction
}
