package aggregate

// RawEntry is one ranked item scraped from an editorial source.
type RawEntry struct {
	Rank   int    `json:"rank"`
	Title  string `json:"title"`
	Source string `json:"source"`
}

// Platforms carries the availability flags attached to a record. SteamDeck
// holds a ProtonDB-style tier string ("platinum", "gold", ..., "unknown").
type Platforms struct {
	Windows   bool   `json:"windows"`
	MacOS     bool   `json:"macos"`
	Linux     bool   `json:"linux"`
	SteamDeck string `json:"steamdeck"`
	Switch    bool   `json:"switch"`
}

// Record is the unified per-game aggregate folded together from every
// source ranking and enrichment payload sharing one dedup key.
type Record struct {
	Title        string         `json:"title"`
	Rankings     map[string]int `json:"rankings"`
	Platforms    Platforms      `json:"platforms"`
	Stores       []string       `json:"stores"`
	SteamID      *int64         `json:"steam_id"`
	UserScore    *float64       `json:"user_score"`
	TotalReviews int            `json:"total_reviews"`
	Price        string         `json:"price"`
	HeaderImage  string         `json:"header_image"`
	Metacritic   *int           `json:"metacritic"`
	ReleaseDate  string         `json:"release_date,omitempty"`
}

// newRecord creates a record with the documented defaults: Windows assumed
// available, everything else absent or unknown until enrichment says
// otherwise.
func newRecord(title string) *Record {
	return &Record{
		Title:    title,
		Rankings: make(map[string]int),
		Platforms: Platforms{
			Windows:   true,
			SteamDeck: "unknown",
		},
		Stores: []string{},
		Price:  "N/A",
	}
}

// Enrichment is the metadata payload an enrichment provider returns for one
// resolved title. HasPlatforms marks the platform flags and deck tier as
// authoritative; scalar fields count as present when non-zero.
type Enrichment struct {
	SteamID      int64
	HasPlatforms bool
	Platforms    Platforms
	Stores       []string
	UserScore    *float64
	TotalReviews int
	Price        string
	HeaderImage  string
	Metacritic   *int
	ReleaseDate  string
}

// apply overlays an enrichment payload onto the record. Platform flags and
// the deck tier are replaced wholesale when the provider vouches for them;
// stores are unioned preserving insertion order; scalar fields only replace
// the default when the payload carries a value.
func (r *Record) apply(e *Enrichment) {
	if e == nil {
		return
	}
	if e.HasPlatforms {
		r.Platforms = e.Platforms
	}
	for _, store := range e.Stores {
		r.addStore(store)
	}
	if e.SteamID > 0 {
		id := e.SteamID
		r.SteamID = &id
	}
	if e.UserScore != nil {
		score := *e.UserScore
		r.UserScore = &score
	}
	if e.TotalReviews > 0 {
		r.TotalReviews = e.TotalReviews
	}
	if e.Price != "" {
		r.Price = e.Price
	}
	if e.HeaderImage != "" && r.HeaderImage == "" {
		r.HeaderImage = e.HeaderImage
	}
	if e.Metacritic != nil {
		score := *e.Metacritic
		r.Metacritic = &score
	}
	if e.ReleaseDate != "" {
		r.ReleaseDate = e.ReleaseDate
	}
}

func (r *Record) addStore(store string) {
	if store == "" {
		return
	}
	for _, existing := range r.Stores {
		if existing == store {
			return
		}
	}
	r.Stores = append(r.Stores, store)
}
