package model

// =====================================================
// SHAREABLE FORMAT
// =====================================================
//
// Size-optimized mirrors of Deck/Card/Trait/Stat for URL embedding. The
// struct tags below ARE the property-rename table; the default constants in
// deck.go are the default-omission table. Both conversion directions read
// only these two places.
//
// Key table (canonical -> shareable, default when absent):
//
//	deck.id          i
//	deck.title       t
//	deck.theme       th   "classic"
//	deck.layout      l    "tarot"
//	deck.modified_at m    (unix millis, 0 = unknown)
//	deck.cards       c    []
//	card.id          i
//	card.title       t
//	card.subtitle    s    ""
//	card.description d    ""
//	card.image.url   img  (external URLs only; blobs never travel in URLs)
//	card.traits      tr   []
//	card.stats       st   []
//	trait.id         i
//	trait.title      t
//	trait.description d   ""
//	trait.public     p    public (key "p" present = PRIVATE)
//	stat.id          i
//	stat.title       t
//	stat.value       v    0
//	stat.tracked     k    untracked (key "k" present = tracked)
//	stat.public      p    public (key "p" present = PRIVATE)
//	stat.description d    ""
//
// Boolean flags are encoded by key presence, not boolean literals: the
// shareable form stores 1 under the key when the flag deviates from its
// default and omits the key otherwise.

type ShareableDeck struct {
	ID         string          `json:"i"`
	Title      string          `json:"t"`
	Theme      string          `json:"th,omitempty"`
	Layout     string          `json:"l,omitempty"`
	ModifiedMS int64           `json:"m,omitempty"`
	Cards      []ShareableCard `json:"c,omitempty"`
}

type ShareableCard struct {
	ID          string           `json:"i"`
	Title       string           `json:"t"`
	Subtitle    string           `json:"s,omitempty"`
	Description string           `json:"d,omitempty"`
	ImageURL    string           `json:"img,omitempty"`
	Traits      []ShareableTrait `json:"tr,omitempty"`
	Stats       []ShareableStat  `json:"st,omitempty"`
}

type ShareableTrait struct {
	ID          string `json:"i"`
	Title       string `json:"t"`
	Description string `json:"d,omitempty"`
	Private     int    `json:"p,omitempty"`
}

type ShareableStat struct {
	ID          string `json:"i"`
	Title       string `json:"t"`
	Value       int    `json:"v,omitempty"`
	Tracked     int    `json:"k,omitempty"`
	Private     int    `json:"p,omitempty"`
	Description string `json:"d,omitempty"`
}

// FlagSet is the wire value stored under a presence-encoded flag key.
const FlagSet = 1
