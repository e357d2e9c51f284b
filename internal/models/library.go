package models

// FavoriteEntry is a [CatalogItem] snapshot saved to favorites.
//
// AddedAt is milliseconds since epoch. Seq records insertion order and only breaks AddedAt ties.
type FavoriteEntry struct {
	CatalogItem
	AddedAt int64 `json:"addedAt"`
	Seq     int64 `json:"seq,omitempty"`
}

// HistoryEntry is the last episode opened for a title. Timestamp is milliseconds since epoch.
type HistoryEntry struct {
	Slug        string `json:"slug"`
	EpisodeSlug string `json:"episodeSlug"`
	Name        string `json:"name"`
	OriginName  string `json:"origin_name,omitempty"`
	EpName      string `json:"epName"`
	ThumbURL    string `json:"thumb_url"`
	Timestamp   int64  `json:"timestamp"`
}
