package types

import (
	"time"
)

// Category is the gallery category label shown on listing and detail pages
type Category string

const (
	CategoryDoujinshi Category = "Doujinshi"
	CategoryManga     Category = "Manga"
	CategoryArtistCG  Category = "Artist CG"
	CategoryGameCG    Category = "Game CG"
	CategoryWestern   Category = "Western"
	CategoryNonH      Category = "Non-H"
	CategoryImageSet  Category = "Image Set"
	CategoryCosplay   Category = "Cosplay"
	CategoryAsianPorn Category = "Asian Porn"
	CategoryMisc      Category = "Misc"
	CategoryPrivate   Category = "Private"
)

// Categories lists every known category in site order
var Categories = []Category{
	CategoryDoujinshi, CategoryManga, CategoryArtistCG, CategoryGameCG, CategoryWestern,
	CategoryNonH, CategoryImageSet, CategoryCosplay, CategoryAsianPorn, CategoryMisc, CategoryPrivate,
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Namespace is the fixed category a tag belongs to
type Namespace string

const (
	NamespaceArtist    Namespace = "artist"
	NamespaceCharacter Namespace = "character"
	NamespaceCosplayer Namespace = "cosplayer"
	NamespaceFemale    Namespace = "female"
	NamespaceGroup     Namespace = "group"
	NamespaceLanguage  Namespace = "language"
	NamespaceMale      Namespace = "male"
	NamespaceMixed     Namespace = "mixed"
	NamespaceOther     Namespace = "other"
	NamespaceParody    Namespace = "parody"
	NamespaceReclass   Namespace = "reclass"
	NamespaceTemp      Namespace = "temp"
	NamespaceMisc      Namespace = "misc"
)

// Namespaces lists every known tag namespace
var Namespaces = []Namespace{
	NamespaceArtist, NamespaceCharacter, NamespaceCosplayer, NamespaceFemale, NamespaceGroup,
	NamespaceLanguage, NamespaceMale, NamespaceMixed, NamespaceOther, NamespaceParody,
	NamespaceReclass, NamespaceTemp, NamespaceMisc,
}

// Valid reports whether n is one of the known namespaces
func (n Namespace) Valid() bool {
	for _, known := range Namespaces {
		if n == known {
			return true
		}
	}
	return false
}

// PageKind discriminates the four listing page variants
type PageKind string

const (
	PageKindFrontPage PageKind = "front_page"
	PageKindWatched   PageKind = "watched"
	PageKindPopular   PageKind = "popular"
	PageKindFavorites PageKind = "favorites"
)

// ThumbnailSize is the gallery thumbnail layout mode
type ThumbnailSize string

const (
	ThumbnailSizeNormal ThumbnailSize = "normal"
	ThumbnailSizeLarge  ThumbnailSize = "large"
)

// FavoritesOrder is the normalized sort order of a favorites listing
type FavoritesOrder string

const (
	FavoritesOrderFavorited FavoritesOrder = "favorited"
	FavoritesOrderPublished FavoritesOrder = "published"
	FavoritesOrderUnknown   FavoritesOrder = "unknown"
)

// Vote directions used by Comment.MyVote
const (
	VoteUp   = 1
	VoteDown = -1
)

// Core data models

// TagListItem is one namespace row of a tag table
type TagListItem struct {
	Namespace Namespace `json:"namespace"`
	Tags      []string  `json:"tags"`
}

// FavoriteState describes whether and where a gallery is filed in favorites.
// Favorited is true exactly when FavCatTitle is set.
type FavoriteState struct {
	Favorited   bool    `json:"favorited"`
	FavCat      *int    `json:"favcat,omitempty"`
	FavCatTitle *string `json:"favcat_title,omitempty"`
}

// ListItem is one gallery row of a listing page
type ListItem struct {
	GID          int64     `json:"gid"`
	Token        string    `json:"token"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Category     Category  `json:"category"`
	PostedAt     time.Time `json:"posted_at"`
	Visible      bool      `json:"visible"`
	FavoriteState
	FavoritedAt *time.Time    `json:"favorited_at,omitempty"`
	Rating      float64       `json:"rating"`
	IsMyRating  bool          `json:"is_my_rating"`
	Uploader    *string       `json:"uploader,omitempty"`
	Length      int           `json:"length"`
	HasTorrents bool          `json:"has_torrents"`
	Tags        []TagListItem `json:"tags"`
}

// FrontPageInfo carries the fields only present on the front page
type FrontPageInfo struct {
	ResultCount   int64 `json:"result_count"`
	FilteredCount int   `json:"filtered_count"`
}

// FavoriteCategorySummary is one favorite bucket with its gallery count
type FavoriteCategorySummary struct {
	Index int    `json:"index"`
	Count int    `json:"count"`
	Title string `json:"title"`
}

// FavoritesInfo carries the fields only present on the favorites page
type FavoritesInfo struct {
	SortOrder  string                    `json:"sort_order"`
	Order      FavoritesOrder            `json:"order"`
	Categories []FavoriteCategorySummary `json:"categories"`
}

// ListPage is a parsed listing page. Exactly one of the variant fields is
// set for front_page and favorites; watched and popular carry none.
type ListPage struct {
	Kind              PageKind       `json:"kind"`
	Items             []ListItem     `json:"items"`
	PrevPageAvailable bool           `json:"prev_page_available"`
	NextPageAvailable bool           `json:"next_page_available"`
	FrontPage         *FrontPageInfo `json:"front_page,omitempty"`
	Favorites         *FavoritesInfo `json:"favorites,omitempty"`
}

// GalleryRef points at another gallery by identity
type GalleryRef struct {
	GID   int64  `json:"gid"`
	Token string `json:"token"`
	URL   string `json:"url"`
}

// NewerVersion is one entry of the "newer versions" list of a gallery
type NewerVersion struct {
	URL      string    `json:"url"`
	Title    string    `json:"title"`
	PostedAt time.Time `json:"posted_at"`
}

// GalleryRating holds the rating aggregates of a gallery
type GalleryRating struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Display float64 `json:"display"`
	Rated   bool    `json:"rated"`
}

// Image is one page tile of the gallery thumbnail grid. For normal
// thumbnails ThumbnailURL is a sprite sheet and SheetIndex is the position
// of this page inside it; large thumbnails have no SheetIndex.
type Image struct {
	Page         int    `json:"page"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	SheetIndex   *int   `json:"sheet_index,omitempty"`
}

// Voter is one named entry of a comment's vote breakdown
type Voter struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// CommentVotes is the vote breakdown of a regular comment
type CommentVotes struct {
	Score      int     `json:"score"`
	Base       int     `json:"base"`
	Voters     []Voter `json:"voters"`
	MoreVoters int     `json:"more_voters"`
}

// Comment is one entry of a gallery comment thread. Uploader comments never
// carry voting fields.
type Comment struct {
	ID           *int64        `json:"id,omitempty"`
	PostedAt     time.Time     `json:"posted_at"`
	LastEditedAt *time.Time    `json:"last_edited_at,omitempty"`
	Commenter    *string       `json:"commenter,omitempty"`
	Body         string        `json:"body"`
	IsUploader   bool          `json:"is_uploader"`
	IsMyComment  bool          `json:"is_my_comment"`
	Voteable     bool          `json:"voteable"`
	MyVote       *int          `json:"my_vote,omitempty"`
	Votes        *CommentVotes `json:"votes,omitempty"`
}

// Gallery is a parsed gallery detail page
type Gallery struct {
	GID           int64          `json:"gid"`
	Token         string         `json:"token"`
	APIUID        int64          `json:"apiuid"`
	APIKey        string         `json:"apikey"`
	Title         string         `json:"title"`
	TitleJapanese string         `json:"title_japanese"`
	Category      Category       `json:"category"`
	Uploader      *string        `json:"uploader,omitempty"`
	CoverURL      string         `json:"cover_url"`
	PostedAt      time.Time      `json:"posted_at"`
	Parent        *GalleryRef    `json:"parent,omitempty"`
	Visible       bool           `json:"visible"`
	VisibleNote   string         `json:"visible_note,omitempty"`
	Language      string         `json:"language"`
	Translated    bool           `json:"translated"`
	FileSize      string         `json:"file_size"`
	FileSizeBytes int64          `json:"file_size_bytes"`
	Length        int            `json:"length"`
	FavoriteCount int            `json:"favorite_count"`
	Rating        GalleryRating  `json:"rating"`
	FavoriteState
	Tags          []TagListItem  `json:"tags"`
	NewerVersions []NewerVersion `json:"newer_versions"`
	ThumbnailSize ThumbnailSize  `json:"thumbnail_size"`
	ImagePages    int            `json:"image_pages"`
	Images        []Image        `json:"images"`
	Comments      []Comment      `json:"comments"`
}

// MPVImage is one entry of the multi-page viewer image index
type MPVImage struct {
	Page         int    `json:"page"`
	Key          string `json:"key"`
	Name         string `json:"name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// MPVPage is a parsed multi-page viewer page
type MPVPage struct {
	GID        int64      `json:"gid"`
	Token      string     `json:"token"`
	MPVKey     string     `json:"mpvkey"`
	GalleryURL string     `json:"gallery_url"`
	PageCount  int        `json:"page_count"`
	Images     []MPVImage `json:"images"`
}

// SinglePage is a parsed per-image page
type SinglePage struct {
	GID            int64  `json:"gid,omitempty"`
	Token          string `json:"token,omitempty"`
	ShowKey        string `json:"showkey,omitempty"`
	Page           int    `json:"page"`
	TotalPages     int    `json:"total_pages"`
	ImageURL       string `json:"image_url"`
	FileName       string `json:"file_name"`
	Dimensions     string `json:"dimensions"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	FileSize       string `json:"file_size"`
	OriginalWidth  int    `json:"original_width"`
	OriginalHeight int    `json:"original_height"`
	OriginalSize   string `json:"original_size"`
	OriginalURL    string `json:"original_url,omitempty"`
	NextURL        string `json:"next_url,omitempty"`
	PrevURL        string `json:"prev_url,omitempty"`
}

// ConfigForm is a serialized settings form: control name to value
type ConfigForm struct {
	Action string            `json:"action,omitempty"`
	Fields map[string]string `json:"fields"`
}

// FavoritePopup is the parsed "add to favorites" popup
type FavoritePopup struct {
	Categories []string `json:"categories"`
	Selected   *int     `json:"selected,omitempty"`
	Favorited  bool     `json:"favorited"`
	Note       string   `json:"note"`
}

// HathOption is one H@H download resolution offered by the archiver page
type HathOption struct {
	Solution string `json:"solution"`
	Label    string `json:"label"`
	Size     string `json:"size"`
	Price    string `json:"price"`
}

// ArchiveDownload is one direct archive download (original or resample)
type ArchiveDownload struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Cost  string `json:"cost"`
	Size  string `json:"size"`
}

// ArchiverPage is the parsed archiver popup
type ArchiverPage struct {
	GID       int64             `json:"gid"`
	Token     string            `json:"token"`
	Or        string            `json:"or"`
	Hath      []HathOption      `json:"hath"`
	Downloads []ArchiveDownload `json:"downloads"`
}

// ArchiveResult is the message shown after submitting an archive request
type ArchiveResult struct {
	Message string `json:"message"`
}

// CopyrightNotice is the message shown for a gallery removed by a claim
type CopyrightNotice struct {
	Message string `json:"message"`
}

// API request/response models

// APIResponse represents a generic API response
type APIResponse struct {
	Success bool   `json:"success"`
	Kind    string `json:"kind,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}
