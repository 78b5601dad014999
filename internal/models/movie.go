package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Languages the catalog carries media for.
var Languages = []string{"english", "ateso", "lusoga", "lumasaba", "luganda"}

// Categories used for catalog browsing.
var Categories = []string{"movies", "series", "anime", "korean", "chinese", "indian", "translated"}

func IsValidLanguage(code string) bool {
	for _, l := range Languages {
		if l == code {
			return true
		}
	}
	return false
}

func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// LanguageVersion is one audio/subtitle variant of a title. Code is the
// join key at stream/download time; a movie holds at most one entry per
// code.
type LanguageVersion struct {
	Code      string `json:"code" bson:"code"`
	VideoURL  string `json:"videoUrl" bson:"videoUrl"`
	Subtitles string `json:"subtitles,omitempty" bson:"subtitles,omitempty"`
	AudioTrack string `json:"audioTrack,omitempty" bson:"audioTrack,omitempty"`
}

type Movie struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title           string             `json:"title" bson:"title"`
	Description     string             `json:"description" bson:"description"`
	Genre           []string           `json:"genre" bson:"genre"`
	Category        string             `json:"category" bson:"category"`
	Type            string             `json:"type" bson:"type"`
	ReleaseYear     int                `json:"releaseYear,omitempty" bson:"releaseYear,omitempty"`
	Duration        int                `json:"duration,omitempty" bson:"duration,omitempty"`
	Rating          float64            `json:"rating,omitempty" bson:"rating,omitempty"`
	Poster          string             `json:"poster,omitempty" bson:"poster,omitempty"`
	Trailer         string             `json:"trailer,omitempty" bson:"trailer,omitempty"`
	Languages       []LanguageVersion  `json:"languages" bson:"languages"`
	PrimaryLanguage string             `json:"primaryLanguage" bson:"primaryLanguage"`

	// Minimum tier needed to stream this title.
	SubscriptionRequired string `json:"subscriptionRequired" bson:"subscriptionRequired"`

	FileSize int64  `json:"fileSize,omitempty" bson:"fileSize,omitempty"`
	Quality  string `json:"quality,omitempty" bson:"quality,omitempty"`

	// Series only.
	TotalEpisodes  int `json:"totalEpisodes,omitempty" bson:"totalEpisodes,omitempty"`
	CurrentEpisode int `json:"currentEpisode,omitempty" bson:"currentEpisode,omitempty"`

	DownloadCount int64 `json:"downloadCount" bson:"downloadCount"`
	ViewCount     int64 `json:"viewCount" bson:"viewCount"`
	Featured      bool  `json:"featured" bson:"featured"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Language returns the variant for an exact code match.
func (m *Movie) Language(code string) (LanguageVersion, bool) {
	for _, lv := range m.Languages {
		if lv.Code == code {
			return lv, true
		}
	}
	return LanguageVersion{}, false
}

// MovieSummary is the projection returned by browse queries.
type MovieSummary struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id"`
	Title                string             `json:"title" bson:"title"`
	Description          string             `json:"description" bson:"description"`
	Poster               string             `json:"poster,omitempty" bson:"poster,omitempty"`
	Rating               float64            `json:"rating,omitempty" bson:"rating,omitempty"`
	ReleaseYear          int                `json:"releaseYear,omitempty" bson:"releaseYear,omitempty"`
	Duration             int                `json:"duration,omitempty" bson:"duration,omitempty"`
	Category             string             `json:"category" bson:"category"`
	PrimaryLanguage      string             `json:"primaryLanguage" bson:"primaryLanguage"`
	SubscriptionRequired string             `json:"subscriptionRequired" bson:"subscriptionRequired"`
}
