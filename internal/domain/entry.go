package domain

// Entry is a single dictionary record pairing a Creek word with its English
// gloss. Tags is a free-form, nullable label list kept as a single string.
type Entry struct {
	ID      int     `json:"id" gorm:"primaryKey"`
	Creek   string  `json:"creek" gorm:"not null"`
	English string  `json:"english" gorm:"not null"`
	Tags    *string `json:"tags"`
}
