package model

import "time"

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

type Preferences struct {
	Theme         string `json:"theme"`
	Notifications bool   `json:"notifications"`
	Language      string `json:"language"`
}

func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeLight, Notifications: true, Language: "en"}
}

type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Profile is a user with their practice totals.
type Profile struct {
	User  User         `json:"user"`
	Stats ProfileStats `json:"stats"`
}

type ProfileStats struct {
	MeditationMinutes int `json:"meditationMinutes"`
	BreathingSessions int `json:"breathingSessions"`
}
