package database

type Mood string

const (
	Happy   Mood = "happy"
	Neutral Mood = "neutral"
	Sad     Mood = "sad"
	Anxious Mood = "anxious"
	Calm    Mood = "calm"
)

// Moods lists every mood in display order.
var Moods = []Mood{Happy, Neutral, Sad, Anxious, Calm}

var MoodNames = map[Mood]string{
	Happy:   "😊 Happy",
	Neutral: "😐 Neutral",
	Sad:     "😢 Sad",
	Anxious: "⚡ Anxious",
	Calm:    "💜 Calm",
}

var MoodEmojis = map[Mood]string{
	Happy:   "😊",
	Neutral: "😐",
	Sad:     "😢",
	Anxious: "⚡",
	Calm:    "💜",
}

func (m Mood) Valid() bool {
	_, ok := MoodEmojis[m]
	return ok
}

type Source string

const (
	SourceFace   Source = "face"
	SourceVoice  Source = "voice"
	SourceManual Source = "manual"
)

func (s Source) Valid() bool {
	switch s {
	case SourceFace, SourceVoice, SourceManual:
		return true
	}
	return false
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleGuest:
		return true
	}
	return false
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// MoodEntry is keyed by Date; Timestamp is RFC 3339.
type MoodEntry struct {
	Date      string `json:"date"`
	Mood      Mood   `json:"mood"`
	Source    Source `json:"source"`
	Timestamp string `json:"timestamp"`
}

// Feedback keeps Stars equal to len(StarredBy).
type Feedback struct {
	ID        string   `json:"id"`
	UserID    string   `json:"userId"`
	UserName  string   `json:"userName"`
	UserRole  Role     `json:"userRole"`
	Rating    int      `json:"rating"`
	Comment   string   `json:"comment"`
	Date      string   `json:"date"`
	Stars     int      `json:"stars"`
	StarredBy []string `json:"starredBy"`
}

// HasStarred reports whether userID is in StarredBy.
func (f Feedback) HasStarred(userID string) bool {
	for _, id := range f.StarredBy {
		if id == userID {
			return true
		}
	}
	return false
}

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

type Language string

const (
	LanguageEN Language = "en"
	LanguageES Language = "es"
	LanguageFR Language = "fr"
	LanguageDE Language = "de"
)

type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

type Settings struct {
	Theme             Theme    `json:"theme"`
	Notifications     bool     `json:"notifications"`
	SoundEffects      bool     `json:"soundEffects"`
	Language          Language `json:"language"`
	FontSize          FontSize `json:"fontSize"`
	AnimationsEnabled bool     `json:"animationsEnabled"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:             ThemeLight,
		Notifications:     true,
		SoundEffects:      true,
		Language:          LanguageEN,
		FontSize:          FontMedium,
		AnimationsEnabled: true,
	}
}

type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
)

// DirectoryUser is an account as seen from the admin panel.
type DirectoryUser struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	Status     UserStatus `json:"status"`
	LastActive string     `json:"lastActive"`
}

type WeeklyMoodAnalytics struct {
	WeekNumber   int          `json:"weekNumber"`
	StartDate    string       `json:"startDate"`
	EndDate      string       `json:"endDate"`
	TrackedDays  int          `json:"trackedDays"`
	Counts       map[Mood]int `json:"counts"`
	DominantMood Mood         `json:"dominantMood,omitempty"`
	Insights     string       `json:"insights"`
}

type CrisisLevel string

const (
	CrisisLow    CrisisLevel = "low"
	CrisisMedium CrisisLevel = "medium"
	CrisisHigh   CrisisLevel = "high"
)

// CrisisAlert is recorded whenever a message from a user is assessed
// above low risk.
type CrisisAlert struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Level     CrisisLevel `json:"level"`
	Keywords  []string    `json:"triggeredKeywords"`
	Excerpt   string      `json:"excerpt"`
	Timestamp string      `json:"timestamp"`
	Resolved  bool        `json:"resolved"`
}
