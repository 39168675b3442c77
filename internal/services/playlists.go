package services

import (
	"math/rand"

	"emoheal/internal/database"
)

// TrackSuggestion is a song picked to match a mood. Query is a search
// phrase for players that cannot open the URL directly.
type TrackSuggestion struct {
	Mood  database.Mood `json:"mood"`
	URL   string        `json:"url"`
	Query string        `json:"query"`
}

var (
	upbeatTracks = []string{
		"https://open.spotify.com/track/0bYg9bo50gSsH3LtXe2SQn",
		"https://open.spotify.com/track/1o0ao05FUD0y5JYv8wLQka",
		"https://open.spotify.com/track/5EqEGQJgqFoXdHemK1UAj2",
		"https://open.spotify.com/track/4bJ8G2TBJxQwKelkJzFZpT",
		"https://open.spotify.com/track/6hbUJ5QqUo0VhYUFNij7lZ",
	}
	mellowTracks = []string{
		"https://open.spotify.com/track/2YlZnw2ikdb837oKMKjBkW",
		"https://open.spotify.com/track/5hTpBe8h35rJ67eAWHQsJx",
		"https://open.spotify.com/track/1p80LdxRV74UKvL8gnD7ky",
		"https://open.spotify.com/track/4fcM3hen1qd4ezopUtqPi2",
		"https://open.spotify.com/track/6Kkjf2eGx0HkKfmxqfcX1E",
	}
	relaxingTracks = []string{
		"https://open.spotify.com/track/3D8R2RW7pAq7ho0zVYwJw9",
		"https://open.spotify.com/track/5M7ciFcpqaf3k6jVQ4fMcY",
		"https://open.spotify.com/track/1oOe8uwD2Lysuger2N9s76",
		"https://open.spotify.com/track/4bwF7yFuhwXlO2tDLcKAaD",
		"https://open.spotify.com/track/6f5K1cagG0W2N1l8Z1iKj3",
	}
)

var playlists = map[database.Mood]struct {
	tracks []string
	query  string
}{
	database.Happy:   {upbeatTracks, "Bollywood happy songs"},
	database.Sad:     {mellowTracks, "Bollywood sad songs"},
	database.Neutral: {relaxingTracks, "Bollywood relaxing songs"},
	database.Anxious: {relaxingTracks, "Bollywood calm songs"},
	database.Calm:    {relaxingTracks, "Bollywood soothing songs"},
}

// SuggestTrack picks a random track for mood. Unknown moods get the
// relaxing list.
func SuggestTrack(mood database.Mood) TrackSuggestion {
	p, ok := playlists[mood]
	if !ok {
		p = playlists[database.Neutral]
	}
	return TrackSuggestion{
		Mood:  mood,
		URL:   p.tracks[rand.Intn(len(p.tracks))],
		Query: p.query,
	}
}
