package services

import (
	"math/rand"
	"time"
)

type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

var quotes = []Quote{
	{"Every day may not be good, but there's good in every day.", "Alice Morse Earle"},
	{"Your mental health is a priority. Your happiness is essential. Your self-care is a necessity.", "Anonymous"},
	{"You are stronger than you think, braver than you believe.", "A.A. Milne"},
	{"Healing takes time, and asking for help is a courageous step.", "Mariska Hargitay"},
	{"It's okay to not be okay. It's okay to ask for help.", "Anonymous"},
	{"Your present circumstances don't determine where you can go.", "Abraham Lincoln"},
	{"The only way out is through.", "Robert Frost"},
	{"One small positive thought can change your whole day.", "Ziggy"},
	{"Be gentle with yourself. You're doing the best you can.", "Anonymous"},
	{"Progress, not perfection.", "Anonymous"},
	{"Your mental health journey is valid, no matter where you are.", "Anonymous"},
	{"Self-care is how you take your power back.", "Lalah Delia"},
	{"You don't have to be positive all the time. It's perfectly okay to feel sad, angry, annoyed.", "Lori Deschene"},
	{"Happiness is not by chance, but by choice.", "Jim Rohn"},
	{"The greatest discovery is that a human being can alter his life by altering his attitude.", "William James"},
	{"You are enough just as you are.", "Meghan Markle"},
	{"Take a deep breath. It's just a bad day, not a bad life.", "Anonymous"},
	{"Your value doesn't decrease based on someone's inability to see your worth.", "Anonymous"},
	{"Sometimes the bravest thing you can do is ask for help.", "Anonymous"},
	{"You have survived 100% of your worst days. You're doing great.", "Anonymous"},
	{"Mental health is not a destination, but a process.", "Noam Shpancer"},
	{"You are not your illness. You have an individual story to tell.", "Julian Seifter"},
	{"Small steps in the right direction can turn out to be the biggest step of your life.", "Anonymous"},
	{"It's okay to rest. It's okay to take a break.", "Anonymous"},
	{"Your feelings are valid. Your struggles are real.", "Anonymous"},
	{"Believe you can and you're halfway there.", "Theodore Roosevelt"},
	{"The only impossible journey is the one you never begin.", "Tony Robbins"},
	{"Keep your face always toward the sunshine, and shadows will fall behind you.", "Walt Whitman"},
	{"You are braver than you believe, stronger than you seem.", "Christopher Robin"},
	{"What lies behind us and what lies before us are tiny matters compared to what lies within us.", "Ralph Waldo Emerson"},
	{"The secret of getting ahead is getting started.", "Mark Twain"},
}

// DailyQuote picks the quote for now's day of year, so every caller sees
// the same quote on a given date.
func DailyQuote(now time.Time) Quote {
	return quotes[now.YearDay()%len(quotes)]
}

func RandomQuote() Quote {
	return quotes[rand.Intn(len(quotes))]
}
