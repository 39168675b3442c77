package utils

// GetMoodEmoji and GetSourceEmoji take raw stored values.
func GetMoodEmoji(mood string) string {
	switch mood {
	case "happy":
		return "😊"
	case "neutral":
		return "😐"
	case "sad":
		return "😢"
	case "anxious":
		return "⚡"
	case "calm":
		return "💜"
	default:
		return "▫️"
	}
}

func GetSourceEmoji(source string) string {
	switch source {
	case "face":
		return "📷"
	case "voice":
		return "🎙"
	case "manual":
		return "✍️"
	default:
		return "📌"
	}
}
