package telegram

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"emoheal/internal/database"
	"emoheal/internal/services"
	"emoheal/internal/utils"
)

const (
	msgLoading        = "⏳ EmoHeal is still loading, try again in a moment."
	msgLoginRequired  = "🔒 Please sign in first: /login, /register or /guest"
	msgAdminOnly      = "⛔ This command is available to admins only."
	msgUnknownCommand = "❌ Unknown command. Use /help"
	msgGuestFeedback  = "👀 Guests can read feedback but not post it. /register to join in."
)

const helpText = `📚 <b>EmoHeal commands</b>

<b>Account:</b>
/login [email] [password] - Sign in
/register [role] [email] [password] [name] - Create an account (role: user, admin, guest)
/guest - Continue as guest
/logout - Sign out
/whoami - Current account

<b>Mood:</b>
/mood [mood] - Record how you feel (happy, neutral, sad, anxious, calm)
/detect [face|voice] - Detect your mood
/today - Today's entry
/week - Weekly analytics
/summary [days] - Mood summary (default 7)
/stats - Your activity
/quote [random] - Daily inspiration

<b>Calendar:</b>
/calendar - Current month
/prev, /next - Navigate months
/day [n] - Select or clear a day
/pick [mood] - Pick a mood for the selected day

<b>Support:</b>
Send any text to talk. Messages that sound like a crisis raise an alert.
/alerts [all] - Crisis alerts

<b>Feedback:</b>
/feedbacks - Community feedback
/feedback [1-5] [comment] - Share your experience
/star [id] - Star or unstar
/unfeedback [id] - Delete feedback

<b>Settings:</b>
/settings - Show settings
/theme [light|dark|system]
/lang [en|es|fr|de]
/font [small|medium|large]
/toggle [notifications|sound|animations]
/applied - Resolved appearance

<b>Admin:</b>
/users [query] - List users
/role [id] [role] - Change role
/status [id] - Activate or deactivate
/deluser [id] - Delete user
/resolve [id] - Resolve a crisis alert`

// errorText turns a service error into a user-facing reply.
func errorText(err error) string {
	var devErr *services.DeviceError
	switch {
	case errors.As(err, &devErr):
		return "📵 " + devErr.Message
	case errors.Is(err, services.ErrPermissionDenied):
		return "⛔ You are not allowed to do that."
	case errors.Is(err, services.ErrInvalidFeedback):
		return "❌ Feedback needs a comment and a rating from 1 to 5."
	case errors.Is(err, services.ErrInvalidMood):
		return "❌ Unknown mood. Use: happy, neutral, sad, anxious, calm"
	case errors.Is(err, services.ErrInvalidSetting):
		return "❌ Unsupported value."
	case errors.Is(err, services.ErrInvalidRole):
		return "❌ Role must be user, admin or guest."
	case errors.Is(err, services.ErrUserNotFound):
		return "❌ User not found."
	case errors.Is(err, services.ErrAlertNotFound):
		return "❌ Alert not found."
	case errors.Is(err, services.ErrInvalidPeriod):
		return "❌ Period must be between 1 and 90 days."
	default:
		return "❌ Something went wrong, please try again."
	}
}

func formatEntry(entry database.MoodEntry) string {
	return fmt.Sprintf("%s %s <i>(%s)</i>",
		database.MoodNames[entry.Mood],
		utils.GetSourceEmoji(string(entry.Source)),
		entry.Source,
	)
}

func formatCalendar(month services.CalendarMonth, selected int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 <b>%s %d</b>\n\n", month.MonthName, month.Year)
	sb.WriteString("<pre>Su Mo Tu We Th Fr Sa\n")
	for i, cell := range month.Cells {
		switch {
		case cell.Blank():
			sb.WriteString("  ")
		case cell.Mood != "":
			sb.WriteString(utils.GetMoodEmoji(string(cell.Mood)))
		default:
			fmt.Fprintf(&sb, "%2d", cell.Day)
		}
		if i%7 == 6 {
			sb.WriteString("\n")
		} else {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("</pre>\n")

	if selected > 0 {
		fmt.Fprintf(&sb, "\n👉 Selected: %s %d. Use /pick [mood]\n", month.MonthName, selected)
	}

	fmt.Fprintf(&sb, "\n<b>Mood summary</b> (%d days tracked)\n", month.TrackedDays)
	for _, m := range database.Moods {
		fmt.Fprintf(&sb, "%s: %d\n", database.MoodNames[m], month.Counts[m])
	}
	return sb.String()
}

func formatFeedback(fb database.Feedback, viewer database.User) string {
	star := "☆"
	if fb.HasStarred(viewer.ID) {
		star = "⭐"
	}
	return fmt.Sprintf("<b>%s</b> (%s) %s\n%s\n<i>%s</i>\n%s %d · id: <code>%s</code>",
		html.EscapeString(fb.UserName), fb.UserRole, fb.Date,
		ratingStars(fb.Rating),
		html.EscapeString(fb.Comment),
		star, fb.Stars, fb.ID,
	)
}

func formatSettings(st database.Settings) string {
	return fmt.Sprintf("⚙️ <b>Settings</b>\n\n"+
		"Theme: %s\n"+
		"Notifications: %s\n"+
		"Sound effects: %s\n"+
		"Language: %s\n"+
		"Font size: %s\n"+
		"Animations: %s",
		st.Theme, onOff(st.Notifications), onOff(st.SoundEffects),
		st.Language, st.FontSize, onOff(st.AnimationsEnabled),
	)
}

func formatDirectoryUser(u database.DirectoryUser) string {
	status := "🟢"
	if u.Status != database.StatusActive {
		status = "⚪"
	}
	return fmt.Sprintf("%s <b>%s</b> &lt;%s&gt; %s · %s · id: <code>%s</code>",
		status, html.EscapeString(u.Name), html.EscapeString(u.Email), u.Role, u.LastActive, u.ID)
}

func formatTrack(t services.TrackSuggestion) string {
	return fmt.Sprintf("🎵 <a href=\"%s\">A song for your mood</a> <i>(%s)</i>", t.URL, t.Query)
}

func formatAlert(a database.CrisisAlert) string {
	icon := "🟠"
	if a.Level == database.CrisisHigh {
		icon = "🔴"
	}
	status := "open"
	if a.Resolved {
		status = "resolved"
	}
	return fmt.Sprintf("%s <b>%s</b> · %s · %s\n<i>%s</i>\nid: <code>%s</code>",
		icon, a.Level, status, a.Timestamp, html.EscapeString(a.Excerpt), a.ID)
}

func ratingStars(rating int) string {
	rating = min(max(rating, 0), 5)
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// SendMessageOrLogError sends text and logs delivery failures.
func (b *Bot) SendMessageOrLogError(message string) {
	if err := b.SendMessage(message); err != nil {
		b.log.Error("failed to send message", "error", err)
	}
}
