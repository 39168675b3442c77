package telegram

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"emoheal/internal/database"
	"emoheal/internal/services"
	"emoheal/internal/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message, args []string) {
	message := "💜 <b>Welcome to EmoHeal</b>\n\n" +
		"Track your emotions, spot patterns and take care of yourself.\n\n" +
		"Sign in with /login, create an account with /register or look around with /guest.\n" +
		"Use /help to see every command."
	b.SendMessageOrLogError(message)
}

func (b *Bot) handleHelp(ctx context.Context, msg *tgbotapi.Message, args []string) {
	b.SendMessageOrLogError(helpText)
}

func (b *Bot) handleLogin(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) < 2 {
		b.SendMessageOrLogError("❌ Format: /login [email] [password]")
		return
	}
	user, err := b.services.Session.Login(ctx, args[0], args[1])
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError(fmt.Sprintf("👋 Welcome back, <b>%s</b>!", html.EscapeString(user.Name)))
}

func (b *Bot) handleRegister(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) < 4 {
		b.SendMessageOrLogError("❌ Format: /register [role] [email] [password] [name]")
		return
	}
	role := database.Role(strings.ToLower(args[0]))
	name := strings.Join(args[3:], " ")
	user, err := b.services.Session.Register(ctx, name, args[1], args[2], role)
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError(fmt.Sprintf("🎉 Account created. Hi <b>%s</b>, you are signed in as %s.", html.EscapeString(user.Name), user.Role))
}

func (b *Bot) handleGuest(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if _, err := b.services.Session.LoginAsGuest(ctx); err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError("👀 You are browsing as <b>Guest User</b>. Some features are read only.")
}

func (b *Bot) handleLogout(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if err := b.services.Session.Logout(ctx); err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError("👋 Signed out.")
}

func (b *Bot) handleWhoAmI(ctx context.Context, msg *tgbotapi.Message, args []string) {
	user, _ := b.services.Session.Current()
	b.SendMessageOrLogError(fmt.Sprintf("👤 <b>%s</b>\n%s\nRole: %s", html.EscapeString(user.Name), html.EscapeString(user.Email), user.Role))
}

func (b *Bot) handleMood(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.sendWithKeyboard("💭 How are you feeling today?", b.moodKeyboard("mood"))
		return
	}
	entry, err := b.services.Mood.AddMoodEntry(ctx, database.Mood(strings.ToLower(args[0])), database.SourceManual)
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError("✅ Mood recorded: " + formatEntry(entry))
}

func (b *Bot) handleDetect(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.sendWithKeyboard("🔍 How should I analyze your mood?", b.detectKeyboard())
		return
	}
	source := database.Source(strings.ToLower(args[0]))
	if source != database.SourceFace && source != database.SourceVoice {
		b.SendMessageOrLogError("❌ Format: /detect [face|voice]")
		return
	}
	b.SendMessageOrLogError("⏳ Analyzing...")
	det, err := b.services.Detection.Detect(ctx, source)
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError("✨ Detected: " + formatEntry(det.MoodEntry) + "\n\n" + formatTrack(det.Track))
}

func (b *Bot) handleToday(ctx context.Context, msg *tgbotapi.Message, args []string) {
	today := utils.DateKey(b.services.Now())
	entry, ok := b.services.Mood.Today()
	if !ok {
		b.SendMessageOrLogError(fmt.Sprintf("📭 No mood recorded for %s yet. Try /mood or /detect", today))
		return
	}
	b.SendMessageOrLogError(fmt.Sprintf("📅 <b>%s</b>\n%s", today, formatEntry(entry)))
}

func (b *Bot) handleCalendar(ctx context.Context, msg *tgbotapi.Message, args []string) {
	b.mu.Lock()
	b.cursor = services.NewCalendarCursor(b.services.Now())
	b.mu.Unlock()
	b.sendCalendar()
}

func (b *Bot) handlePrev(ctx context.Context, msg *tgbotapi.Message, args []string) {
	b.mu.Lock()
	b.cursor.Previous()
	b.mu.Unlock()
	b.sendCalendar()
}

func (b *Bot) handleNext(ctx context.Context, msg *tgbotapi.Message, args []string) {
	b.mu.Lock()
	b.cursor.Next()
	b.mu.Unlock()
	b.sendCalendar()
}

func (b *Bot) handleDay(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.SendMessageOrLogError("❌ Format: /day [n]")
		return
	}
	day, err := strconv.Atoi(args[0])
	if err != nil {
		b.SendMessageOrLogError("❌ Day must be a number")
		return
	}

	b.mu.Lock()
	ok := b.cursor.SelectDay(day)
	selected := b.cursor.Selected
	b.mu.Unlock()

	switch {
	case !ok:
		b.SendMessageOrLogError("❌ That day is not in this month")
	case selected == 0:
		b.SendMessageOrLogError("↩️ Selection cleared")
	default:
		b.sendWithKeyboard(fmt.Sprintf("👉 Day %d selected. How did you feel?", selected), b.moodKeyboard("pick"))
	}
}

func (b *Bot) handlePick(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.SendMessageOrLogError("❌ Format: /pick [mood]")
		return
	}
	b.mu.Lock()
	if b.cursor.Selected == 0 {
		b.mu.Unlock()
		b.SendMessageOrLogError("❌ Select a day first with /day [n]")
		return
	}
	entry, err := b.cursor.PickMood(ctx, b.services.Mood, database.Mood(strings.ToLower(args[0])))
	b.mu.Unlock()
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError("✅ Mood recorded: " + formatEntry(entry))
	b.sendCalendar()
}

func (b *Bot) sendCalendar() {
	b.mu.Lock()
	cursor := b.cursor
	b.mu.Unlock()
	b.sendWithKeyboard(formatCalendar(cursor.View(b.services.Mood), cursor.Selected), b.calendarKeyboard())
}

func (b *Bot) handleFeedback(ctx context.Context, msg *tgbotapi.Message, args []string) {
	user, _ := b.services.Session.Current()
	if !services.CanSubmitFeedback(user) {
		b.SendMessageOrLogError(msgGuestFeedback)
		return
	}
	if len(args) < 2 {
		b.SendMessageOrLogError("❌ Format: /feedback [1-5] [comment]")
		return
	}
	rating, err := strconv.Atoi(args[0])
	if err != nil {
		b.SendMessageOrLogError("❌ Rating must be a number from 1 to 5")
		return
	}
	comment := strings.Join(args[1:], " ")
	fb, err := b.services.Feedback.AddFeedback(ctx, user.ID, user.Name, user.Role, rating, comment)
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	reply := "🙏 Thank you for your feedback!\n\n" + formatFeedback(fb, user)
	if a, err := b.services.Crisis.Check(ctx, user.ID, comment); err != nil {
		b.log.Warn("crisis check failed", "error", err)
	} else if a.Level != database.CrisisLow {
		reply += "\n\n💬 " + a.Message
	}
	b.SendMessageOrLogError(reply)
}

func (b *Bot) handleFeedbacks(ctx context.Context, msg *tgbotapi.Message, args []string) {
	user, _ := b.services.Session.Current()
	list := b.services.Feedback.List()
	if len(list) == 0 {
		b.SendMessageOrLogError("📭 No feedback yet")
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "💬 <b>Community feedback (%d)</b>\n\n", len(list))
	for _, fb := range list {
		sb.WriteString(formatFeedback(fb, user))
		sb.WriteString("\n\n")
	}
	b.SendMessageOrLogError(strings.TrimSpace(sb.String()))
}

func (b *Bot) handleStar(ctx context.Context, msg *tgbotapi.Message, args []string) {
	user, _ := b.services.Session.Current()
	if !services.CanStarFeedback(user) {
		b.SendMessageOrLogError(msgGuestFeedback)
		return
	}
	if len(args) == 0 {
		b.SendMessageOrLogError("❌ Format: /star [id]")
		return
	}
	fb, found, err := b.services.Feedback.ToggleStar(ctx, args[0], user.ID)
	switch {
	case err != nil:
		b.SendMessageOrLogError(errorText(err))
	case !found:
		b.SendMessageOrLogError("❌ Feedback not found")
	case fb.HasStarred(user.ID):
		b.SendMessageOrLogError(fmt.Sprintf("⭐ Starred (%d)", fb.Stars))
	default:
		b.SendMessageOrLogError(fmt.Sprintf("☆ Star removed (%d)", fb.Stars))
	}
}

func (b *Bot) handleDeleteFeedback(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.SendMessageOrLogError("❌ Format: /unfeedback [id]")
		return
	}
	user, _ := b.services.Session.Current()
	if err := b.services.Feedback.DeleteFeedback(ctx, user, args[0]); err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError("🗑 Feedback deleted")
}

func (b *Bot) handleSettings(ctx context.Context, msg *tgbotapi.Message, args []string) {
	b.SendMessageOrLogError(formatSettings(b.services.Settings.Get()))
}

func (b *Bot) handleTheme(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.SendMessageOrLogError("❌ Format: /theme [light|dark|system]")
		return
	}
	b.replySettings(b.services.Settings.UpdateTheme(ctx, database.Theme(strings.ToLower(args[0]))))
}

func (b *Bot) handleLanguage(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.SendMessageOrLogError("❌ Format: /lang [en|es|fr|de]")
		return
	}
	b.replySettings(b.services.Settings.UpdateLanguage(ctx, database.Language(strings.ToLower(args[0]))))
}

func (b *Bot) handleFont(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.SendMessageOrLogError("❌ Format: /font [small|medium|large]")
		return
	}
	b.replySettings(b.services.Settings.UpdateFontSize(ctx, database.FontSize(strings.ToLower(args[0]))))
}

func (b *Bot) handleToggle(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.SendMessageOrLogError("❌ Format: /toggle [notifications|sound|animations]")
		return
	}
	switch strings.ToLower(args[0]) {
	case "notifications":
		b.replySettings(b.services.Settings.ToggleNotifications(ctx))
	case "sound":
		b.replySettings(b.services.Settings.ToggleSoundEffects(ctx))
	case "animations":
		b.replySettings(b.services.Settings.ToggleAnimations(ctx))
	default:
		b.SendMessageOrLogError("❌ Format: /toggle [notifications|sound|animations]")
	}
}

func (b *Bot) replySettings(st database.Settings, err error) {
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError("✅ Saved\n\n" + formatSettings(st))
}

func (b *Bot) handleApplied(ctx context.Context, msg *tgbotapi.Message, args []string) {
	ap := b.services.Settings.Apply()
	mode := "☀️ light"
	if ap.Dark {
		mode = "🌙 dark"
	}
	b.SendMessageOrLogError(fmt.Sprintf("🎨 <b>Appearance</b>\n\nMode: %s\nFont: %dpx\nAnimations: %s",
		mode, ap.FontSizePx, onOff(ap.Animations)))
}

func (b *Bot) handleWeek(ctx context.Context, msg *tgbotapi.Message, args []string) {
	analytics := b.services.Analytics.GetWeeklyAnalytics()

	var sb strings.Builder
	fmt.Fprintf(&sb, "📈 <b>Week %d analytics</b>\n\n📅 %s - %s\n\n✅ Tracked: %d/7 days\n\n",
		analytics.WeekNumber, analytics.StartDate, analytics.EndDate, analytics.TrackedDays)
	for _, m := range database.Moods {
		fmt.Fprintf(&sb, "%s: %d\n", database.MoodNames[m], analytics.Counts[m])
	}
	if analytics.Insights != "" {
		fmt.Fprintf(&sb, "\n<b>💡 Insights:</b>\n%s", analytics.Insights)
	}
	b.SendMessageOrLogError(sb.String())
}

func (b *Bot) handleSummary(ctx context.Context, msg *tgbotapi.Message, args []string) {
	days := 7
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			b.SendMessageOrLogError("❌ Format: /summary [days]")
			return
		}
		days = n
	}
	summary, err := b.services.Analytics.GetMoodSummary(days)
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🧭 <b>Last %d days</b> (%s - %s)\n\n📝 Entries: %d\n",
		summary.PeriodDays, summary.StartDate, summary.EndDate, summary.TotalEntries)
	if len(summary.TopMoods) == 0 {
		sb.WriteString("\nNo moods recorded in this period")
		b.SendMessageOrLogError(sb.String())
		return
	}
	sb.WriteString("\n<b>Top moods:</b>\n")
	for _, mc := range summary.TopMoods {
		fmt.Fprintf(&sb, "%s: %d\n", database.MoodNames[mc.Mood], mc.Count)
	}
	sb.WriteString("\n" + formatTrack(services.SuggestTrack(summary.TopMoods[0].Mood)))
	b.SendMessageOrLogError(sb.String())
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message, args []string) {
	user, _ := b.services.Session.Current()
	stats := b.services.UserStats(user)
	last := stats.LastEntryAt
	if last == "" {
		last = "never"
	}
	b.SendMessageOrLogError(fmt.Sprintf("📊 <b>Your activity</b>\n\n"+
		"Mood entries: %d\n"+
		"Feedback posted: %d\n"+
		"High-risk alerts: %d\n"+
		"Open alerts: %d\n"+
		"Last entry: %s",
		stats.MoodEntries, stats.FeedbackCount, stats.HighCrisisAlerts, stats.UnresolvedAlerts, last))
}

func (b *Bot) handleChat(ctx context.Context, msg *tgbotapi.Message, args []string) {
	user, _ := b.services.Session.Current()
	a, err := b.services.Crisis.Check(ctx, user.ID, strings.Join(args, " "))
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	var today *database.MoodEntry
	if entry, ok := b.services.Mood.Today(); ok {
		today = &entry
	}
	icon := "💬 "
	if a.Level == database.CrisisHigh {
		icon = "🆘 "
	}
	b.SendMessageOrLogError(icon + services.SupportReply(a, today))
}

// handleAlerts lists the current user's alerts; admins may pass "all".
func (b *Bot) handleAlerts(ctx context.Context, msg *tgbotapi.Message, args []string) {
	user, _ := b.services.Session.Current()
	userID := user.ID
	if len(args) > 0 && strings.EqualFold(args[0], "all") && user.Role == database.RoleAdmin {
		userID = ""
	}
	alerts := b.services.Crisis.Alerts(userID, nil)
	if len(alerts) == 0 {
		b.SendMessageOrLogError("🕊 No crisis alerts")
		return
	}
	var sb strings.Builder
	sb.WriteString("🚨 <b>Crisis alerts</b>\n\n")
	for _, a := range alerts {
		sb.WriteString(formatAlert(a))
		sb.WriteString("\n\n")
	}
	b.SendMessageOrLogError(strings.TrimSpace(sb.String()))
}

func (b *Bot) handleResolve(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.SendMessageOrLogError("❌ Format: /resolve [alert id]")
		return
	}
	user, _ := b.services.Session.Current()
	alert, err := b.services.Crisis.Resolve(ctx, user, args[0])
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError("✅ Alert resolved\n\n" + formatAlert(alert))
}

func (b *Bot) handleQuote(ctx context.Context, msg *tgbotapi.Message, args []string) {
	quote := services.DailyQuote(b.services.Now())
	if len(args) > 0 && strings.EqualFold(args[0], "random") {
		quote = services.RandomQuote()
	}
	b.SendMessageOrLogError(fmt.Sprintf("✨ <i>\"%s\"</i>\n— %s", quote.Text, quote.Author))
}

func (b *Bot) handleUsers(ctx context.Context, msg *tgbotapi.Message, args []string) {
	users := b.services.Users.List(strings.Join(args, " "))
	stats := b.services.Users.Stats()

	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 <b>Users</b> (%d total, %d active)\n\n", stats.Total, stats.Active)
	if len(users) == 0 {
		sb.WriteString("No users match")
	}
	for _, u := range users {
		sb.WriteString(formatDirectoryUser(u))
		sb.WriteString("\n")
	}
	b.SendMessageOrLogError(strings.TrimSpace(sb.String()))
}

func (b *Bot) handleRole(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) < 2 {
		b.SendMessageOrLogError("❌ Format: /role [id] [user|admin|guest]")
		return
	}
	actor, _ := b.services.Session.Current()
	u, err := b.services.Users.ChangeRole(ctx, actor, args[0], database.Role(strings.ToLower(args[1])))
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError("✅ Updated\n" + formatDirectoryUser(u))
}

func (b *Bot) handleStatus(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.SendMessageOrLogError("❌ Format: /status [id]")
		return
	}
	actor, _ := b.services.Session.Current()
	u, err := b.services.Users.ToggleStatus(ctx, actor, args[0])
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError("✅ Updated\n" + formatDirectoryUser(u))
}

func (b *Bot) handleDeleteUser(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.SendMessageOrLogError("❌ Format: /deluser [id]")
		return
	}
	actor, _ := b.services.Session.Current()
	if err := b.services.Users.Delete(ctx, actor, args[0]); err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError("🗑 User deleted")
}
