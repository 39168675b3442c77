package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"emoheal/internal/database"
	"emoheal/internal/services"
	"emoheal/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	services *services.ServiceManager
}

func NewHandler(sm *services.ServiceManager) *Handler {
	return &Handler{services: sm}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *Handler) Ready(c *gin.Context) {
	status := http.StatusOK
	if !h.services.Ready() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ready": h.services.Ready()})
}

// Session

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Name     string        `json:"name" binding:"required"`
	Email    string        `json:"email" binding:"required"`
	Password string        `json:"password" binding:"required"`
	Role     database.Role `json:"role" binding:"required"`
}

type sessionResponse struct {
	User            *database.User `json:"user"`
	IsAuthenticated bool           `json:"isAuthenticated"`
	IsAdmin         bool           `json:"isAdmin"`
	IsGuest         bool           `json:"isGuest"`
}

func (h *Handler) sessionState() sessionResponse {
	resp := sessionResponse{
		IsAuthenticated: h.services.Session.IsAuthenticated(),
		IsAdmin:         h.services.Session.IsAdmin(),
		IsGuest:         h.services.Session.IsGuest(),
	}
	if user, ok := h.services.Session.Current(); ok {
		resp.User = &user
	}
	return resp
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if _, err := h.services.Session.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, h.sessionState())
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if _, err := h.services.Session.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.sessionState())
}

func (h *Handler) Guest(c *gin.Context) {
	if _, err := h.services.Session.LoginAsGuest(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, h.sessionState())
}

func (h *Handler) Session(c *gin.Context) {
	RespondOK(c, h.sessionState())
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.services.Session.Logout(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Moods

type moodRequest struct {
	Mood database.Mood `json:"mood" binding:"required"`
}

func (h *Handler) ListMoods(c *gin.Context) {
	RespondOK(c, h.services.Mood.GetAllMoods())
}

func (h *Handler) TodayMood(c *gin.Context) {
	entry, ok := h.services.Mood.Today()
	if !ok {
		RespondOK(c, gin.H{"entry": nil})
		return
	}
	RespondOK(c, gin.H{"entry": entry})
}

func (h *Handler) MoodForDate(c *gin.Context) {
	date := c.Param("date")
	if _, err := utils.ParseDateKey(date); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("date must be YYYY-MM-DD"))
		return
	}
	entry, ok := h.services.Mood.GetMoodForDate(date)
	if !ok {
		RespondError(c, http.StatusNotFound, "not_found", errors.New("no mood recorded for "+date))
		return
	}
	RespondOK(c, entry)
}

func (h *Handler) AddMood(c *gin.Context) {
	var req moodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	entry, err := h.services.Mood.AddMoodEntry(c.Request.Context(), req.Mood, database.SourceManual)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

type detectRequest struct {
	Source database.Source `json:"source" binding:"required"`
}

func (h *Handler) Detect(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	det, err := h.services.Detection.Detect(c.Request.Context(), req.Source)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, det)
}

type moodSummaryResponse struct {
	services.MoodSummary
	Track *services.TrackSuggestion `json:"track,omitempty"`
}

func (h *Handler) MoodSummary(c *gin.Context) {
	days := 7
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("days must be a number"))
			return
		}
		days = n
	}
	summary, err := h.services.Analytics.GetMoodSummary(days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	resp := moodSummaryResponse{MoodSummary: summary}
	if len(summary.TopMoods) > 0 {
		track := services.SuggestTrack(summary.TopMoods[0].Mood)
		resp.Track = &track
	}
	RespondOK(c, resp)
}

// Calendar

type calendarResponse struct {
	services.CalendarMonth
	Selected int `json:"selected,omitempty"`
}

type navigateRequest struct {
	Year      int        `json:"year" binding:"required"`
	Month     time.Month `json:"month" binding:"required,min=1,max=12"`
	Direction string     `json:"direction" binding:"required,oneof=prev next"`
}

type pickRequest struct {
	Year  int           `json:"year" binding:"required"`
	Month time.Month    `json:"month" binding:"required,min=1,max=12"`
	Day   int           `json:"day" binding:"required"`
	Mood  database.Mood `json:"mood" binding:"required"`
}

// cursorFromQuery reads year, month and day, defaulting to the current month.
func (h *Handler) cursorFromQuery(c *gin.Context) (services.CalendarCursor, error) {
	cursor := services.NewCalendarCursor(h.services.Now())
	if v := c.Query("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return cursor, errors.New("year must be a number")
		}
		cursor.Year = year
	}
	if v := c.Query("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return cursor, errors.New("month must be 1-12")
		}
		cursor.Month = time.Month(month)
	}
	if v := c.Query("day"); v != "" {
		day, err := strconv.Atoi(v)
		if err != nil || !cursor.SelectDay(day) {
			return cursor, errors.New("day is outside the month")
		}
	}
	return cursor, nil
}

func (h *Handler) Calendar(c *gin.Context) {
	cursor, err := h.cursorFromQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	RespondOK(c, calendarResponse{CalendarMonth: cursor.View(h.services.Mood), Selected: cursor.Selected})
}

func (h *Handler) NavigateCalendar(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	cursor := services.CalendarCursor{Year: req.Year, Month: req.Month}
	if req.Direction == "prev" {
		cursor.Previous()
	} else {
		cursor.Next()
	}
	RespondOK(c, calendarResponse{CalendarMonth: cursor.View(h.services.Mood)})
}

// PickCalendarMood records a manual mood for the selected day. The entry
// is stored under today's date.
func (h *Handler) PickCalendarMood(c *gin.Context) {
	var req pickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	cursor := services.CalendarCursor{Year: req.Year, Month: req.Month}
	if !cursor.SelectDay(req.Day) {
		RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("day is outside the month"))
		return
	}
	entry, err := cursor.PickMood(c.Request.Context(), h.services.Mood, req.Mood)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry, "calendar": calendarResponse{CalendarMonth: cursor.View(h.services.Mood)}})
}

// Feedback

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) ListFeedback(c *gin.Context) {
	user := currentUser(c)
	RespondOK(c, gin.H{
		"feedbacks": h.services.Feedback.List(),
		"canSubmit": services.CanSubmitFeedback(user),
	})
}

func (h *Handler) AddFeedback(c *gin.Context) {
	user := currentUser(c)
	if !services.CanSubmitFeedback(user) {
		RespondError(c, http.StatusForbidden, "forbidden", errors.New("guests cannot submit feedback"))
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	fb, err := h.services.Feedback.AddFeedback(c.Request.Context(), user.ID, user.Name, user.Role, req.Rating, req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	resp := feedbackCreated{Feedback: fb}
	assessment, err := h.services.Crisis.Check(c.Request.Context(), user.ID, req.Comment)
	switch {
	case err != nil:
		_ = c.Error(err)
	case assessment.Level != database.CrisisLow:
		resp.Support = &assessment
	}
	c.JSON(http.StatusCreated, resp)
}

type feedbackCreated struct {
	database.Feedback
	Support *services.CrisisAssessment `json:"support,omitempty"`
}

func (h *Handler) GetFeedback(c *gin.Context) {
	fb, ok := h.services.Feedback.Get(c.Param("id"))
	if !ok {
		RespondError(c, http.StatusNotFound, "not_found", errors.New("feedback not found"))
		return
	}
	RespondOK(c, fb)
}

func (h *Handler) ToggleStar(c *gin.Context) {
	user := currentUser(c)
	if !services.CanStarFeedback(user) {
		RespondError(c, http.StatusForbidden, "forbidden", errors.New("guests cannot star feedback"))
		return
	}
	fb, found, err := h.services.Feedback.ToggleStar(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !found {
		RespondError(c, http.StatusNotFound, "not_found", errors.New("feedback not found"))
		return
	}
	RespondOK(c, fb)
}

func (h *Handler) DeleteFeedback(c *gin.Context) {
	if err := h.services.Feedback.DeleteFeedback(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Settings

func (h *Handler) GetSettings(c *gin.Context) {
	RespondOK(c, h.services.Settings.Get())
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req services.SettingsPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	settings, err := h.services.Settings.Update(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, settings)
}

func (h *Handler) ToggleSetting(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		settings database.Settings
		err      error
	)
	switch strings.ToLower(c.Param("name")) {
	case "notifications":
		settings, err = h.services.Settings.ToggleNotifications(ctx)
	case "sound", "soundeffects":
		settings, err = h.services.Settings.ToggleSoundEffects(ctx)
	case "animations":
		settings, err = h.services.Settings.ToggleAnimations(ctx)
	default:
		RespondError(c, http.StatusNotFound, "not_found", errors.New("unknown setting"))
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, settings)
}

func (h *Handler) AppliedSettings(c *gin.Context) {
	RespondOK(c, h.services.Settings.Apply())
}

// Insights

func (h *Handler) WeeklyAnalytics(c *gin.Context) {
	RespondOK(c, h.services.Analytics.GetWeeklyAnalytics())
}

func (h *Handler) Quote(c *gin.Context) {
	if c.Query("random") == "true" {
		RespondOK(c, services.RandomQuote())
		return
	}
	RespondOK(c, services.DailyQuote(h.services.Now()))
}

// Admin

type roleRequest struct {
	Role database.Role `json:"role" binding:"required"`
}

func (h *Handler) ListUsers(c *gin.Context) {
	RespondOK(c, gin.H{
		"users": h.services.Users.List(c.Query("q")),
		"stats": h.services.Users.Stats(),
	})
}

func (h *Handler) ChangeRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	u, err := h.services.Users.ChangeRole(c.Request.Context(), currentUser(c), c.Param("id"), req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, u)
}

func (h *Handler) ToggleUserStatus(c *gin.Context) {
	u, err := h.services.Users.ToggleStatus(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, u)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.services.Users.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Support

type supportRequest struct {
	Message string `json:"message" binding:"required"`
}

type supportResponse struct {
	Reply      string                    `json:"reply"`
	Assessment services.CrisisAssessment `json:"assessment"`
}

func (h *Handler) Support(c *gin.Context) {
	var req supportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	assessment, err := h.services.Crisis.Check(c.Request.Context(), currentUser(c).ID, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	var today *database.MoodEntry
	if entry, ok := h.services.Mood.Today(); ok {
		today = &entry
	}
	RespondOK(c, supportResponse{
		Reply:      services.SupportReply(assessment, today),
		Assessment: assessment,
	})
}

func resolvedFilter(c *gin.Context) (*bool, error) {
	raw := c.Query("resolved")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.New("resolved must be true or false")
	}
	return &v, nil
}

func (h *Handler) CrisisAlerts(c *gin.Context) {
	resolved, err := resolvedFilter(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user := currentUser(c)
	unresolved, _ := h.services.Crisis.Counts(user.ID)
	RespondOK(c, gin.H{
		"alerts":          h.services.Crisis.Alerts(user.ID, resolved),
		"unresolvedCount": unresolved,
	})
}

func (h *Handler) UserStats(c *gin.Context) {
	RespondOK(c, h.services.UserStats(currentUser(c)))
}

func (h *Handler) ListCrisisAlerts(c *gin.Context) {
	resolved, err := resolvedFilter(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	RespondOK(c, gin.H{"alerts": h.services.Crisis.Alerts(c.Query("user"), resolved)})
}

func (h *Handler) ResolveCrisisAlert(c *gin.Context) {
	alert, err := h.services.Crisis.Resolve(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, alert)
}
