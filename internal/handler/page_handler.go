package handler

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"statsdash/internal/middleware"
	"statsdash/internal/model"
	"statsdash/internal/repository"
	"statsdash/internal/service"
	"statsdash/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTemplate = "dashboard.html"

// LoadTemplates parses the embedded page templates for gin's HTML renderer
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"percent": func(v float64) template.CSS {
			return template.CSS(formatPercent(v))
		},
		// chart colors are fixed in code, never user input
		"css": func(s string) template.CSS {
			return template.CSS(s)
		},
	}).ParseFS(templateFS, "templates/*.html")
}

// pageData feeds templates/dashboard.html
type pageData struct {
	Token     string
	Dashboard *model.Dashboard
	Error     string
	Notice    string
	InFlight  bool
}

type PageHandler struct {
	dashboardService service.DashboardService
	cookies          *middleware.SessionCookies
}

func NewPageHandler(dashboardService service.DashboardService, cookies *middleware.SessionCookies) *PageHandler {
	return &PageHandler{dashboardService: dashboardService, cookies: cookies}
}

// RegisterRoutes binds the server-rendered dashboard page
func (h *PageHandler) RegisterRoutes(router *gin.RouterGroup) {
	page := router.Group("", h.cookies.Load())
	page.GET("/", h.Show)
	page.POST("/", h.Submit)
}

// Show renders the token form and the session's latest dashboard
func (h *PageHandler) Show(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	data := pageData{Dashboard: session.Result, InFlight: session.InFlight}
	if session.InFlight {
		data.Notice = "A request is already in progress. The result will appear when it completes."
	}
	c.HTML(http.StatusOK, pageTemplate, data)
}

// Submit analyzes the posted token and renders the outcome
func (h *PageHandler) Submit(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	token := c.PostForm("token")
	data := pageData{Token: token}

	dashboard, err := h.dashboardService.Analyze(c.Request.Context(), session.ID, token)
	if err != nil {
		_ = c.Error(err)
		status, resp := errorResponse(err)
		if errors.Is(err, repository.ErrSubmissionInFlight) {
			data.Notice = resp.Error
			data.InFlight = true
		} else {
			data.Error = resp.Error
		}
		c.HTML(status, pageTemplate, data)
		return
	}

	data.Dashboard = dashboard
	c.HTML(http.StatusOK, pageTemplate, data)
}

// session resolves the visitor's dashboard session, creating one when the cookie is
// missing, invalid or points at an expired session
func (h *PageHandler) session(c *gin.Context) (model.Session, bool) {
	if id, ok := middleware.SessionID(c); ok {
		session, err := h.dashboardService.Session(id)
		if err == nil {
			return session, true
		}
		if !errors.Is(err, repository.ErrSessionNotFound) {
			c.String(http.StatusInternalServerError, err.Error())
			return model.Session{}, false
		}
	}

	session := h.dashboardService.CreateSession()
	if _, err := h.cookies.Issue(c, session.ID); err != nil {
		logger.WithError(err).Error("Failed to issue session cookie")
		h.dashboardService.EndSession(session.ID)
		c.String(http.StatusInternalServerError, "Failed to start a dashboard session")
		return model.Session{}, false
	}
	return session, true
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
