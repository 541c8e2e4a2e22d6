package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"statsdash/internal/middleware"
	"statsdash/internal/model"
	"statsdash/internal/service"
	"statsdash/pkg/response"
)

// AnalyzeRequest is the token submitted for analysis
type AnalyzeRequest struct {
	Token string `json:"token" binding:"required" example:"tok_live_123"`
}

// SessionResponse identifies a freshly created dashboard session
type SessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
}

// DashboardState is the session's current result
type DashboardState struct {
	InFlight  bool             `json:"in_flight"`
	Dashboard *model.Dashboard `json:"dashboard"`
}

type DashboardHandler struct {
	dashboardService service.DashboardService
	cookies          *middleware.SessionCookies
}

func NewDashboardHandler(dashboardService service.DashboardService, cookies *middleware.SessionCookies) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, cookies: cookies}
}

// RegisterRoutes binds the JSON dashboard endpoints
func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	dashboard := router.Group("/api/dashboard")
	{
		dashboard.POST("/sessions", h.CreateSession)

		session := dashboard.Group("", h.cookies.Require())
		session.GET("", h.GetDashboard)
		session.POST("/analyze", h.Analyze)
		session.DELETE("/sessions/current", h.EndSession)
	}
}

// CreateSession starts a dashboard session
// @Summary      Create dashboard session
// @Description  Creates a session, sets the signed session cookie and returns the token for header-based clients
// @Tags         dashboard
// @Produce      json
// @Success      201  {object}  response.Response{data=handler.SessionResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/dashboard/sessions [post]
func (h *DashboardHandler) CreateSession(c *gin.Context) {
	session := h.dashboardService.CreateSession()
	token, err := h.cookies.Issue(c, session.ID)
	if err != nil {
		h.dashboardService.EndSession(session.ID)
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, SessionResponse{
		SessionID: session.ID,
		Token:     token,
	}))
}

// Analyze fetches statistics for a token and derives the dashboard
// @Summary      Analyze token
// @Description  Fetches payment and withdrawal statistics for the token and returns the derived dashboard
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Param        payload  body      handler.AnalyzeRequest  true  "Token"
// @Success      200      {object}  response.Response{data=model.Dashboard}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Security     SessionCookie
// @Router       /api/dashboard/analyze [post]
func (h *DashboardHandler) Analyze(c *gin.Context) {
	sessionID, _ := middleware.SessionID(c)

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorKind(http.StatusBadRequest, response.KindBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	dashboard, err := h.dashboardService.Analyze(c.Request.Context(), sessionID, req.Token)
	if err != nil {
		_ = c.Error(err)
		c.JSON(errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}

// GetDashboard returns the latest dashboard of the session
// @Summary      Current dashboard
// @Description  Returns the last successful dashboard of the session, or 404 when there is none
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  response.Response{data=handler.DashboardState}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Security     SessionCookie
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	sessionID, _ := middleware.SessionID(c)

	session, err := h.dashboardService.Session(sessionID)
	if err != nil {
		c.JSON(errorResponse(err))
		return
	}
	if session.Result == nil {
		msg := "No dashboard for this session yet"
		if session.InFlight {
			msg = "A request is in progress for this session"
		}
		c.JSON(http.StatusNotFound, response.ErrorKind(http.StatusNotFound, response.KindNotFound, msg))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, DashboardState{
		InFlight:  session.InFlight,
		Dashboard: session.Result,
	}))
}

// EndSession tears the session down
// @Summary      End dashboard session
// @Description  Drops the session and any dashboard it holds, and clears the session cookie
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Security     SessionCookie
// @Router       /api/dashboard/sessions/current [delete]
func (h *DashboardHandler) EndSession(c *gin.Context) {
	sessionID, _ := middleware.SessionID(c)
	h.cookies.Clear(c)

	if !h.dashboardService.EndSession(sessionID) {
		c.JSON(http.StatusNotFound, response.ErrorKind(http.StatusNotFound, response.KindNotFound, "Dashboard session not found or expired"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Session ended"}))
}
