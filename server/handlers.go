package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seo-optimizer/reportview/middleware"
	"github.com/seo-optimizer/reportview/view"
)

const SessionCookie = "reportview_session"

type submitRequest struct {
	URL   string `form:"url" json:"url"`
	UseAI bool   `form:"useAI" json:"use_ai"`
}

// session returns the caller's view and refreshes the session cookie.
func (s *Server) session(c *gin.Context) *view.ReportView {
	if v, ok := c.Get(SessionCookie); ok {
		return v.(*view.ReportView)
	}

	id, _ := c.Cookie(SessionCookie)
	v, _ := s.registry.Get(id)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, v.ID(), int(s.config.SessionTTL.Seconds()), "/", "", c.Request.TLS != nil, true)
	c.Set(SessionCookie, v)
	return v
}

// isFragment reports whether htmx asked for the #reportView fragment only.
func isFragment(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

func (s *Server) render(c *gin.Context, v *view.ReportView, status int) {
	page, err := v.Page(s.formatter, s.now())
	if err != nil {
		s.logger.Error("failed to render report view", zap.String("session", v.ID()), zap.Error(err))
		c.String(http.StatusInternalServerError, middleware.MsgUnexpected)
		return
	}

	name := "page"
	if isFragment(c) {
		name = "reportView"
	}
	c.HTML(status, name, page)
}

func (s *Server) index(c *gin.Context) {
	v := s.session(c)
	if tab := c.Query("tab"); tab != "" {
		v.ActivateTab(tab)
	}
	s.render(c, v, http.StatusOK)
}

func (s *Server) tab(c *gin.Context) {
	v := s.session(c)
	if !v.ActivateTab(c.Param("tab")) {
		s.logger.Debug("ignoring unknown tab", zap.String("tab", c.Param("tab")))
	}
	s.render(c, v, http.StatusOK)
}

func (s *Server) submit(c *gin.Context) {
	v := s.session(c)

	var req submitRequest
	if err := c.ShouldBind(&req); err != nil {
		s.logger.Debug("malformed submission", zap.Error(err))
	}

	start := s.now()
	outcome := s.orchestrator.Submit(c.Request.Context(), v, view.Submission{URL: req.URL, UseAI: req.UseAI})
	if s.traffic != nil && outcome != view.OutcomeInvalidInput {
		s.traffic.TrackSubmission(view.NormalizeURL(req.URL), s.now().Sub(start), outcome != view.OutcomeSuccess)
	}

	s.render(c, v, http.StatusOK)
}

// renderFailure shows the generic banner after a recovered panic.
func (s *Server) renderFailure(c *gin.Context) {
	v := s.session(c)
	v.Notify(view.MsgAnalysisFailed, s.now())
	s.render(c, v, http.StatusInternalServerError)
}

func (s *Server) renderRateLimited(c *gin.Context) {
	v := s.session(c)
	v.Notify(middleware.MsgRateLimited, s.now())
	s.render(c, v, http.StatusTooManyRequests)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.registry.Len(),
		"time":     s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) statistics(c *gin.Context) {
	out := gin.H{}
	if s.traffic != nil {
		for k, v := range s.traffic.Snapshot(s.config.DevMode) {
			out[k] = v
		}
	}
	if s.stats != nil {
		out["currentMonth"] = s.stats.GetCurrentStats()
		if s.config.DevMode {
			out["months"] = s.stats.GetAllMonths()
		}
	}
	c.JSON(http.StatusOK, out)
}
