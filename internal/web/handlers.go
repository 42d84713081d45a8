// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/internscout/internal/form"
	"github.com/pdiddy/internscout/internal/session"
	"github.com/pdiddy/internscout/internal/stream"
	"github.com/pdiddy/internscout/pkg/types"
)

type feature struct {
	Title       string
	Description string
}

var features = []feature{
	{"Smart Filtering", "Automatically excludes social media posts, listicles, and generic job boards for quality results."},
	{"Real-Time Results", "Fresh internship opportunities scraped directly from company websites and trusted sources."},
	{"No Spam", "Skip the noise. Filters out duplicate postings and aggregator spam automatically."},
	{"Direct Applications", "Links go straight to the source. Apply directly on company career pages."},
}

type pageData struct {
	SessionID string
	Busy      bool
	City      string
	Industry  string
	Notice    *form.Notification
	Results   []types.CompanyResult
	Features  []feature
	MaxLength int
	Year      int
}

func (s *Server) renderPage(c *gin.Context, status int, sess *session.Session, city, industry string) {
	data := pageData{
		SessionID: sess.ID,
		Busy:      sess.Busy(),
		City:      city,
		Industry:  industry,
		Results:   sess.Results().Snapshot(),
		Features:  features,
		MaxLength: form.MaxFieldLength,
		Year:      time.Now().Year(),
	}
	if n, ok := sess.Notices().Last(); ok {
		data.Notice = &n
	}
	c.HTML(status, "index.html.tmpl", data)
}

// handleNewPage starts a new session; reloading the page resets the results.
func (s *Server) handleNewPage(c *gin.Context) {
	sess := s.newSession(c.ClientIP())
	s.renderPage(c, http.StatusOK, sess, "", "")
}

func (s *Server) handlePage(c *gin.Context) {
	sess, ok := s.session(c.Param("id"))
	if !ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	s.renderPage(c, http.StatusOK, sess, "", "")
}

func (s *Server) handleFormSubmit(c *gin.Context) {
	sess, ok := s.session(c.Param("id"))
	if !ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	city := c.PostForm("city")
	industry := c.PostForm("industry")

	_, err := sess.Controller().Start(s.baseCtx, city, industry)
	switch {
	case errors.Is(err, form.ErrBusy):
		s.renderPage(c, http.StatusConflict, sess, city, industry)
	case errors.Is(err, form.ErrValidation):
		s.renderPage(c, http.StatusUnprocessableEntity, sess, city, industry)
	case err != nil:
		s.renderPage(c, http.StatusInternalServerError, sess, city, industry)
	default:
		c.Redirect(http.StatusSeeOther, "/s/"+sess.ID)
	}
}

// rejectPage answers a throttled form submission.
func (s *Server) rejectPage(c *gin.Context) {
	c.String(http.StatusTooManyRequests, "Too many searches. Please wait a moment and try again.")
}

// --- JSON API ---

type statusResponse struct {
	ID            string              `json:"id"`
	Busy          bool                `json:"busy"`
	Count         int                 `json:"count"`
	Notifications []form.Notification `json:"notifications"`
	LastStats     stream.Stats        `json:"last_stats"`
}

type searchBody struct {
	City     string `json:"city" form:"city"`
	Industry string `json:"industry" form:"industry"`
}

func (s *Server) handleCreateSession(c *gin.Context) {
	sess := s.newSession(c.ClientIP())
	c.JSON(http.StatusCreated, gin.H{"id": sess.ID})
}

func (s *Server) apiSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := s.session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
	}
	return sess, ok
}

func (s *Server) handleStatus(c *gin.Context) {
	sess, ok := s.apiSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, statusResponse{
		ID:            sess.ID,
		Busy:          sess.Busy(),
		Count:         sess.Results().Len(),
		Notifications: sess.Notices().All(),
		LastStats:     sess.LastStats(),
	})
}

func (s *Server) handleAPISearch(c *gin.Context) {
	sess, ok := s.apiSession(c)
	if !ok {
		return
	}
	var body searchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with city and industry"})
		return
	}

	_, err := sess.Controller().Start(s.baseCtx, body.City, body.Industry)
	switch {
	case errors.Is(err, form.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, form.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "notification": form.ValidationNotice(err)})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusAccepted, gin.H{"status": "started", "stream": "/api/sessions/" + sess.ID + "/stream"})
	}
}

func (s *Server) handleResults(c *gin.Context) {
	sess, ok := s.apiSession(c)
	if !ok {
		return
	}
	recs := sess.Results().Snapshot()
	if recs == nil {
		recs = []types.CompanyResult{}
	}
	c.JSON(http.StatusOK, recs)
}

// companyEvent is the payload of a "company" event: the card fields as the
// page renders them, plus the record as received.
type companyEvent struct {
	Name     string              `json:"name"`
	Category string              `json:"category"`
	Link     string              `json:"link,omitempty"`
	Record   types.CompanyResult `json:"record"`
}

func newCompanyEvent(rec types.CompanyResult) companyEvent {
	return companyEvent{
		Name:     rec.DisplayName(),
		Category: rec.Category(),
		Link:     rec.SafeLink(),
		Record:   rec,
	}
}

// handleStream sends each record as a "company" event as it is appended,
// starting after the first `from` records, and ends with an "idle" event
// once no search is running and every record has been sent.
func (s *Server) handleStream(c *gin.Context) {
	sess, ok := s.apiSession(c)
	if !ok {
		return
	}
	sent, _ := strconv.Atoi(c.Query("from"))
	if sent < 0 {
		sent = 0
	}
	view := sess.Results()
	ctx := c.Request.Context()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(_ io.Writer) bool {
		changed := view.Changed()
		for _, rec := range view.Since(sent) {
			c.SSEvent("company", newCompanyEvent(rec))
			sent++
		}
		if !sess.Busy() && sent >= view.Len() {
			c.SSEvent("idle", gin.H{"count": sent})
			return false
		}
		select {
		case <-changed:
		case <-time.After(s.pollInterval):
		case <-ctx.Done():
			return false
		}
		return true
	})
}
