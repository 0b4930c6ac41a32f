package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/zach-dev-chunker/internal/chunker"
	"github.com/Zachkp/zach-dev-chunker/internal/connectivity"
	"github.com/Zachkp/zach-dev-chunker/internal/logger"
)

const viewKey = "view"

type settingsForm struct {
	MaxChars        string `form:"max_chars"`
	Method          string `form:"method" binding:"required,oneof=smart simple"`
	CleanTranscript bool   `form:"clean_transcript"`
}

type textForm struct {
	InputText string `form:"input_text"`
}

// page renders the whole chunker. A visitor without a live view gets a new
// one, which starts its first health probe.
func (s *Server) page(c *gin.Context) {
	v, ok := s.lookupView(c)
	if !ok {
		v = s.views.create()
		v.Activate()
		logger.FromContext(requestContext(c)).Info("chunker view opened", "view", v.ID)
	}
	s.setViewCookie(c, v)

	c.HTML(http.StatusOK, "chunker.html", gin.H{
		"title":     PageTitle,
		"intro":     ChunkerIntro,
		"hint":      DisconnectedHint,
		"cleanText": CleanTranscriptLabel,
		"maxHint":   MaxCharsHint,
		"methods":   methodOptions,
		"state":     newStateView(v.Chunker.State()),
	})
}

func (s *Server) status(c *gin.Context) {
	s.renderStatus(c, view(c))
}

// refresh re-probes and answers once that probe resolves.
func (s *Server) refresh(c *gin.Context) {
	v := view(c)
	v.Refresh()
	s.renderStatus(c, v)
}

func (s *Server) settings(c *gin.Context) {
	v := view(c)
	var form settingsForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	method, _ := chunker.ParseMethod(form.Method)
	if err := v.Chunker.UpdateSettings(form.MaxChars, method, form.CleanTranscript); err != nil {
		if errors.Is(err, chunker.ErrSubmitInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": "settings are locked while a request is in flight"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.HTML(http.StatusOK, "settings.html", gin.H{
		"state":     newStateView(v.Chunker.State()),
		"methods":   methodOptions,
		"cleanText": CleanTranscriptLabel,
		"maxHint":   MaxCharsHint,
	})
}

func (s *Server) editText(c *gin.Context) {
	v := view(c)
	var form textForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v.Chunker.Edit(form.InputText)
	s.renderResults(c, v)
}

// clear resets the text and asks HTMX to reload the page from the new state.
func (s *Server) clear(c *gin.Context) {
	view(c).Chunker.Clear()
	c.Header("HX-Refresh", "true")
	c.Status(http.StatusNoContent)
}

// submit starts a chunk request. The text area is sent along so a submit
// never races the debounced text update.
func (s *Server) submit(c *gin.Context) {
	v := view(c)
	if text, ok := c.GetPostForm("input_text"); ok {
		st := v.Chunker.State()
		if st.Phase != chunker.PhaseSubmitting && text != st.Config.InputText {
			v.Chunker.Edit(text)
		}
	}

	if _, err := v.Chunker.Submit(requestContext(c)); err != nil && !errors.Is(err, chunker.ErrSubmitInFlight) {
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		return
	}
	s.renderResults(c, v)
}

func (s *Server) result(c *gin.Context) {
	s.renderResults(c, view(c))
}

// download delivers the export as a text attachment. There is nothing to
// export until a request has succeeded.
func (s *Server) download(c *gin.Context) {
	st := view(c).Chunker.State()
	if st.Result == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no chunking result to export"})
		return
	}

	now := s.now()
	c.Header("Content-Disposition", `attachment; filename="`+chunker.ExportFilename(now)+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(chunker.ExportText(st.Result, now)))
}

// renderStatus answers with the status fragment. A resolved status also
// tells the results fragment to re-render, since submit depends on it.
func (s *Server) renderStatus(c *gin.Context, v *View) {
	if v.Monitor.Status() != connectivity.Checking {
		c.Header("HX-Trigger", "statusChanged")
	}
	c.HTML(http.StatusOK, "status.html", gin.H{
		"state": newStateView(v.Chunker.State()),
		"hint":  DisconnectedHint,
	})
}

func (s *Server) renderResults(c *gin.Context, v *View) {
	c.HTML(http.StatusOK, "results.html", gin.H{
		"state": newStateView(v.Chunker.State()),
	})
}

func (s *Server) lookupView(c *gin.Context) (*View, bool) {
	id, err := c.Cookie(viewCookie)
	if err != nil || id == "" {
		return nil, false
	}
	return s.views.get(id)
}

// requireView aborts fragment requests whose view has expired; HTMX then
// reloads the page, which opens a fresh one.
func (s *Server) requireView() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := s.lookupView(c)
		if !ok {
			c.Header("HX-Refresh", "true")
			c.AbortWithStatusJSON(http.StatusGone, gin.H{"error": "chunker view expired"})
			return
		}
		s.setViewCookie(c, v)
		c.Set(viewKey, v)
		c.Next()
	}
}

// setViewCookie keeps the cookie alive as long as the view it names.
func (s *Server) setViewCookie(c *gin.Context, v *View) {
	c.SetCookie(viewCookie, v.ID, s.views.opts.cookieMaxAge(), "/", "", false, true)
}

func view(c *gin.Context) *View {
	return c.MustGet(viewKey).(*View)
}
