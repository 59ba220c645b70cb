package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/storyline/pkg/buildinfo"
	"github.com/matzehuels/storyline/pkg/mockup"
	"github.com/matzehuels/storyline/pkg/pipeline"
	"github.com/matzehuels/storyline/pkg/session"
	"github.com/matzehuels/storyline/pkg/timeline"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// =============================================================================
// Misc
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, buildinfo.Get())
}

type formatResponse struct {
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	out := make([]formatResponse, len(mockup.Formats))
	for i, f := range mockup.Formats {
		width, height := f.Size()
		out[i] = formatResponse{Slug: f.Slug(), Name: f.DisplayName(), Width: width, Height: height}
	}
	s.writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// Events
// =============================================================================

type eventRequest struct {
	Title string `json:"title"`
	Place string `json:"place"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func (req eventRequest) event() (timeline.Event, error) {
	start, err := timeline.ParseTime("start", req.Start)
	if err != nil {
		return timeline.Event{}, err
	}
	end, err := timeline.ParseTime("end", req.End)
	if err != nil {
		return timeline.Event{}, err
	}
	return timeline.Event{Title: req.Title, Place: req.Place, Start: start, End: end}, nil
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Events())
}

func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	e, err := req.event()
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := s.session(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	stored, err := sess.AddEvent(e)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.DeleteEvent(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	n := sess.ClearEvents()
	s.writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// =============================================================================
// Style
// =============================================================================

type styleResponse struct {
	timeline.StyleSettings
	BackgroundImage bool `json:"background_image"`
}

func newStyleResponse(st timeline.Style) styleResponse {
	return styleResponse{StyleSettings: st.Settings(), BackgroundImage: st.BackgroundImage != nil}
}

func (s *Server) handleGetStyle(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newStyleResponse(sess.Style()))
}

func (s *Server) handleUpdateStyle(w http.ResponseWriter, r *http.Request) {
	var settings timeline.StyleSettings
	if err := decodeJSON(r, &settings); err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := s.session(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	st, err := sess.UpdateStyle(settings)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newStyleResponse(st))
}

func (s *Server) handleResetStyle(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	st, err := sess.ResetStyle(r.URL.Query().Get("field"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newStyleResponse(st))
}

func (s *Server) handleUploadBackground(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid upload"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "image file is required"))
		return
	}
	defer file.Close()

	if err := errs.ValidateImageFilename(header.Filename); err != nil {
		s.writeError(w, err)
		return
	}
	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidInputType, err, "%s is not a readable image", header.Filename))
		return
	}

	var opacity *float64
	if v := r.FormValue("opacity"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, errs.Wrap(errs.ErrCodeInvalidStyle, err, "opacity must be a number"))
			return
		}
		opacity = &f
	}

	sess, err := s.session(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.SetBackground(img, opacity); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newStyleResponse(sess.Style()))
}

func (s *Server) handleDeleteBackground(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.SetBackground(nil, nil); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newStyleResponse(sess.Style()))
}

// =============================================================================
// Settings
// =============================================================================

type settingsBody struct {
	GroupBy string `json:"group_by,omitempty"`
	Format  string `json:"format,omitempty"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settingsBody{GroupBy: string(sess.GroupBy()), Format: sess.Format().Slug()})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body settingsBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := s.session(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if body.GroupBy != "" {
		g, err := timeline.ParseGroupBy(body.GroupBy)
		if err == nil {
			err = sess.SetGroupBy(g)
		}
		if err != nil {
			s.writeError(w, err)
			return
		}
	}
	if body.Format != "" {
		f, err := mockup.ParseFormat(body.Format)
		if err == nil {
			err = sess.SetFormat(f)
		}
		if err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, settingsBody{GroupBy: string(sess.GroupBy()), Format: sess.Format().Slug()})
}

// =============================================================================
// Images
// =============================================================================

func (s *Server) handleMockup(w http.ResponseWriter, r *http.Request) {
	s.serveImage(w, r, false)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	s.serveImage(w, r, true)
}

func (s *Server) serveImage(w http.ResponseWriter, r *http.Request, chartOnly bool) {
	ctx := r.Context()
	sess, err := s.session(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts, err := imageOptions(r, sess)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts.ChartOnly = chartOnly
	opts.Fonts = s.fonts

	result, err := s.runnerFor(sess).Execute(ctx, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	disposition := "attachment"
	if chartOnly {
		disposition = "inline"
	}
	cacheStatus := "MISS"
	if result.CacheHit {
		cacheStatus = "HIT"
	}
	w.Header().Set("Content-Type", result.MIMEType)
	w.Header().Set("Content-Disposition", disposition+"; filename="+result.Filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.PNG)))
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.PNG)
}

// imageOptions builds pipeline options from the session, overridden by the
// format, group_by, width and height query parameters.
func imageOptions(r *http.Request, sess *session.Session) (pipeline.Options, error) {
	opts := sess.Options()
	q := r.URL.Query()

	if v := q.Get("format"); v != "" {
		f, err := mockup.ParseFormat(v)
		if err != nil {
			return opts, err
		}
		opts.Format = f
	}
	if v := q.Get("group_by"); v != "" {
		g, err := timeline.ParseGroupBy(v)
		if err != nil {
			return opts, err
		}
		opts.GroupBy = g
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"width", &opts.TargetWidth},
		{"height", &opts.TargetHeight},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, errs.New(errs.ErrCodeInvalidInput, "%s must be a positive integer, got %q", p.name, v)
		}
		*p.dst = n
	}
	return opts, nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}
