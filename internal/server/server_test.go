package server

import (
	"bytes"
	"encoding/json"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/storyline/pkg/cache"
	"github.com/matzehuels/storyline/pkg/fonts"
	"github.com/matzehuels/storyline/pkg/pipeline"
	"github.com/matzehuels/storyline/pkg/session"
	"github.com/matzehuels/storyline/pkg/timeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	runner := pipeline.NewRunner(cache.NewMemoryCache(0), nil, nil)
	srv := New(runner, WithFonts(fonts.NewResolver(false)))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func addEvent(t *testing.T, base, title, place, start, end string) timeline.Event {
	t.Helper()
	body := `{"title":"` + title + `","place":"` + place + `","start":"` + start + `","end":"` + end + `"}`
	resp := do(t, http.MethodPost, base+"/api/events", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /api/events status = %d, want 201", resp.StatusCode)
	}
	var e timeline.Event
	decode(t, resp, &e)
	return e
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestEventLifecycle(t *testing.T) {
	ts := newTestServer(t)

	lunch := addEvent(t, ts.URL, "Lunch", "Cafe", "2024-05-01 12:00", "2024-05-01 13:00")
	addEvent(t, ts.URL, "Meeting", "Office", "2024-05-01T13:30:00Z", "2024-05-01T15:00:00Z")

	var events []timeline.Event
	decode(t, do(t, http.MethodGet, ts.URL+"/api/events", ""), &events)
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}

	resp := do(t, http.MethodGet, ts.URL+"/mockup.png?format=square_post&group_by=place", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /mockup.png status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); got != "attachment; filename=instagram_mockup_square_post.png" {
		t.Errorf("Content-Disposition = %q", got)
	}
	cfg, err := png.DecodeConfig(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1080 || cfg.Height != 1080 {
		t.Errorf("mockup size = %dx%d, want 1080x1080", cfg.Width, cfg.Height)
	}

	if resp := do(t, http.MethodDelete, ts.URL+"/api/events/"+lunch.ID, ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE event status = %d, want 204", resp.StatusCode)
	}
	if resp := do(t, http.MethodDelete, ts.URL+"/api/events/"+lunch.ID, ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, want 404", resp.StatusCode)
	}
	if resp := do(t, http.MethodDelete, ts.URL+"/api/events", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("DELETE all status = %d, want 200", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/mockup.png", "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("empty mockup status = %d, want 409", resp.StatusCode)
	}
	var warn warningResponse
	decode(t, resp, &warn)
	if warn.Warning != timeline.EmptyInputMessage {
		t.Errorf("warning = %q", warn.Warning)
	}
}

func TestAddEventValidation(t *testing.T) {
	ts := newTestServer(t)
	tests := []string{
		`{"title":"","place":"Cafe","start":"2024-05-01 12:00","end":"2024-05-01 13:00"}`,
		`{"title":"Lunch","place":"Cafe","start":"","end":"2024-05-01 13:00"}`,
		`{"title":"Lunch","place":"Cafe","start":"noon","end":"2024-05-01 13:00"}`,
		`{"title":"Lunch","colour":"red"}`,
		`not json`,
	}
	for _, body := range tests {
		resp := do(t, http.MethodPost, ts.URL+"/api/events", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("POST %s status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestMockupQueryErrors(t *testing.T) {
	ts := newTestServer(t)
	addEvent(t, ts.URL, "Lunch", "Cafe", "2024-05-01 12:00", "2024-05-01 13:00")

	for _, q := range []string{"format=reel", "group_by=weather", "width=-3", "height=abc", "width=500000&height=500000"} {
		resp := do(t, http.MethodGet, ts.URL+"/mockup.png?"+q, "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("GET /mockup.png?%s status = %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestMockupCache(t *testing.T) {
	ts := newTestServer(t)
	addEvent(t, ts.URL, "Lunch", "Cafe", "2024-05-01 12:00", "2024-05-01 13:00")

	first := do(t, http.MethodGet, ts.URL+"/mockup.png", "")
	second := do(t, http.MethodGet, ts.URL+"/mockup.png", "")
	if got := first.Header.Get("X-Cache"); got != "MISS" {
		t.Errorf("first X-Cache = %q, want MISS", got)
	}
	if got := second.Header.Get("X-Cache"); got != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", got)
	}
}

func TestChart(t *testing.T) {
	ts := newTestServer(t)
	addEvent(t, ts.URL, "Lunch", "Cafe", "2024-05-01 12:00", "2024-05-01 13:00")

	resp := do(t, http.MethodGet, ts.URL+"/chart.png", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	cfg, err := png.DecodeConfig(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	def := timeline.DefaultStyle()
	if cfg.Width != def.Width || cfg.Height != def.Height {
		t.Errorf("chart size = %dx%d, want %dx%d", cfg.Width, cfg.Height, def.Width, def.Height)
	}
}

func TestStyle(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodPut, ts.URL+"/api/style", `{"bar_color":"palette","grid_width":2}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT /api/style status = %d", resp.StatusCode)
	}
	var st styleResponse
	decode(t, resp, &st)
	if *st.BarColor != "palette" || *st.GridWidth != 2 {
		t.Errorf("style = %s/%v", *st.BarColor, *st.GridWidth)
	}

	if resp := do(t, http.MethodPut, ts.URL+"/api/style", `{"bar_opacity":7}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad opacity status = %d, want 400", resp.StatusCode)
	}
	if resp := do(t, http.MethodPut, ts.URL+"/api/style", `{"background_color":"blue-ish"}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad color status = %d, want 400", resp.StatusCode)
	}
	if resp := do(t, http.MethodPut, ts.URL+"/api/style", `{"width":200000,"height":200000}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("oversized chart status = %d, want 400", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, ts.URL+"/api/style/reset?field=grid_width", "")
	decode(t, resp, &st)
	if *st.GridWidth != timeline.DefaultStyle().GridWidth {
		t.Errorf("grid_width = %v after reset", *st.GridWidth)
	}
	if *st.BarColor != "palette" {
		t.Errorf("bar_color = %q, want untouched palette", *st.BarColor)
	}

	if resp := do(t, http.MethodPost, ts.URL+"/api/style/reset?field=nope", ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("reset unknown field status = %d, want 400", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, ts.URL+"/api/style/reset", "")
	decode(t, resp, &st)
	if *st.BarColor != timeline.DefaultStyle().BarColor.String() {
		t.Errorf("bar_color = %q after full reset", *st.BarColor)
	}
}

func upload(t *testing.T, url, filename string, data []byte, opacity string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(data)
	if opacity != "" {
		_ = mw.WriteField("opacity", opacity)
	}
	_ = mw.Close()

	req, _ := http.NewRequest(http.MethodPut, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestUploadBackground(t *testing.T) {
	ts := newTestServer(t)
	var img bytes.Buffer
	if err := imaging.Encode(&img, imaging.New(16, 16, color.NRGBA{0, 0, 255, 255}), imaging.PNG); err != nil {
		t.Fatal(err)
	}

	resp := upload(t, ts.URL+"/api/style/background", "beach.png", img.Bytes(), "0.3")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status = %d, want 200", resp.StatusCode)
	}
	var st styleResponse
	decode(t, resp, &st)
	if !st.BackgroundImage || *st.BackgroundImageOpacity != 0.3 {
		t.Errorf("background = %v @ %v", st.BackgroundImage, *st.BackgroundImageOpacity)
	}

	tests := []struct {
		name     string
		filename string
		data     []byte
		opacity  string
	}{
		{"wrong type", "notes.gif", img.Bytes(), ""},
		{"not an image", "beach.png", []byte("nope"), ""},
		{"bad opacity", "beach.png", img.Bytes(), "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if resp := upload(t, ts.URL+"/api/style/background", tt.filename, tt.data, tt.opacity); resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}

	resp = do(t, http.MethodDelete, ts.URL+"/api/style/background", "")
	decode(t, resp, &st)
	if st.BackgroundImage {
		t.Error("background not removed")
	}
}

func TestFormatsAndSettings(t *testing.T) {
	ts := newTestServer(t)

	var formats []formatResponse
	decode(t, do(t, http.MethodGet, ts.URL+"/api/formats", ""), &formats)
	if len(formats) != 4 || formats[0].Slug != "story" || formats[3].Height != 566 {
		t.Errorf("formats = %+v", formats)
	}

	var settings settingsBody
	decode(t, do(t, http.MethodPut, ts.URL+"/api/settings", `{"group_by":"place","format":"Vertical post"}`), &settings)
	if settings.GroupBy != "place" || settings.Format != "vertical_post" {
		t.Errorf("settings = %+v", settings)
	}
	if resp := do(t, http.MethodPut, ts.URL+"/api/settings", `{"format":"reel"}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad format status = %d, want 400", resp.StatusCode)
	}

	addEvent(t, ts.URL, "Lunch", "Cafe", "2024-05-01 12:00", "2024-05-01 13:00")
	resp := do(t, http.MethodGet, ts.URL+"/mockup.png", "")
	if got := resp.Header.Get("Content-Disposition"); got != "attachment; filename=instagram_mockup_vertical_post.png" {
		t.Errorf("Content-Disposition = %q", got)
	}
}

func TestPreloadedSession(t *testing.T) {
	sess := session.New(0)
	if _, err := sess.AddEvent(timeline.Event{
		Title: "Lunch", Place: "Cafe",
		Start: mustTime(t, "2024-05-01 12:00"), End: mustTime(t, "2024-05-01 13:00"),
	}); err != nil {
		t.Fatal(err)
	}
	srv := New(nil, WithSession(sess), WithFonts(fonts.NewResolver(false)))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var events []timeline.Event
	decode(t, do(t, http.MethodGet, ts.URL+"/api/events", ""), &events)
	if len(events) != 1 || events[0].Title != "Lunch" {
		t.Errorf("events = %+v", events)
	}
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := timeline.ParseTime("time", s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}
