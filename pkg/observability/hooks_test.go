package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnRenderStart(ctx, 3, "place")
	p.OnRenderComplete(ctx, 3, time.Second, nil)
	p.OnComposeStart(ctx, "story")
	p.OnComposeComplete(ctx, "story", time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "mockup")
	c.OnCacheMiss(ctx, "chart")
	c.OnCacheSet(ctx, "mockup", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/mockup.png")
	h.OnResponse(ctx, "GET", "/mockup.png", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

func TestLogHooks(t *testing.T) {
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	NewLogHooks(logger).RegisterAll()

	ctx := context.Background()
	Pipeline().OnRenderStart(ctx, 2, "place")
	Pipeline().OnComposeComplete(ctx, "story", time.Millisecond, errors.New("boom"))
	Cache().OnCacheHit(ctx, "mockup")
	HTTP().OnResponse(ctx, "GET", "/health", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"render start", "compose failed", "cache hit", "response"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
