package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Walk hooks
	w := NoopWalkHooks{}
	w.OnWalkStart(ctx, "run-1", 3)
	w.OnNodeEvaluated(ctx, "run-1", "node(0v1)", time.Millisecond, nil)
	w.OnCacheOverwrite(ctx, "run-1", "node(0v1)", "out(0v1)")
	w.OnWalkComplete(ctx, "run-1", 3, time.Second, nil)

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "scene.toml")
	p.OnLoadComplete(ctx, "scene.toml", 12, time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "outputs")
	c.OnCacheMiss(ctx, "outputs")
	c.OnCacheSet(ctx, "outputs", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/eval")
	h.OnResponse(ctx, "POST", "/v1/eval", 200, time.Second)
	h.OnError(ctx, "POST", "/v1/eval", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Walk().(NoopWalkHooks); !ok {
		t.Error("Walk() should return NoopWalkHooks by default")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customWalk := &testWalkHooks{}
	SetWalkHooks(customWalk)
	if Walk() != customWalk {
		t.Error("SetWalkHooks should set custom hooks")
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

	// Reset and verify
	Reset()
	if _, ok := Walk().(NoopWalkHooks); !ok {
		t.Error("Reset() should restore NoopWalkHooks")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testWalkHooks{}
	SetWalkHooks(custom)

	// Setting nil should be ignored
	SetWalkHooks(nil)

	if Walk() != custom {
		t.Error("SetWalkHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testWalkHooks struct{ NoopWalkHooks }
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
