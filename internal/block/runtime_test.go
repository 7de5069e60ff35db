package block

import (
	"errors"
	"io"
	"testing"

	"github.com/leapstack-labs/leappage/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/bytebufferpool"
	"github.com/stretchr/testify/require"
)

type recordingController struct {
	BaseController
	events *[]string
}

func (c *recordingController) Init(model core.BlockModel, mode core.Mode) {
	*c.events = append(*c.events, "init:"+mode.String())
	c.BaseController.Init(model, mode)
}

func (c *recordingController) HandleRequest(req *core.Request) error {
	*c.events = append(*c.events, "handle:"+req.Param("page"))
	c.Model().Set("page", req.Param("page"))
	return nil
}

func TestRuntimeLifecycleOrder(t *testing.T) {
	var events []string
	posts := dynamicBlock("posts", `page={{ .Block.Get "page" }}`)
	posts.NewModel = func(desc *core.BlockDescriptor, data core.BlockData, mode core.Mode) (core.BlockModel, error) {
		events = append(events, "model")
		return NewBaseModel(desc, data, mode), nil
	}
	posts.NewController = func(*core.BlockDescriptor, core.Mode) (core.BlockController, error) {
		events = append(events, "controller")
		return &recordingController{events: &events}, nil
	}

	req := &core.Request{Method: "GET", Query: map[string][]string{"page": {"2"}}}
	r := NewRenderer(resolverOf(posts), core.NewRenderContext(core.ModeLive, nil, req))

	got, err := r.Render(posts, core.BlockData{}, "")
	require.NoError(t, err)
	assert.Equal(t, "page=2", got)
	assert.Equal(t, []string{"model", "controller", "init:live", "handle:2"}, events)
}

type contextController struct {
	BaseController
}

func (c *contextController) HandleRequest(req *core.Request) error {
	c.Model().Set("theme", req.Context["theme"])
	return nil
}

func TestRuntimePassesContextValues(t *testing.T) {
	themed := dynamicBlock("themed", `{{ .Block.Get "theme" }}`)
	themed.NewController = func(*core.BlockDescriptor, core.Mode) (core.BlockController, error) {
		return &contextController{}, nil
	}
	rc := core.NewRenderContext(core.ModeLive, nil, nil).WithValues(map[string]any{"theme": "default"})
	r := NewRenderer(resolverOf(themed), rc)

	got, err := r.Render(themed, core.BlockData{}, "")
	require.NoError(t, err)
	assert.Equal(t, "default", got)
}

func TestRuntimeFreshInstancesPerRender(t *testing.T) {
	var models int
	counter := dynamicBlock("counter", `{{ .Block.Get "n" }}`)
	counter.NewModel = func(desc *core.BlockDescriptor, data core.BlockData, mode core.Mode) (core.BlockModel, error) {
		models++
		m := NewBaseModel(desc, data, mode)
		m.Set("n", models)
		return m, nil
	}
	r := liveRenderer(resolverOf(counter))

	first, err := r.Render(counter, core.BlockData{}, "")
	require.NoError(t, err)
	second, err := r.Render(counter, core.BlockData{}, "")
	require.NoError(t, err)

	assert.Equal(t, "1", first)
	assert.Equal(t, "2", second)
}

func TestRuntimeLoadFailures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("model factory", func(t *testing.T) {
		desc := dynamicBlock("broken", "x")
		desc.ModelResource = "model.star"
		desc.NewModel = func(*core.BlockDescriptor, core.BlockData, core.Mode) (core.BlockModel, error) {
			return nil, boom
		}

		_, err := liveRenderer(resolverOf(desc)).Render(desc, core.BlockData{}, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrImplementationLoad))
		assert.True(t, errors.Is(err, boom))

		var loadErr *core.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, "model.star", loadErr.Resource)
	})

	t.Run("controller factory", func(t *testing.T) {
		desc := dynamicBlock("broken", "x")
		desc.NewController = func(*core.BlockDescriptor, core.Mode) (core.BlockController, error) {
			return nil, &core.LoadError{Slug: "broken", Message: "no handle_request"}
		}

		_, err := liveRenderer(resolverOf(desc)).Render(desc, core.BlockData{}, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrImplementationLoad))
		assert.Contains(t, err.Error(), "no handle_request")
	})
}

type failingController struct {
	BaseController
}

func (failingController) HandleRequest(*core.Request) error {
	return errors.New("controller failed")
}

func TestRuntimeControllerErrorPropagates(t *testing.T) {
	desc := dynamicBlock("bad", "never")
	desc.NewController = func(*core.BlockDescriptor, core.Mode) (core.BlockController, error) { return &failingController{}, nil }

	_, err := liveRenderer(resolverOf(desc)).Render(desc, core.BlockData{}, "")
	require.EqualError(t, err, "controller failed")
}

func TestViewScopeIsolation(t *testing.T) {
	tests := []struct {
		name string
		view string
	}{
		{"controller is not visible", `{{ .Controller }}`},
		{"request is not visible", `{{ .Request }}`},
		{"raw data is not visible", `{{ .Data }}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := dynamicBlock("leaky", tt.view)
			_, err := liveRenderer(resolverOf(desc)).Render(desc, core.BlockData{}, "")
			require.Error(t, err)
		})
	}
}

// countingPool tracks buffers handed out and not yet returned.
type countingPool struct {
	bytebufferpool.Pool
	gets, open int
}

func (p *countingPool) Get() *bytebufferpool.ByteBuffer {
	p.gets++
	p.open++
	return p.Pool.Get()
}

func (p *countingPool) Put(b *bytebufferpool.ByteBuffer) {
	p.open--
	p.Pool.Put(b)
}

func TestCaptureReleasedOnViewFailure(t *testing.T) {
	desc := dynamicBlock("bad", `<p>partial {{ .Nope }}</p>`)
	ok := dynamicBlock("ok", `<p>ok</p>`)
	r := liveRenderer(resolverOf(desc, ok))
	pool := &countingPool{}
	r.runtime.buffers = pool

	_, err := r.Render(desc, core.BlockData{}, "")
	require.Error(t, err)
	assert.Equal(t, 1, pool.gets)
	assert.Zero(t, pool.open)

	got, err := r.Render(ok, core.BlockData{}, "")
	require.NoError(t, err)
	assert.Equal(t, "<p>ok</p>", got)
	assert.Equal(t, 2, pool.gets)
	assert.Zero(t, pool.open)
}

func TestCaptureReleasedOnPanic(t *testing.T) {
	pool := &countingPool{}
	assert.Panics(t, func() {
		_, _ = capture(pool, func(w io.Writer) error {
			_, _ = io.WriteString(w, "partial")
			panic("view exploded")
		})
	})
	assert.Equal(t, 1, pool.gets)
	assert.Zero(t, pool.open)

	got, err := capture(pool, func(w io.Writer) error {
		_, err := io.WriteString(w, "fresh")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got, "a reused buffer starts empty")
}

func TestViewParseError(t *testing.T) {
	desc := dynamicBlock("bad", `{{ if }}`)
	_, err := liveRenderer(resolverOf(desc)).Render(desc, core.BlockData{}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse view")
}

func TestDict(t *testing.T) {
	m, err := dict("a", 1, "b", "two")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": "two"}, m)

	_, err = dict("a")
	require.Error(t, err)

	_, err = dict(1, 2)
	require.Error(t, err)
}
