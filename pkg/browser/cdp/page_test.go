package cdp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/fullshot/pkg/screenshot"
	"github.com/entrhq/fullshot/pkg/sizes"
)

type evalCall struct {
	js   string
	args []interface{}
}

type fakeTarget struct {
	evals       []evalCall
	evalResult  string
	evalErr     error
	shot        []byte
	navigated   string
	navDeadline time.Time
	navErr      error
	viewport    [3]float64
	closed      int
}

func (f *fakeTarget) Eval(ctx context.Context, js string, args ...interface{}) (string, error) {
	f.evals = append(f.evals, evalCall{js: js, args: args})
	return f.evalResult, f.evalErr
}

func (f *fakeTarget) Screenshot(ctx context.Context) ([]byte, error) {
	return f.shot, nil
}

func (f *fakeTarget) Navigate(ctx context.Context, url string) error {
	f.navigated = url
	f.navDeadline, _ = ctx.Deadline()
	return f.navErr
}

func (f *fakeTarget) SetViewport(ctx context.Context, width, height int, scale float64) error {
	f.viewport = [3]float64{float64(width), float64(height), scale}
	return nil
}

func (f *fakeTarget) URL() string { return f.navigated }

func (f *fakeTarget) Close() error {
	f.closed++
	return nil
}

func testPage(t *fakeTarget) *Page {
	return newPage(t, Options{Timeout: time.Second, DeviceScaleFactor: 2}, t.Close)
}

func TestPage_ImplementsCapabilities(t *testing.T) {
	_, err := screenshot.FromHandle(testPage(&fakeTarget{}))
	require.NoError(t, err)
}

func TestPage_Navigate(t *testing.T) {
	t.Run("bounded by the page timeout", func(t *testing.T) {
		ft := &fakeTarget{}
		start := time.Now()
		require.NoError(t, testPage(ft).Navigate(context.Background(), "https://example.com/a"))

		assert.Equal(t, "https://example.com/a", ft.navigated)
		assert.True(t, ft.navDeadline.After(start) && ft.navDeadline.Before(start.Add(2*time.Second)),
			"deadline %v", ft.navDeadline)
	})

	t.Run("dash is a no-op", func(t *testing.T) {
		ft := &fakeTarget{}
		require.NoError(t, testPage(ft).Navigate(context.Background(), "-"))
		assert.Empty(t, ft.navigated)
	})

	t.Run("rejects non urls", func(t *testing.T) {
		err := testPage(&fakeTarget{}).Navigate(context.Background(), "/tmp/page.html")
		assert.ErrorIs(t, err, sizes.ErrConfiguration)
	})

	t.Run("wraps failures", func(t *testing.T) {
		boom := errors.New("net::ERR_CONNECTION_REFUSED")
		err := testPage(&fakeTarget{navErr: boom}).Navigate(context.Background(), "http://localhost:1")
		assert.ErrorIs(t, err, boom)
	})
}

func TestPage_ResizeViewport(t *testing.T) {
	ft := &fakeTarget{}
	p := testPage(ft)

	require.NoError(t, p.ResizeViewport(context.Background(), sizes.Size{Width: 800, Height: 600}))
	assert.Equal(t, [3]float64{800, 600, 2}, ft.viewport)
	assert.Equal(t, sizes.Size{Width: 800, Height: 600}, p.Viewport())

	assert.ErrorIs(t, p.ResizeViewport(context.Background(), sizes.Size{}), sizes.ErrConfiguration)
}

func TestPage_Scripts(t *testing.T) {
	ft := &fakeTarget{evalResult: `{"documentScrollHeight":2000,"devicePixelRatio":"1.5"}`}
	p := testPage(ft)

	m, err := p.MeasurePage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(2000), m.Heights.Max())
	require.NotNil(t, m.DevicePixelRatio)
	assert.Equal(t, 1.5, *m.DevicePixelRatio)

	require.NoError(t, p.ScrollTo(context.Background(), 300))
	require.NoError(t, p.SetCookie(context.Background(), "a=b"))

	require.Len(t, ft.evals, 3)
	assert.Equal(t, screenshot.MeasureScript, ft.evals[0].js)
	assert.Equal(t, screenshot.ScrollScript, ft.evals[1].js)
	assert.Equal(t, []interface{}{300}, ft.evals[1].args)
	assert.True(t, strings.HasPrefix(ft.evals[2].js, "function() {"))
	assert.Contains(t, ft.evals[2].js, `document.cookie="a=b";`)
}

func TestPage_MeasureFailures(t *testing.T) {
	_, err := testPage(&fakeTarget{evalResult: "not json"}).MeasurePage(context.Background())
	assert.ErrorIs(t, err, screenshot.ErrMetrics)

	boom := errors.New("target closed")
	_, err = testPage(&fakeTarget{evalErr: boom}).MeasurePage(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestPage_Close(t *testing.T) {
	ft := &fakeTarget{}
	p := testPage(ft)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, ft.closed)
}
