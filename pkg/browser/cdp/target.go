package cdp

import (
	"context"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// target is the DevTools surface a Page drives.
type target interface {
	Eval(ctx context.Context, js string, args ...interface{}) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Navigate(ctx context.Context, url string) error
	SetViewport(ctx context.Context, width, height int, scale float64) error
	URL() string
	Close() error
}

// rodTarget is a target backed by a rod page.
type rodTarget struct {
	page *rod.Page
}

func (t rodTarget) Eval(ctx context.Context, js string, args ...interface{}) (string, error) {
	res, err := t.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return "", err
	}
	if res.Value.Nil() {
		return "", nil
	}
	return res.Value.Str(), nil
}

func (t rodTarget) Screenshot(ctx context.Context) ([]byte, error) {
	return t.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

func (t rodTarget) Navigate(ctx context.Context, url string) error {
	p := t.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return err
	}
	return p.WaitLoad()
}

func (t rodTarget) SetViewport(ctx context.Context, width, height int, scale float64) error {
	return t.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: scale,
		Mobile:            false,
	})
}

func (t rodTarget) URL() string {
	info, err := t.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (t rodTarget) Close() error {
	return t.page.Close()
}
