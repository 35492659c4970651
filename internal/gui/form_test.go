package gui

import (
	"image/color"
	"testing"

	"github.com/philipparndt/gobox/internal/controls"
	"github.com/philipparndt/gobox/internal/pipeline"
	"github.com/philipparndt/gobox/pkg/export"
)

func TestFormStateDefaults(t *testing.T) {
	form := newFormState(controls.Defaults())

	cfg, err := form.config()
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if cfg != controls.Defaults() {
		t.Errorf("config failed: expected defaults, got %+v", cfg)
	}
	if form.get(controls.FieldWidth) != "30" {
		t.Errorf("get failed: expected 30, got %s", form.get(controls.FieldWidth))
	}
}

func TestFormStateEdits(t *testing.T) {
	form := newFormState(controls.Defaults())
	form.set(controls.FieldHeight, "2.5")
	form.set(controls.FieldFormat, "step")
	form.set(controls.FieldName, "lid")
	form.render = false

	cfg, err := form.config()
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if cfg.Box.Height != 2.5 || cfg.File.Format != export.FormatSTEP || cfg.Render {
		t.Errorf("config failed: got %+v", cfg)
	}
	if cfg.File.DownloadName() != "lid.step" {
		t.Errorf("DownloadName failed: expected lid.step, got %s", cfg.File.DownloadName())
	}

	form.set(controls.FieldLength, "")
	if _, err := form.config(); err == nil {
		t.Errorf("config failed: expected error for empty length")
	}
}

func TestColorToHex(t *testing.T) {
	tests := []struct {
		c        color.Color
		expected string
	}{
		{color.NRGBA{R: 0, G: 249, B: 0, A: 255}, "#00f900"},
		{color.RGBA{R: 0, G: 17, B: 249, A: 255}, "#0011f9"},
		{color.White, "#ffffff"},
	}

	for _, tt := range tests {
		if got := colorToHex(tt.c); got != tt.expected {
			t.Errorf("colorToHex(%v) failed: expected %s, got %s", tt.c, tt.expected, got)
		}
	}
}

func TestNoticeText(t *testing.T) {
	n := pipeline.Notice{Kind: pipeline.NoticeError, Icon: "🚨", Message: pipeline.MeshErrorMessage}
	if got := noticeText(n); got != "🚨 The program was not able to generate the mesh." {
		t.Errorf("noticeText failed: got %s", got)
	}
}

func TestToRGBA(t *testing.T) {
	if got := toRGBA("#0011f9"); got != (color.RGBA{R: 0, G: 17, B: 249, A: 255}) {
		t.Errorf("toRGBA failed: got %v", got)
	}
	if got := toRGBA("nope"); got != (color.RGBA{A: 255}) {
		t.Errorf("toRGBA failed: expected opaque black, got %v", got)
	}
}
