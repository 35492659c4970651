package gui

import (
	"fmt"
	"image/color"
	"net/url"

	"github.com/philipparndt/gobox/internal/controls"
	"github.com/philipparndt/gobox/internal/pipeline"
	"github.com/philipparndt/gobox/pkg/preview"
)

// link is a sidebar hyperlink
type link struct {
	Label string
	URL   string
}

var sidebarLinks = []link{
	{"Patreon", "https://www.patreon.com/medicationforall"},
	{"Mini For All", "https://miniforall.com"},
	{"Github Code", "https://github.com/medicationforall/cqboxtestui"},
}

// formState mirrors the widget contents as the raw strings the user typed
type formState struct {
	fields map[string]string
	render bool
}

func newFormState(cfg controls.Config) *formState {
	values := cfg.Values()
	fields := make(map[string]string, len(values))
	for key := range values {
		fields[key] = values.Get(key)
	}
	return &formState{fields: fields, render: cfg.Render}
}

func (f *formState) set(field, value string) {
	f.fields[field] = value
}

func (f *formState) get(field string) string {
	return f.fields[field]
}

// config decodes the form the same way the web form is decoded
func (f *formState) config() (controls.Config, error) {
	values := url.Values{}
	for key, value := range f.fields {
		values.Set(key, value)
	}
	if f.render {
		values.Set(controls.FieldRender, "on")
	} else {
		values.Set(controls.FieldRender, "off")
	}
	return controls.FromValues(values)
}

func colorToHex(c color.Color) string {
	nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", nrgba.R, nrgba.G, nrgba.B)
}

// toRGBA converts a validated hex color for the orbit view
func toRGBA(hex string) color.RGBA {
	rgb, err := preview.ParseHex(hex)
	if err != nil {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

func noticeText(n pipeline.Notice) string {
	return n.Icon + " " + n.Message
}
