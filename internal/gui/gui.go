// Package gui is the desktop front end: the same controls as the web form
// in a fyne window, re-rendering on every change.
package gui

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log"
	"net/url"
	"os"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/gobox/internal/controls"
	"github.com/philipparndt/gobox/internal/pipeline"
	"github.com/philipparndt/gobox/pkg/export"
	"github.com/philipparndt/gobox/pkg/viewer"
)

// App holds the window and the latest pipeline result
type App struct {
	window   fyne.Window
	pipeline *pipeline.Pipeline
	form     *formState

	preview  *canvas.Image
	orbit    *viewer.SolidView
	progress *widget.ProgressBarInfinite
	notices  *widget.Label
	download *widget.Button
	colors   []*widget.Button

	mu     sync.Mutex
	result *pipeline.Result
	cancel context.CancelFunc
}

// Run opens the window and blocks until it is closed
func Run(p *pipeline.Pipeline) error {
	a := app.New()
	w := a.NewWindow("CadQuery Box Test")

	ui := &App{
		window:   w,
		pipeline: p,
		form:     newFormState(controls.Defaults()),
	}
	w.SetContent(ui.build())
	w.SetOnClosed(ui.release)
	w.Resize(fyne.NewSize(1100, 700))

	ui.rerender()
	w.ShowAndRun()
	return nil
}

func (a *App) build() fyne.CanvasObject {
	tabs := container.NewAppTabs(
		container.NewTabItem("Parameters", container.NewGridWithColumns(3,
			a.numberField("Length", controls.FieldLength),
			a.numberField("Width", controls.FieldWidth),
			a.numberField("height", controls.FieldHeight),
		)),
		container.NewTabItem("Camera", container.NewVBox(
			container.NewGridWithColumns(3,
				a.numberField("axis1", controls.FieldAxis1),
				a.numberField("axis2", controls.FieldAxis2),
				a.numberField("axis3", controls.FieldAxis3),
			),
			a.numberField("Focus", controls.FieldFocus),
		)),
		container.NewTabItem("File", container.NewGridWithColumns(2,
			a.textField("File Name", controls.FieldName),
			a.formatField(),
		)),
	)

	primary := a.colorField("Primary Color", controls.FieldPrimaryColor)
	secondary := a.colorField("Secondary Color", controls.FieldSecondaryColor)

	renderCheck := widget.NewCheck("Render:", nil)
	renderCheck.SetChecked(a.form.render)
	renderCheck.OnChanged = func(checked bool) {
		a.form.render = checked
		for _, b := range a.colors {
			if checked {
				b.Enable()
			} else {
				b.Disable()
			}
		}
		a.rerender()
	}

	a.preview = canvas.NewImageFromResource(nil)
	a.preview.FillMode = canvas.ImageFillContain
	a.preview.SetMinSize(fyne.NewSize(800, 240))

	a.orbit = viewer.NewSolidView()

	a.progress = widget.NewProgressBarInfinite()
	a.progress.Hide()

	a.notices = widget.NewLabel("")
	a.notices.Wrapping = fyne.TextWrapWord

	a.download = widget.NewButton("Download", a.saveMesh)
	a.download.Hide()

	body := container.NewVBox(
		widget.NewLabelWithStyle("CadQuery Box Test", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		tabs,
		container.NewGridWithColumns(3, renderCheck, primary, secondary),
		a.progress,
		widget.NewLabel("Preview:"),
		container.NewAppTabs(
			container.NewTabItem("Drawing", a.preview),
			container.NewTabItem("Orbit", a.orbit),
		),
		a.download,
		a.notices,
	)

	sidebar := container.NewVBox()
	for _, l := range sidebarLinks {
		u, err := url.Parse(l.URL)
		if err != nil {
			continue
		}
		sidebar.Add(widget.NewHyperlink(l.Label, u))
	}

	return container.NewBorder(nil, nil, sidebar, nil, container.NewVScroll(body))
}

func (a *App) numberField(label, field string) fyne.CanvasObject {
	entry := widget.NewEntry()
	entry.SetText(a.form.get(field))
	entry.OnChanged = func(value string) {
		a.form.set(field, value)
		a.rerender()
	}
	return widget.NewForm(widget.NewFormItem(label, entry))
}

func (a *App) textField(label, field string) fyne.CanvasObject {
	entry := widget.NewEntry()
	entry.SetText(a.form.get(field))
	entry.OnChanged = func(value string) {
		a.form.set(field, value)
		a.refreshDownload()
	}
	return widget.NewForm(widget.NewFormItem(label, entry))
}

func (a *App) formatField() fyne.CanvasObject {
	options := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		options[i] = string(f)
	}

	sel := widget.NewSelect(options, func(value string) {
		if value == a.form.get(controls.FieldFormat) {
			return
		}
		a.form.set(controls.FieldFormat, value)
		a.rerender()
	})
	sel.SetSelected(a.form.get(controls.FieldFormat))
	return widget.NewForm(widget.NewFormItem("File type", sel))
}

func (a *App) colorField(label, field string) fyne.CanvasObject {
	var button *widget.Button
	button = widget.NewButton(a.form.get(field), func() {
		picker := dialog.NewColorPicker(label, "", func(c color.Color) {
			hex := colorToHex(c)
			a.form.set(field, hex)
			button.SetText(hex)
			a.rerender()
		}, a.window)
		picker.Advanced = true
		picker.Show()
	})
	a.colors = append(a.colors, button)
	return widget.NewForm(widget.NewFormItem(label, button))
}

// rerender runs the pipeline in the background, cancelling a pass that is
// still in flight
func (a *App) rerender() {
	cfg, err := a.form.config()
	if err != nil {
		a.notices.SetText("🚨 " + err.Error())
		return
	}

	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.mu.Unlock()

	a.progress.Show()
	a.progress.Start()

	go func() {
		result, err := a.pipeline.Run(ctx, cfg)
		if ctx.Err() != nil {
			if result != nil {
				result.Release()
			}
			return
		}

		fyne.Do(func() {
			a.progress.Stop()
			a.progress.Hide()
			if err != nil {
				log.Printf("[gui] render failed: %v", err)
				a.notices.SetText("🚨 " + err.Error())
				return
			}
			a.show(result)
		})
	}()
}

func (a *App) show(result *pipeline.Result) {
	a.mu.Lock()
	previous := a.result
	a.result = result
	a.mu.Unlock()
	if previous != nil {
		previous.Release()
	}

	if result.Idle {
		a.preview.File = ""
		a.preview.Resource = nil
		a.preview.Refresh()
		a.orbit.SetSolid(nil, color.RGBA{}, color.RGBA{})
		a.notices.SetText("")
		a.download.Hide()
		return
	}

	a.preview.File = result.PreviewPath
	a.preview.Refresh()
	a.orbit.SetSolid(result.Solid, toRGBA(result.Config.PrimaryColor), toRGBA(result.Config.SecondaryColor))

	text := ""
	for _, n := range result.Notices() {
		text += noticeText(n) + "\n"
	}
	a.notices.SetText(text)
	a.refreshDownload()
}

func (a *App) refreshDownload() {
	a.mu.Lock()
	result := a.result
	a.mu.Unlock()

	if result == nil {
		return
	}
	if download, ok := result.Download(); ok {
		a.download.SetText(download.Label)
		a.download.Show()
	} else {
		a.download.Hide()
	}
}

func (a *App) saveMesh() {
	a.mu.Lock()
	result := a.result
	a.mu.Unlock()
	if result == nil {
		return
	}

	download, ok := result.Download()
	if !ok {
		return
	}
	if cfg, err := a.form.config(); err == nil {
		download.FileName = cfg.File.DownloadName()
	}

	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		if err := copyFile(writer, download.Path); err != nil {
			dialog.ShowError(fmt.Errorf("failed to save %s: %w", download.FileName, err), a.window)
		}
	}, a.window)
	save.SetFileName(download.FileName)
	save.Show()
}

func (a *App) release() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		a.cancel()
	}
	if a.result != nil {
		a.result.Release()
		a.result = nil
	}
}

func copyFile(w io.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(w, file)
	return err
}
