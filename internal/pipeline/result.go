package pipeline

import (
	"fmt"
	"time"

	"github.com/philipparndt/gobox/internal/controls"
	"github.com/philipparndt/gobox/internal/workspace"
	"github.com/philipparndt/gobox/pkg/solid"
)

// NoticeKind distinguishes success and error notices
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// MeshErrorMessage is shown when no mesh could be offered for download
const MeshErrorMessage = "The program was not able to generate the mesh."

// Notice is an inline message for the user
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Icon    string     `json:"icon"`
	Message string     `json:"message"`
}

// Download describes the file offered to the user
type Download struct {
	Label    string `json:"label"`
	FileName string `json:"file_name"`
	MIME     string `json:"mime"`
	Path     string `json:"-"`
}

// Result is the outcome of one Run
type Result struct {
	Idle        bool
	Config      controls.Config
	Workspace   *workspace.Workspace
	Solid       *solid.Solid
	MeshPath    string
	PreviewPath string
	MeshErr     error
	Elapsed     time.Duration
}

// Notices returns the messages to show beneath the preview
func (r *Result) Notices() []Notice {
	if r.Idle {
		return nil
	}
	if r.MeshErr != nil {
		return []Notice{{Kind: NoticeError, Icon: "🚨", Message: MeshErrorMessage}}
	}
	return []Notice{{
		Kind:    NoticeSuccess,
		Icon:    "✅",
		Message: fmt.Sprintf("Rendered in %d seconds", int(r.Elapsed.Seconds())),
	}}
}

// Download returns the mesh download, or false when there is none
func (r *Result) Download() (Download, bool) {
	if r.Idle || r.MeshErr != nil {
		return Download{}, false
	}

	format := r.Config.File.Format
	return Download{
		Label:    "Download " + string(format),
		FileName: r.Config.File.DownloadName(),
		MIME:     format.MIME(),
		Path:     r.MeshPath,
	}, true
}

// Release removes the run's files
func (r *Result) Release() error {
	if r.Workspace == nil {
		return nil
	}
	return r.Workspace.Release()
}
