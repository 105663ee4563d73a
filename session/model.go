package session

import (
	"errors"
	"sort"

	"email-designer/composer"
	"email-designer/placeholder"
)

var ErrBusy = errors.New("operation already in progress")
var ErrEmptyKey = errors.New("parameter key is empty")

const (
	DownloadFilename    = "email_template.html"
	DownloadContentType = "text/html"
)

// Kind is a controller operation that waits on the composer. At most one
// operation of each kind is in flight.
type Kind string

const (
	KindSave     Kind = "save"
	KindDownload Kind = "export-download"
	KindPreview  Kind = "export-preview"
)

// State names the controller states. The controller is Idle when nothing is
// in flight; otherwise it is in the awaiting state of each in-flight kind.
type State string

const (
	StateIdle             State = "idle"
	StateAwaitingSave     State = "awaiting-save"
	StateAwaitingDownload State = "awaiting-export(download)"
	StateAwaitingPreview  State = "awaiting-export(preview)"
)

func (k Kind) awaiting() State {
	switch k {
	case KindSave:
		return StateAwaitingSave
	case KindDownload:
		return StateAwaitingDownload
	case KindPreview:
		return StateAwaitingPreview
	}
	return StateIdle
}

// Snapshot is a point-in-time view of the controller.
type Snapshot struct {
	Idle          bool    `json:"idle"`
	States        []State `json:"states"`
	PreviewActive bool    `json:"previewActive"`
}

func snapshot(inFlight map[Kind]bool, previewActive bool) Snapshot {
	s := Snapshot{Idle: len(inFlight) == 0, PreviewActive: previewActive}
	if s.Idle {
		s.States = []State{StateIdle}
		return s
	}
	for k := range inFlight {
		s.States = append(s.States, k.awaiting())
	}
	sort.Slice(s.States, func(i, j int) bool { return s.States[i] < s.States[j] })
	return s
}

// Rendered is the current preview: the exported markup with parameter
// values substituted, plus the placeholders nothing resolved.
type Rendered struct {
	HTML       string             `json:"html"`
	Unresolved []placeholder.Hint `json:"unresolved"`
}

// Artifact is the exported document offered for download. Its placeholders
// are left in place for a later substitution stage.
type Artifact = composer.Download
