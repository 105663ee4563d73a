package session

import (
	"errors"

	"email-designer/composer"
	"email-designer/design"
	"email-designer/notify"
)

type op string

const (
	opSave    op = "save"
	opLoad    op = "load"
	opRestore op = "restore"
	opExport  op = "export"
	opPreview op = "preview"
	opInsert  op = "insert"
)

// fail logs err, reports it through the notification queue and returns it.
func (c *Controller) fail(o op, err error) error {
	level, msg := describe(o, err)
	if level == notify.LevelError {
		c.logger.Error("operation failed", "op", string(o), "error", err)
	} else {
		c.logger.Warn("operation rejected", "op", string(o), "error", err)
	}
	c.notes.NotifyLevel(level, msg)
	return err
}

func describe(o op, err error) (notify.Level, string) {
	switch {
	case errors.Is(err, ErrBusy):
		return notify.LevelWarning, verb(o) + " already in progress"
	case errors.Is(err, design.ErrCorrupt) && o == opSave:
		return notify.LevelError, "Composer returned an invalid design; nothing was saved"
	case errors.Is(err, design.ErrCorrupt):
		return notify.LevelError, "Saved design is corrupted; save the template again to replace it"
	case errors.Is(err, design.ErrStorage):
		return notify.LevelError, "Storage error: could not " + what(o)
	case errors.Is(err, composer.ErrUnavailable):
		return notify.LevelError, "Composer unavailable: could not " + what(o)
	}
	return notify.LevelError, verb(o) + " failed"
}

func verb(o op) string {
	switch o {
	case opSave:
		return "Save"
	case opLoad:
		return "Load"
	case opRestore:
		return "Restore"
	case opExport:
		return "Export"
	case opPreview:
		return "Preview"
	case opInsert:
		return "Insert"
	}
	return string(o)
}

func what(o op) string {
	switch o {
	case opSave:
		return "save the template"
	case opLoad:
		return "load the template"
	case opRestore:
		return "restore the saved session"
	case opExport:
		return "export HTML"
	case opPreview:
		return "update the preview"
	case opInsert:
		return "insert the parameter"
	}
	return string(o)
}
