package pipeline

import (
	"io"
	"strings"

	"github.com/backmassage/dirlaunch/internal/config"
	"github.com/backmassage/dirlaunch/internal/display"
	"github.com/backmassage/dirlaunch/internal/launch"
	"github.com/backmassage/dirlaunch/internal/logging"
)

// Preview lists cfg.Directory and prints the decision Run would take for
// every entry, without starting anything.
func Preview(cfg *config.Config, log *logging.Logger, w io.Writer) error {
	entries, err := Discover(cfg.Directory)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		log.Warn("No entries in %s", cfg.Directory)
		return nil
	}

	rows := make([]display.Row, 0, len(entries))
	var launches, excluded, dirs int
	for _, e := range entries {
		row := display.Row{Name: e.Name, Ext: e.Ext}
		switch Decide(cfg, e) {
		case DecideExcluded:
			excluded++
			row.Status = "excluded"
		case DecideSkipDir:
			dirs++
			row.Status = "dir"
			row.Tone = display.ToneWarn
		default:
			launches++
			row.Status = "launch"
			row.Tone = display.ToneOK
			row.Detail = strings.Join(launch.Command(cfg.Executable, e.Path), " ")
		}
		rows = append(rows, row)
	}

	display.PrintTable(w, rows)
	log.Info("%d entries: %d would launch, %d excluded, %d directories skipped",
		len(entries), launches, excluded, dirs)
	return nil
}

