package display

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/backmassage/dirlaunch/internal/term"
)

const banner = `     _ _      _                        _
  __| (_)_ __| | __ _ _   _ _ __   ___| |__
 / _` + "`" + ` | | '__| |/ _` + "`" + ` | | | | '_ \ / __| '_ \
| (_| | | |  | | (_| | |_| | | | | (__| | | |
 \__,_|_|_|  |_|\__,_|\__,_|_| |_|\___|_| |_|`

var bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))

// PrintBanner writes the ASCII art banner to w; styled only when colors are on.
func PrintBanner(w io.Writer) {
	if term.Enabled() {
		fmt.Fprintln(w, bannerStyle.Render(banner))
		return
	}
	fmt.Fprintln(w, banner)
}
