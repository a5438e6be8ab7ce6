package batch

import (
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const defaultWidth = 80

// ColorChoice holds the --color and --no-color flags.
type ColorChoice struct {
	Force   bool
	Disable bool
}

// Terminal describes the destination results are rendered to.
type Terminal struct {
	file *os.File // nil unless output goes to a file descriptor
}

// NewTerminal inspects out once; writers that are not files never count as
// terminals.
func NewTerminal(out io.Writer) Terminal {
	file, _ := out.(*os.File)
	return Terminal{file: file}
}

func (t Terminal) isTTY() bool {
	if t.file == nil {
		return false
	}
	fd := t.file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// UseColor resolves choice against the destination: flags first, then
// NO_COLOR, then whether the destination is a terminal.
func (t Terminal) UseColor(choice ColorChoice) bool {
	switch {
	case choice.Force:
		return true
	case choice.Disable, os.Getenv("NO_COLOR") != "":
		return false
	default:
		return t.isTTY()
	}
}

// Width is the column budget for tables: override when positive, then the
// size of the terminal, then COLUMNS, then 80.
func (t Terminal) Width(override int) int {
	if override > 0 {
		return override
	}
	if t.file != nil {
		if w, _, err := term.GetSize(int(t.file.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && cols > 0 {
		return cols
	}
	return defaultWidth
}
