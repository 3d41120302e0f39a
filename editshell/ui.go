package editshell

import (
	"fmt"
	"os"

	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// Completer returns the auto-completion functionality for the shell
func (s *Shell) Completer() readline.AutoCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("play"),
		readline.PcItem("pause"),
		readline.PcItem("stop"),
		readline.PcItem("seek"),
		readline.PcItem("frame"),
		readline.PcItem("delete"),
		readline.PcItem("undo"),
		readline.PcItem("redo"),
		readline.PcItem("segments"),
		readline.PcItem("status"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

// prompt colors the shell prompt when stdout is a terminal.
func (s *Shell) prompt() string {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return "\033[36mskipcut>\033[0m "
	}
	return "skipcut> "
}

func (s *Shell) printCommands() {
	fmt.Printf("\nCommands:\n")
	fmt.Printf("  delete <start> <end>  Delete a virtual time range (seconds)\n")
	fmt.Printf("  undo                  Undo the last edit\n")
	fmt.Printf("  redo                  Redo the last undone edit\n")
	fmt.Printf("  segments              List kept segments\n")
	fmt.Printf("  play [pos]            Play, skipping deleted ranges\n")
	fmt.Printf("  pause                 Pause playback\n")
	fmt.Printf("  stop                  Stop and rewind\n")
	fmt.Printf("  seek <pos>            Move the playhead (virtual seconds)\n")
	fmt.Printf("  frame <pos>           Decode the frame at a position\n")
	fmt.Printf("  status                Show player, timeline, and cache state\n")
	fmt.Printf("  help                  Show this help\n")
	fmt.Printf("  exit                  Leave the shell\n\n")
}

func humanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
