package editshell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"skipcut/frame"
	"skipcut/player"
	"skipcut/timeline"
	"skipcut/util"
)

// Shell is the interactive editing session for one video: delete ranges on
// the virtual timeline, undo/redo, and drive playback that skips the cuts.
type Shell struct {
	Video         *util.Video
	Manager       *timeline.Manager
	Scheduler     *player.Scheduler
	Cache         *frame.Cache
	PreloadRadius int
}

// NewShell wires an editing session over the given collaborators.
func NewShell(video *util.Video, manager *timeline.Manager, scheduler *player.Scheduler,
	cache *frame.Cache, preloadRadius int) *Shell {
	return &Shell{
		Video:         video,
		Manager:       manager,
		Scheduler:     scheduler,
		Cache:         cache,
		PreloadRadius: preloadRadius,
	}
}

// Run starts the interactive shell and blocks until the user exits.
func (s *Shell) Run() {
	fmt.Printf("=== Edit Shell ===\n")
	fmt.Printf("Video: %s\n", s.Video.Title)
	fmt.Printf("  %s, %.2f fps, %s\n",
		util.FormatTimestamp(s.Video.Duration), s.Video.FrameRate, humanSize(s.Video.SizeBytes))

	s.printCommands()
	s.showStatus()

	s.Scheduler.OnStateChanged(func(st player.State) {
		fmt.Printf("\rplayback: %s\n", st)
	})

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Printf("Warning: Could not get home directory: %v\n", err)
		homeDir = "."
	}
	historyFile := filepath.Join(homeDir, ".skipcut_history")

	config := &readline.Config{
		Prompt:       s.prompt(),
		HistoryFile:  historyFile,
		AutoComplete: s.Completer(),
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		fmt.Printf("Error initializing readline: %v\n", err)
		return
	}
	defer rl.Close()

	for {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println("\nExiting edit shell...")
				break
			}
			fmt.Printf("Error reading input: %v\n", err)
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if !s.HandleCommand(input) {
			break
		}
	}

	s.Scheduler.Stop()
}
