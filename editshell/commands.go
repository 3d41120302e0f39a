package editshell

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"skipcut/timeline"
	"skipcut/util"
)

// HandleCommand dispatches one shell command. Returns false when the shell
// should exit.
func (s *Shell) HandleCommand(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "exit", "quit", "q":
		fmt.Println("Exiting edit shell...")
		return false

	case "help", "h":
		s.printCommands()

	case "status", "st":
		s.showStatus()

	case "segments", "ls":
		s.showSegments()

	case "delete", "d":
		s.handleDelete(args)

	case "undo", "u":
		if !s.Manager.Undo() {
			fmt.Println("Nothing to undo.")
		} else {
			s.showTimelineSummary()
		}

	case "redo", "r":
		if !s.Manager.Redo() {
			fmt.Println("Nothing to redo.")
		} else {
			s.showTimelineSummary()
		}

	case "play", "p":
		if len(args) > 0 {
			if !s.handleSeek(args[0]) {
				return true
			}
		}
		s.Scheduler.Play()

	case "pause":
		s.Scheduler.Pause()

	case "stop":
		s.Scheduler.Stop()

	case "seek":
		if len(args) < 1 {
			fmt.Println("Usage: seek <seconds>  (virtual timeline position)")
			return true
		}
		if s.handleSeek(args[0]) {
			s.showPlayhead()
		}

	case "frame", "f":
		s.handleFrame(args)

	default:
		fmt.Printf("Unknown command: %s (try 'help')\n", cmd)
	}

	return true
}

// handleDelete removes a virtual range: delete <start> <end> in seconds.
func (s *Shell) handleDelete(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: delete <start> <end>  (virtual timeline seconds)")
		return
	}
	vStart, err := util.ParseSeconds(args[0])
	if err != nil {
		fmt.Printf("Invalid start: %v\n", err)
		return
	}
	vEnd, err := util.ParseSeconds(args[1])
	if err != nil {
		fmt.Printf("Invalid end: %v\n", err)
		return
	}

	if err := s.Manager.DeleteRange(vStart, vEnd); err != nil {
		if errors.Is(err, timeline.ErrInvalidRange) {
			fmt.Printf("Rejected: %v\n", err)
		} else {
			fmt.Printf("Delete failed: %v\n", err)
		}
		return
	}

	fmt.Printf("Deleted %s - %s\n", util.FormatTimestamp(vStart), util.FormatTimestamp(vEnd))
	s.showTimelineSummary()
}

// handleSeek moves the playhead to a virtual position given in seconds.
// Returns false when the input did not parse.
func (s *Shell) handleSeek(arg string) bool {
	v, err := util.ParseSeconds(arg)
	if err != nil {
		fmt.Printf("Invalid position: %v\n", err)
		return false
	}
	v = util.ClampDuration(v, 0, s.Manager.TotalDuration())

	// The scheduler works in source coordinates; the shell owns the
	// virtual-to-source conversion, like any presentation layer.
	src := s.Manager.VirtualToSource(v)
	s.Scheduler.Seek(src)
	s.Cache.Preload(src, s.PreloadRadius)
	return true
}

// handleFrame decodes (or fetches from cache) the frame at a virtual
// position and reports its size.
func (s *Shell) handleFrame(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: frame <seconds>  (virtual timeline position)")
		return
	}
	v, err := util.ParseSeconds(args[0])
	if err != nil {
		fmt.Printf("Invalid position: %v\n", err)
		return
	}
	v = util.ClampDuration(v, 0, s.Manager.TotalDuration())
	src := s.Manager.VirtualToSource(v)

	f, err := s.Cache.GetFrame(src)
	if err != nil {
		fmt.Printf("Frame fetch failed: %v\n", err)
		return
	}
	fmt.Printf("Frame at %s (source %s): %s\n",
		util.FormatTimestamp(v), util.FormatTimestamp(src), humanSize(int64(f.Size())))
	s.Cache.Preload(src, s.PreloadRadius)
}

func (s *Shell) showTimelineSummary() {
	fmt.Printf("Timeline: %s across %d segment(s)\n",
		util.FormatTimestamp(s.Manager.TotalDuration()), s.Manager.SegmentCount())
}

func (s *Shell) showPlayhead() {
	src := s.Scheduler.CurrentTime()
	if v, ok := s.Manager.SourceToVirtual(src); ok {
		fmt.Printf("Playhead: %s (source %s)\n",
			util.FormatTimestamp(v), util.FormatTimestamp(src))
	} else {
		fmt.Printf("Playhead: source %s (inside a deleted range)\n",
			util.FormatTimestamp(src))
	}
}

func (s *Shell) showSegments() {
	segs := s.Manager.Snapshot().Segments()
	if len(segs) == 0 {
		fmt.Println("No segments left: the whole video has been deleted.")
		return
	}
	fmt.Printf("%-4s %-22s %-22s %s\n", "#", "Source", "Virtual", "Length")
	var accumulated time.Duration
	for i, seg := range segs {
		fmt.Printf("%-4d %-22s %-22s %s\n",
			i+1,
			util.FormatTimestamp(seg.SourceStart)+" - "+util.FormatTimestamp(seg.SourceEnd),
			util.FormatTimestamp(accumulated)+" - "+util.FormatTimestamp(accumulated+seg.Duration()),
			util.FormatTimestamp(seg.Duration()))
		accumulated += seg.Duration()
	}
}

func (s *Shell) showStatus() {
	fmt.Printf("\nState:    %s\n", s.Scheduler.State())
	s.showPlayhead()
	s.showTimelineSummary()

	undo, redo := "no", "no"
	if s.Manager.CanUndo() {
		undo = "yes"
	}
	if s.Manager.CanRedo() {
		redo = "yes"
	}
	fmt.Printf("History:  undo %s, redo %s\n", undo, redo)

	stats := s.Cache.Stats()
	fmt.Printf("Cache:    %d frames, %d hits, %d misses, %d evictions\n\n",
		s.Cache.Len(), stats.Hits, stats.Misses, stats.Evictions)
}
