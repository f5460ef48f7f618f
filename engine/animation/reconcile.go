package animation

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// CommandKind identifies a mixer operation.
type CommandKind int

const (
	CommandStopAll CommandKind = iota
	CommandStop
	CommandPlay
	CommandPause
	CommandSetTimeScale
	CommandSeek
)

func (k CommandKind) String() string {
	switch k {
	case CommandStopAll:
		return "stop-all"
	case CommandStop:
		return "stop"
	case CommandPlay:
		return "play"
	case CommandPause:
		return "pause"
	case CommandSetTimeScale:
		return "set-time-scale"
	case CommandSeek:
		return "seek"
	default:
		return fmt.Sprintf("command(%d)", int(k))
	}
}

// Command is one mixer operation produced by Reconcile.
type Command struct {
	Kind CommandKind

	// Clip names the target action; empty for CommandStopAll.
	Clip string

	// TimeScale is set for CommandPlay and CommandSetTimeScale.
	TimeScale float32

	// Time is the seek target in seconds for CommandSeek.
	Time float32
}

func (c Command) String() string {
	switch c.Kind {
	case CommandStopAll:
		return c.Kind.String()
	case CommandPlay, CommandSetTimeScale:
		return fmt.Sprintf("%s %s x%.2f", c.Kind, c.Clip, c.TimeScale)
	case CommandSeek:
		return fmt.Sprintf("%s %s %.3fs", c.Kind, c.Clip, c.Time)
	default:
		return fmt.Sprintf("%s %s", c.Kind, c.Clip)
	}
}

// Playback is the part of the viewer state that drives the mixer.
type Playback struct {
	// Source identifies the loaded asset; a change means a different model.
	Source string

	// Clips are the clips of the loaded model in file order.
	Clips []model.ClipInfo

	Playing bool

	// Progress is the scrub position in percent, 0 to 100.
	Progress float32

	// Speed is the time scale of every playing clip.
	Speed float32

	// Selected names the clips taking part in playback.
	Selected []string
}

// Reconcile computes the mixer commands that move playback from prev to next.
//
// After the commands are applied: when next is playing, exactly the selected clips run at
// next.Speed; when next is paused, the selected clips are active but paused and keep their
// time unless a seek is issued; clips no longer selected are stopped. A scrub while paused
// seeks each selected clip to Progress percent of its own duration. A scrub while playing
// issues no seek. A speed change updates time scales in place and never restarts a clip.
//
// Commands are ordered: stops, then plays or pauses, then time scale updates, then seeks.
// Within each group clips appear in clip order. Selected names that are not clips of the
// model are ignored.
//
// Parameters:
//   - prev: the playback state the mixer currently reflects
//   - next: the target playback state
//
// Returns:
//   - []Command: the commands to apply, possibly empty
func Reconcile(prev, next Playback) []Command {
	var cmds []Command
	selected := selectedClips(next)

	if prev.Source != next.Source || !sameClips(prev.Clips, next.Clips) {
		cmds = append(cmds, Command{Kind: CommandStopAll})
		for _, c := range selected {
			if next.Playing {
				cmds = append(cmds, Command{Kind: CommandPlay, Clip: c.Name, TimeScale: next.Speed})
			} else {
				cmds = append(cmds, Command{Kind: CommandPause, Clip: c.Name})
			}
		}
		if !next.Playing && next.Progress != 0 {
			cmds = append(cmds, seeks(selected, next.Progress)...)
		}
		return cmds
	}

	wasSelected := nameSet(selectedClips(prev))
	isSelected := nameSet(selected)

	for _, c := range next.Clips {
		if wasSelected[c.Name] && !isSelected[c.Name] {
			cmds = append(cmds, Command{Kind: CommandStop, Clip: c.Name})
		}
	}

	var added, kept []model.ClipInfo
	for _, c := range selected {
		if wasSelected[c.Name] {
			kept = append(kept, c)
		} else {
			added = append(added, c)
		}
	}

	speedChanged := prev.Speed != next.Speed
	progressChanged := prev.Progress != next.Progress

	switch {
	case prev.Playing && next.Playing:
		for _, c := range added {
			cmds = append(cmds, Command{Kind: CommandPlay, Clip: c.Name, TimeScale: next.Speed})
		}
		if speedChanged {
			cmds = append(cmds, timeScales(kept, next.Speed)...)
		}

	case !prev.Playing && next.Playing:
		for _, c := range selected {
			cmds = append(cmds, Command{Kind: CommandPlay, Clip: c.Name, TimeScale: next.Speed})
		}

	case prev.Playing && !next.Playing:
		for _, c := range selected {
			cmds = append(cmds, Command{Kind: CommandPause, Clip: c.Name})
		}
		if speedChanged {
			cmds = append(cmds, timeScales(selected, next.Speed)...)
		}
		if progressChanged {
			cmds = append(cmds, seeks(selected, next.Progress)...)
		}

	default:
		for _, c := range added {
			cmds = append(cmds, Command{Kind: CommandPause, Clip: c.Name})
		}
		if speedChanged {
			cmds = append(cmds, timeScales(kept, next.Speed)...)
		}
		if progressChanged {
			cmds = append(cmds, seeks(selected, next.Progress)...)
		} else if next.Progress != 0 {
			cmds = append(cmds, seeks(added, next.Progress)...)
		}
	}

	return cmds
}

// selectedClips returns the clips of p that are selected, in clip order.
func selectedClips(p Playback) []model.ClipInfo {
	if len(p.Selected) == 0 {
		return nil
	}
	want := make(map[string]bool, len(p.Selected))
	for _, name := range p.Selected {
		want[name] = true
	}
	var out []model.ClipInfo
	for _, c := range p.Clips {
		if want[c.Name] {
			out = append(out, c)
		}
	}
	return out
}

func nameSet(clips []model.ClipInfo) map[string]bool {
	set := make(map[string]bool, len(clips))
	for _, c := range clips {
		set[c.Name] = true
	}
	return set
}

func sameClips(a, b []model.ClipInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func seeks(clips []model.ClipInfo, progress float32) []Command {
	cmds := make([]Command, 0, len(clips))
	for _, c := range clips {
		cmds = append(cmds, Command{Kind: CommandSeek, Clip: c.Name, Time: progress / 100 * c.Duration})
	}
	return cmds
}

func timeScales(clips []model.ClipInfo, speed float32) []Command {
	cmds := make([]Command, 0, len(clips))
	for _, c := range clips {
		cmds = append(cmds, Command{Kind: CommandSetTimeScale, Clip: c.Name, TimeScale: speed})
	}
	return cmds
}
