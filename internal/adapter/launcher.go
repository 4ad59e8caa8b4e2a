package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path"
	"runtime"
	"strings"
)

// ContentKind selects which external viewers are tried for a target
type ContentKind string

const (
	ContentPDF   ContentKind = "pdf"
	ContentImage ContentKind = "image"
	ContentOther ContentKind = "other"
)

// KindOf guesses the content kind from a path or URL extension
func KindOf(target string) ContentKind {
	ext := strings.ToLower(path.Ext(strings.SplitN(target, "?", 2)[0]))
	switch ext {
	case ".pdf":
		return ContentPDF
	case ".jpg", ".jpeg", ".png":
		return ContentImage
	default:
		return ContentOther
	}
}

// Launcher opens reports and frames in an external application
type Launcher struct {
	command string   // configured viewer command, empty for detection
	args    []string // additional arguments for the viewer
	logger  *slog.Logger

	// run starts a command; swapped in tests
	run func(name string, args ...string) error
	// lookPath reports whether a command is installed; swapped in tests
	lookPath func(name string) error
}

// candidateViewers defines the preferred viewer order per platform and kind.
// "open-a:" entries use macOS "open -a".
var candidateViewers = map[string]map[ContentKind][]string{
	"darwin": {
		ContentPDF:   {"open-a:Preview"},
		ContentImage: {"open-a:Preview"},
	},
	"linux": {
		ContentPDF:   {"zathura", "evince", "okular"},
		ContentImage: {"feh", "eog", "sxiv"},
	},
	"windows": {},
}

// NewLauncher creates a new Launcher
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: command,
		args:    args,
		logger:  logger,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
		lookPath: func(name string) error {
			_, err := exec.LookPath(name)
			return err
		},
	}
}

// Open launches target (a file path or URL) in the configured viewer,
// a detected viewer for its kind, or the system default handler
func (l *Launcher) Open(target string) error {
	if strings.TrimSpace(target) == "" {
		return fmt.Errorf("nothing to open")
	}

	// Tier 1: User configured a specific viewer
	if l.command != "" {
		args := append(append([]string{}, l.args...), target)
		l.logger.Info("launching configured viewer", "command", l.command, "args", args)
		if err := l.run(l.command, args...); err != nil {
			return fmt.Errorf("failed to launch %s: %w", l.command, err)
		}
		return nil
	}

	// Tier 2: Try the candidate chain for this kind of content
	kind := KindOf(target)
	if name, err := l.detectAndLaunch(target, kind); err == nil {
		l.logger.Info("launched with detected viewer", "viewer", name, "kind", kind)
		return nil
	}

	// Tier 3: Fall back to system default (open/xdg-open/start)
	return l.launchDefault(target)
}

// detectAndLaunch tries candidate viewers in order.
// Returns the viewer that succeeded.
func (l *Launcher) detectAndLaunch(target string, kind ContentKind) (string, error) {
	for _, candidate := range candidateViewers[runtime.GOOS][kind] {
		var err error
		if app, ok := strings.CutPrefix(candidate, "open-a:"); ok {
			err = l.run("open", "-a", app, target)
		} else {
			if err = l.lookPath(candidate); err == nil {
				err = l.run(candidate, target)
			}
		}
		if err == nil {
			return candidate, nil
		}
		l.logger.Debug("viewer not available", "viewer", candidate, "error", err)
	}
	return "", fmt.Errorf("no candidate viewers found for %s", kind)
}

// launchDefault opens the target using the system default handler
func (l *Launcher) launchDefault(target string) error {
	var name string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		name, args = "open", []string{target}
	case "windows":
		name, args = "cmd", []string{"/c", "start", "", target}
	default:
		// Linux and other Unix-like systems
		name, args = "xdg-open", []string{target}
	}

	l.logger.Info("launching with system default", "os", runtime.GOOS, "target", target)
	if err := l.run(name, args...); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return nil
}
