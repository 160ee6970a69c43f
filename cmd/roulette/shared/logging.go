package shared

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// SetupLogger configures a charmbracelet logger writing to stderr.
func SetupLogger(level string, noColor bool) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           lvl,
	})
	logger.SetStyles(Styles())
	if noColor {
		logger.SetColorProfile(termenv.Ascii)
	}
	return logger, nil
}

// Styles returns the log styles used by the roulette commands.
func Styles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Foreground(lipgloss.Color("#96CEB4")).
		Bold(true)
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Foreground(lipgloss.Color("#FFD700")).
		Bold(true)
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Foreground(lipgloss.Color("#FF6B6B")).
		Bold(true)
	styles.Keys["room"] = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	styles.Values["room"] = lipgloss.NewStyle().Bold(true)
	return styles
}
