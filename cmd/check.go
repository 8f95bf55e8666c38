package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/jellytok/jellytok/constant"
	"github.com/jellytok/jellytok/icon"
	"github.com/jellytok/jellytok/style"
)

// CheckDependencies exits with install instructions when the player binary is missing.
func CheckDependencies(binary string) {
	if _, err := exec.LookPath(binary); err != nil {
		printMissingDependencyError(binary)
		os.Exit(1)
	}
}

func installHint(goos string) string {
	switch goos {
	case constant.Darwin:
		return "brew install mpv"
	case constant.Linux:
		return "sudo apt install mpv"
	case constant.Windows:
		return "scoop install mpv"
	case constant.Android:
		return "pkg install mpv"
	default:
		return ""
	}
}

func printMissingDependencyError(binary string) {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.ErrorColor).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.ErrorColor).Render(icon.Get(icon.Fail) + " Player not found")
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("'%s' is not in your PATH. Videos are played by mpv.", binary))

	var suggestion string
	if hint := installHint(runtime.GOOS); hint != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(hint))
	}

	fmt.Println(box.Render(lipgloss.JoinVertical(lipgloss.Left, title, "\n", body, suggestion)))
}
