package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jellytok/jellytok/color"
	"github.com/jellytok/jellytok/constant"
	"github.com/jellytok/jellytok/icon"
	"github.com/jellytok/jellytok/key"
	"github.com/jellytok/jellytok/playback"
	"github.com/jellytok/jellytok/stream"
	"github.com/jellytok/jellytok/style"
	"github.com/jellytok/jellytok/util"
	"github.com/muesli/reflow/wrap"
	"github.com/spf13/viper"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case feedState:
		output = b.viewFeed()
	case filtersState:
		output = listExtraPaddingStyle.Render(b.filtersC.View())
	case sortState:
		output = listExtraPaddingStyle.Render(b.sortC.View())
	case librariesState:
		output = listExtraPaddingStyle.Render(b.librariesC.View())
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(true, []string{
		style.Title(constant.ClientName),
		"",
		b.spinnerC.View() + " Starting the player",
	})
}

func (b *statefulBubble) header() string {
	var status string
	if n := b.feed.Len(); n > 0 {
		more := ""
		if b.feed.HasMore() {
			more = "+"
		}
		status = fmt.Sprintf("%d/%d%s", b.feed.Active()+1, n, more)
	}

	return style.Title(constant.ClientName) + " " + style.Faint(status)
}

func (b *statefulBubble) viewFeed() string {
	lines := []string{b.header(), ""}

	switch {
	case b.feed.Len() == 0 && b.feed.Err() != nil:
		lines = append(lines,
			icon.Get(icon.Fail)+" Could not load videos",
			"",
			wrap.String(style.Fg(color.Red)(b.feed.Err().Error()), b.width),
			"",
			style.Faint("Press r to retry"),
		)
	case b.feed.Empty():
		lines = append(lines,
			"No videos found",
			"",
			style.Faint("Try other filters (F) or another library (L)"),
		)
	case b.feed.Len() == 0:
		lines = append(lines, b.spinnerC.View()+" Loading videos")
	default:
		lines = append(lines, b.viewSession()...)
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewSession() []string {
	session, ok := b.feed.ActiveSession()
	if !ok {
		return []string{b.spinnerC.View() + " Preparing"}
	}

	item := session.Item()
	heart := icon.Get(icon.HeartEmpty)
	if item.UserData.IsFavorite {
		heart = style.Fg(color.Red)(icon.Get(icon.Heart))
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(style.AccentColor).Render(item.Name)
	lines := []string{
		style.Truncate(b.width)(title + " " + heart),
	}
	if subtitle := item.Subtitle(); subtitle != "" {
		lines = append(lines, style.Faint(subtitle))
	}
	lines = append(lines, "", b.viewPlayback(session))

	if session.State() == playback.Failed {
		lines = append(lines, "", style.Fg(color.Red)(icon.Get(icon.Broken)+" "+session.Reason()))
	}

	if viper.GetBool(key.TUIShowURLs) && session.Source().URL != "" {
		lines = append(lines, "", style.Faint(style.Truncate(b.width)(session.Source().URL)))
	}

	if err := b.feed.Err(); err != nil {
		lines = append(lines, "", style.Fg(color.Yellow)("Could not load more videos, press r to retry"))
	}

	return lines
}

func (b *statefulBubble) viewPlayback(session *playback.Session) string {
	var state string
	switch session.State() {
	case playback.Playing:
		state = icon.Get(icon.Play)
	case playback.Paused, playback.Ended:
		state = icon.Get(icon.Pause)
	case playback.Failed:
		state = icon.Get(icon.Broken)
	default:
		state = b.spinnerC.View()
	}

	kind := icon.Get(icon.Adaptive)
	if session.Source().Kind == stream.Direct {
		kind = icon.Get(icon.Direct)
	}

	clock := fmt.Sprintf(
		"%s / %s",
		util.Clock(session.Progress()*session.Duration()),
		util.Clock(session.Duration()),
	)

	return strings.Join([]string{
		state,
		b.progressC.ViewAs(session.Progress()),
		style.Faint(clock),
		style.Faint(kind + " " + session.Source().Kind.String()),
	}, " ")
}

func (b *statefulBubble) viewError() string {
	errorMsg := wrap.String(style.Fg(color.Red)(b.lastError.Error()), b.width)
	return b.renderLines(true, []string{
		style.ErrorTitle("Error"),
		"",
		icon.Get(icon.Fail) + " Something went wrong:",
		"",
		errorMsg,
	})
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
