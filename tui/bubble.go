package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jellytok/jellytok/feed"
	"github.com/jellytok/jellytok/internal/ui"
	"github.com/jellytok/jellytok/jellyfin"
	"github.com/jellytok/jellytok/key"
	"github.com/jellytok/jellytok/loop"
	"github.com/jellytok/jellytok/playback"
	"github.com/jellytok/jellytok/prefs"
	"github.com/jellytok/jellytok/stream"
	"github.com/jellytok/jellytok/style"
	"github.com/jellytok/jellytok/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// catalog is the part of the server API the interface drives.
type catalog interface {
	feed.Catalog
	Libraries(ctx context.Context, userID string) ([]jellyfin.Library, error)
	WebURL(itemID string) string
}

// surfaces is a pool of playback surfaces that must be opened before use.
type surfaces interface {
	playback.Surfaces
	Open(ctx context.Context) error
}

// environment is everything the bubble talks to outside the terminal.
type environment struct {
	loop     loop.Loop
	catalog  catalog
	surfaces surfaces
	open     func(url string) error

	// connect builds the catalog for new server or session details.
	connect func(p prefs.Preferences) catalog
}

type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]
	keymap        *statefulKeymap

	// components
	spinnerC   spinner.Model
	progressC  progress.Model
	helpC      help.Model
	filtersC   list.Model
	sortC      list.Model
	librariesC list.Model

	env     environment
	catalog *liveCatalog
	store   *prefs.Store
	prefs prefs.Preferences
	feed  *feed.Controller

	streamOptions stream.Options
	ready         bool
	unsubscribe   func()

	// commands produced outside Update, returned by the next Update
	pending []tea.Cmd

	lastError     error
	width, height int
	notifier      *ui.Model
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	if !lo.Contains([]state{loadingState, errorState}, b.state) {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		b.setState(b.statesHistory.Pop())
	}
}

func (b *statefulBubble) queue(cmd tea.Cmd) {
	if cmd != nil {
		b.pending = append(b.pending, cmd)
	}
}

func (b *statefulBubble) flush() tea.Cmd {
	cmds := b.pending
	b.pending = nil
	return tea.Batch(cmds...)
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	listWidth := width - xx
	listHeight := height - yy

	for _, l := range []*list.Model{&b.filtersC, &b.sortC, &b.librariesC} {
		l.SetSize(listWidth, listHeight)
		l.Help.Width = listWidth
	}

	b.width = width - x
	b.height = height - y
	b.progressC.Width = util.Min(b.width, 80)
	b.helpC.Width = listWidth
}

// shutdown stops listening for preference changes and releases every surface.
// It must run after the program has exited.
func (b *statefulBubble) shutdown() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
	b.feed.Close()
}

func newBubble(options *Options, env environment) *statefulBubble {
	bubble := &statefulBubble{
		keymap:   newStatefulKeymap(),
		env:      env,
		store:    options.Store,
		prefs:    options.Store.Get(),
		notifier: &ui.Model{},
		catalog:  newLiveCatalog(env.catalog),
	}

	bubble.streamOptions = bubble.prefs.StreamOptions(viper.GetString(key.PlayerForceAudioCodec))
	bubble.feed = feed.New(feed.Options{
		Loop:       env.loop,
		Catalog:    bubble.catalog,
		Surfaces:   env.surfaces,
		Stream:     bubble.streamOptions,
		PageSize:   viper.GetInt(key.FeedPageSize),
		Lookahead:  viper.GetInt(key.FeedLookahead),
		OnFavorite: bubble.onFavorite,
	})

	// the store calls back on the updating goroutine, so changes are handed to the loop
	bubble.unsubscribe = options.Store.Subscribe(func(p prefs.Preferences) {
		env.loop.Post(func() { bubble.preferencesChanged(p) })
	})

	type listOptions struct {
		TitleStyle mo.Option[lipgloss.Style]
	}

	makeList := func(title string, description bool, options *listOptions) list.Model {
		delegate := list.NewDefaultDelegate()
		delegate.ShowDescription = description
		delegate.Styles.SelectedTitle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(style.AccentColor).
			Foreground(style.AccentColor).
			Padding(0, 0, 0, 1)
		delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
		delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

		listC := list.New([]list.Item{}, delegate, 0, 0)
		listC.KeyMap = bubble.keymap.forList()
		listC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
		listC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
			return bubble.keymap.FullHelp()[0]
		}
		listC.Title = title
		listC.Styles.NoItems = paddingStyle
		if titleStyle, ok := options.TitleStyle.Get(); ok {
			listC.Styles.Title = titleStyle
		}
		listC.StatusMessageLifetime = time.Second * 3
		listC.SetFilteringEnabled(false)
		listC.SetShowPagination(false)
		listC.SetShowStatusBar(false)

		return listC
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(style.AccentColor)

	bubble.progressC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	bubble.filtersC = makeList("Filters", true, &listOptions{
		TitleStyle: mo.Some(style.Badge(style.Peach)),
	})
	bubble.sortC = makeList("Sort", false, &listOptions{
		TitleStyle: mo.Some(style.Badge(style.Lavender)),
	})
	bubble.librariesC = makeList("Libraries", true, &listOptions{
		TitleStyle: mo.Some(style.Badge(style.Blue)),
	})

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	bubble.setState(loadingState)
	return bubble
}
