package icon

// Icon identifies a symbol in the registry.
type Icon int

const (
	Fail Icon = iota
	Success
	Progress
	Heart
	HeartEmpty
	Play
	Pause
	Loading
	Broken
	Direct
	Adaptive
	Library
	Server
)

var icons = map[Icon]*iconDef{
	Fail: {
		emoji:   "💀",
		nerd:    "\uf00d",
		plain:   "x",
		kaomoji: "(╥﹏╥)",
		squares: "🟥",
	},
	Success: {
		emoji:   "🎉",
		nerd:    "\uf00c",
		plain:   "v",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Progress: {
		emoji:   "👾",
		nerd:    "\uf110",
		plain:   "~",
		kaomoji: "┬─┬ノ( º _ ºノ)",
		squares: "🟦",
	},
	Heart: {
		emoji:   "❤️",
		nerd:    "\uf004",
		plain:   "<3",
		kaomoji: "(♥ω♥*)",
		squares: "🟥",
	},
	HeartEmpty: {
		emoji:   "🤍",
		nerd:    "\uf08a",
		plain:   "</3",
		kaomoji: "(・_・)",
		squares: "⬜",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "\uf04b",
		plain:   ">",
		kaomoji: "ᕕ( ᐛ )ᕗ",
		squares: "🟩",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "\uf04c",
		plain:   "||",
		kaomoji: "(－_－) zzZ",
		squares: "🟨",
	},
	Loading: {
		emoji:   "⏳",
		nerd:    "\uf254",
		plain:   "...",
		kaomoji: "(＿ ＿*) Z z z",
		squares: "🟦",
	},
	Broken: {
		emoji:   "🚫",
		nerd:    "\uf05e",
		plain:   "!",
		kaomoji: "(ノಠ益ಠ)ノ",
		squares: "🟥",
	},
	Direct: {
		emoji:   "⚡",
		nerd:    "\uf0e7",
		plain:   "D",
		kaomoji: "(⌐■_■)",
		squares: "🟧",
	},
	Adaptive: {
		emoji:   "📶",
		nerd:    "\uf012",
		plain:   "A",
		kaomoji: "(•̀ᴗ•́)و",
		squares: "🟪",
	},
	Library: {
		emoji:   "📚",
		nerd:    "\uf02d",
		plain:   "#",
		kaomoji: "φ(．．)",
		squares: "🟫",
	},
	Server: {
		emoji:   "🖥️",
		nerd:    "\uf233",
		plain:   "@",
		kaomoji: "(¬‿¬)",
		squares: "⬛",
	},
}
