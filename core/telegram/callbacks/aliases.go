package callbacks

// DefaultDictionary is the alias table for the bundled route set. Aliases are
// scoped by position: "ls" is "list" both after "games" and under "room", and
// "st" only ever means "start" because it lives at position 2.
var DefaultDictionary = Dictionary{
	{
		"games":    "g",
		"menu":     "m",
		"settings": "s",
		"wallet":   "w",
	},
	{
		"poker":    "pk",
		"list":     "ls",
		"main":     "mn",
		"language": "lg",
		"balance":  "bl",
		"bonus":    "bn",
	},
	{
		"start": "st",
		"help":  "h",
		"room":  "r",
		"table": "t",
	},
	{
		"create": "cr",
		"join":   "jn",
		"list":   "ls",
		"leave":  "lv",
		"switch": "sw",
		"info":   "in",
		"check":  "ck",
		"call":   "cl",
		"raise":  "rs",
		"fold":   "fd",
		"allin":  "ai",
	},
}

// Default is the codec over DefaultDictionary.
var Default = MustCodec(DefaultDictionary)
