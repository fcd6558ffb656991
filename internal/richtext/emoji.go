package richtext

// emojiByName covers the shortcodes people actually type in stream
// descriptions.
var emojiByName = map[string]string{
	"+1":                 "👍",
	"-1":                 "👎",
	"thumbs_up":          "👍",
	"thumbs_down":        "👎",
	"smile":              "😄",
	"smiley":             "😃",
	"grinning":           "😀",
	"laughing":           "😆",
	"joy":                "😂",
	"wink":               "😉",
	"blush":              "😊",
	"heart":              "❤️",
	"heart_eyes":         "😍",
	"thinking":           "🤔",
	"cry":                "😢",
	"sob":                "😭",
	"angry":              "😠",
	"scream":             "😱",
	"sunglasses":         "😎",
	"upside_down":        "🙃",
	"slight_smile":       "🙂",
	"tada":               "🎉",
	"party_popper":       "🎉",
	"rocket":             "🚀",
	"fire":               "🔥",
	"star":               "⭐",
	"sparkles":           "✨",
	"zap":                "⚡",
	"100":                "💯",
	"check":              "✅",
	"white_check_mark":   "✅",
	"x":                  "❌",
	"warning":            "⚠️",
	"no_entry":           "⛔",
	"question":           "❓",
	"exclamation":        "❗",
	"bulb":               "💡",
	"lock":               "🔒",
	"unlock":             "🔓",
	"key":                "🔑",
	"bell":               "🔔",
	"mega":               "📣",
	"loudspeaker":        "📢",
	"calendar":           "📅",
	"clock":              "🕐",
	"hourglass":          "⌛",
	"books":              "📚",
	"book":               "📖",
	"memo":               "📝",
	"pencil":             "✏️",
	"link":               "🔗",
	"email":              "📧",
	"envelope":           "✉️",
	"inbox_tray":         "📥",
	"computer":           "💻",
	"keyboard":           "⌨️",
	"gear":               "⚙️",
	"wrench":             "🔧",
	"hammer":             "🔨",
	"bug":                "🐛",
	"robot":              "🤖",
	"coffee":             "☕",
	"pizza":              "🍕",
	"cake":               "🍰",
	"beer":               "🍺",
	"octopus":            "🐙",
	"cat":                "🐱",
	"dog":                "🐶",
	"wave":               "👋",
	"clap":               "👏",
	"pray":               "🙏",
	"muscle":             "💪",
	"eyes":               "👀",
	"point_right":        "👉",
	"ok_hand":            "👌",
	"raised_hands":       "🙌",
	"handshake":          "🤝",
	"globe":              "🌐",
	"earth_americas":     "🌎",
	"sun":                "☀️",
	"cloud":              "☁️",
	"umbrella":           "☂️",
	"snowflake":          "❄️",
	"rainbow":            "🌈",
	"house":              "🏠",
	"office":             "🏢",
	"speech_balloon":     "💬",
	"thought_balloon":    "💭",
	"chart_increasing":   "📈",
	"chart_decreasing":   "📉",
	"trophy":             "🏆",
	"medal":              "🏅",
	"gift":               "🎁",
	"music":              "🎵",
	"headphones":         "🎧",
	"camera":             "📷",
	"microphone":         "🎤",
	"mag":                "🔍",
	"pushpin":            "📌",
	"paperclip":          "📎",
	"construction":       "🚧",
	"rotating_light":     "🚨",
	"green_circle":       "🟢",
	"red_circle":         "🔴",
	"yellow_circle":      "🟡",
	"octagonal_sign":     "🛑",
	"heavy_check_mark":   "✔️",
	"arrow_right":        "➡️",
	"arrow_left":         "⬅️",
	"recycle":            "♻️",
	"information_source": "ℹ️",
}
