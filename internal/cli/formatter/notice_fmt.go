package formatter

import (
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/contract"
)

var noticeIcons = map[contract.NoticeLevel]string{
	contract.NoticeInfo:    "ℹ",
	contract.NoticeWarning: "!",
	contract.NoticeError:   "✗",
}

// FormatNotice renders a notice as one line, e.g. "! Your session has expired...".
func FormatNotice(n contract.Notice) string {
	if n.Text == "" {
		return ""
	}
	icon, ok := noticeIcons[n.Level]
	if !ok {
		icon = "·"
	}
	return render(NoticeStyle(n.Level), icon+" "+n.Text)
}
