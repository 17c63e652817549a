package contract

import (
	"errors"
	"fmt"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/api"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/session"
)

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-facing message. UI callers render it; they never parse
// the underlying error text.
type Notice struct {
	Level NoticeLevel
	Text  string
}

// ConflictNotice explains a business conflict. The backend message is the
// explanation, so it is shown as-is.
func ConflictNotice(ce *api.Error) Notice {
	text := "This action was already completed."
	if ce != nil && ce.Message != "" {
		text = ce.Message
	}
	return Notice{Level: NoticeInfo, Text: text}
}

// NoticeFor maps a failure to the message shown to the user.
func NoticeFor(err error) Notice {
	if err == nil {
		return Notice{}
	}

	var expired *session.SessionExpiredError
	if errors.As(err, &expired) {
		return Notice{
			Level: NoticeWarning,
			Text:  fmt.Sprintf("Your session has expired. Redirecting to login in %d seconds...", int(expired.RedirectIn.Seconds())),
		}
	}

	var submitErr *SubmitError
	if errors.As(err, &submitErr) {
		return Notice{Level: NoticeError, Text: submitErr.Message}
	}

	var ce *api.Error
	if !errors.As(err, &ce) {
		return Notice{Level: NoticeError, Text: "Something went wrong. Please try again."}
	}

	switch ce.Kind {
	case api.KindBusinessConflict:
		return ConflictNotice(ce)
	case api.KindNetwork, api.KindTimeout, api.KindHTTPServer:
		return Notice{Level: NoticeError, Text: "The server is not responding right now. We retried a few times; please try again shortly."}
	case api.KindAuthExpired:
		return Notice{Level: NoticeWarning, Text: "Your session has expired. Please log in again."}
	case api.KindHTTPClient:
		return Notice{Level: NoticeError, Text: ce.Message}
	default:
		return Notice{Level: NoticeError, Text: "Something went wrong. Please try again."}
	}
}
