package dispatch

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/marcelsud/webhook-recorder/message"
	"github.com/marcelsud/webhook-recorder/render"
)

const timestampLayout = "2006-01-02 15:04:05"

/* Formatter turns resolved history entries into chat text
 * Sessions listed by a response target get the target template,
 * anyone else gets the raw body as indented JSON
 */
type Formatter struct {
	Location *time.Location
}

// Format renders entries of path for the given session
func (f Formatter) Format(path string, entries []message.Entry, targets []Target, session string) string {
	if len(entries) == 0 {
		return ""
	}

	template, templated := templateFor(targets, session)
	text := func(m message.Message) string {
		if templated {
			return render.Render(template, m.Body)
		}
		return rawBody(m.Body)
	}

	if len(entries) == 1 {
		e := entries[0]
		if e.Index == 1 {
			if templated {
				return text(e.Message)
			}
			return fmt.Sprintf("latest message from %s:\n%s", path, text(e.Message))
		}
		return fmt.Sprintf("message %d from %s:\n%s", e.Index, path, f.entry(e, text(e.Message)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d messages from %s:", len(entries), path)
	for i, e := range entries {
		if i == 0 {
			b.WriteString("\n")
		} else {
			b.WriteString("\n\n")
		}
		b.WriteString(f.entry(e, text(e.Message)))
	}
	return b.String()
}

func (f Formatter) entry(e message.Entry, text string) string {
	return fmt.Sprintf("[%d] %s\n%s", e.Index, f.timestamp(e.Message), text)
}

func (f Formatter) timestamp(m message.Message) string {
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	return m.Time().In(loc).Format(timestampLayout)
}

func templateFor(targets []Target, session string) (string, bool) {
	for _, t := range targets {
		if t.HasSession(session) {
			return t.Template(), true
		}
	}
	return "", false
}

func rawBody(body map[string]string) string {
	if body == nil {
		body = map[string]string{}
	}
	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return fmt.Sprint(body)
	}
	return string(data)
}
