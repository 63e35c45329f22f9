// Package classify maps line text and list markers to visual categories.
package classify

import "regexp"

// Status is the visual category of a status line.
type Status string

const (
	StatusNone      Status = ""
	StatusDone      Status = "done"
	StatusAlert     Status = "alert"
	StatusInfo      Status = "info"
	StatusProgress  Status = "progress"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every category in precedence order.
var Statuses = []Status{StatusDone, StatusAlert, StatusInfo, StatusProgress, StatusCancelled}

// Class returns the line class name rendered for s, e.g. "line-done".
func (s Status) Class() string {
	if s == StatusNone {
		return ""
	}
	return "line-" + string(s)
}

type statusRule struct {
	status  Status
	pattern *regexp.Regexp
}

// Order matters: the first matching rule wins.
var statusRules = []statusRule{
	{StatusDone, regexp.MustCompile(`✅|☑️|\[x\]|\[X\]`)},
	{StatusAlert, regexp.MustCompile(`⚠️|🔶|⚡`)},
	{StatusInfo, regexp.MustCompile(`ℹ️|💡|📌`)},
	{StatusProgress, regexp.MustCompile(`🔄️?|⏳|🔁`)},
	{StatusCancelled, regexp.MustCompile(`❌|🚫|✖️`)},
}

// LineStatus returns the category of a line of text, or StatusNone.
func LineStatus(line string) Status {
	for _, r := range statusRules {
		if r.pattern.MatchString(line) {
			return r.status
		}
	}
	return StatusNone
}

// BulletChars are the list markers that can be drawn as bullets.
var BulletChars = []string{"*", "-", "+"}

// QualifiesAsBullet reports whether the text of a list-mark node, plus the
// byte that follows it, denotes a bullet. The marker must start with one of
// BulletChars and contain or be followed by a space or tab. A marker directly
// followed by a line break or another character does not qualify.
func QualifiesAsBullet(mark string, next byte) (string, bool) {
	if mark == "" {
		return "", false
	}
	ch := mark[:1]
	if ch != "*" && ch != "-" && ch != "+" {
		return "", false
	}
	for i := 1; i < len(mark); i++ {
		if mark[i] == ' ' || mark[i] == '\t' {
			return ch, true
		}
	}
	if next == ' ' || next == '\t' {
		return ch, true
	}
	return "", false
}
