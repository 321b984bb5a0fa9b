package lint

import (
	"regexp"
	"strings"
)

var (
	headerPattern  = regexp.MustCompile(`^(\w*)(?:\(([^()\r\n]*)\))?(!)?: (.*)$`)
	trailerPattern = regexp.MustCompile(`^(BREAKING CHANGE|BREAKING-CHANGE|[\w-]+)(: | #)`)
)

// Commit is a commit message split into the parts rules inspect.
type Commit struct {
	Raw      string
	Header   string
	Type     string
	Scope    string
	Subject  string
	Breaking bool
	Body     string
	Footer   string

	// lines are the message lines with comments removed; footerStart is the
	// index of the first footer line in lines, or -1.
	lines       []string
	footerStart int
}

// Parse splits a raw commit message. Lines starting with '#' are dropped.
// A header that does not follow "type(scope)!: subject" leaves Type,
// Scope and Subject empty.
func Parse(message string) Commit {
	c := Commit{Raw: message, footerStart: -1}

	for _, line := range strings.Split(strings.ReplaceAll(message, "\r\n", "\n"), "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		c.lines = append(c.lines, line)
	}
	for len(c.lines) > 0 && strings.TrimSpace(c.lines[len(c.lines)-1]) == "" {
		c.lines = c.lines[:len(c.lines)-1]
	}
	if len(c.lines) == 0 {
		return c
	}

	c.Header = c.lines[0]
	if m := headerPattern.FindStringSubmatch(strings.TrimSpace(c.Header)); m != nil {
		c.Type = m[1]
		c.Scope = m[2]
		c.Breaking = m[3] != ""
		c.Subject = strings.TrimSpace(m[4])
	}

	rest := c.lines[1:]
	bodyEnd := len(rest)
	for i, line := range rest {
		if i > 0 && strings.TrimSpace(rest[i-1]) != "" {
			continue
		}
		if trailerPattern.MatchString(line) {
			bodyEnd = i
			c.footerStart = i + 1
			break
		}
	}

	c.Body = joinTrimmed(rest[:bodyEnd])
	c.Footer = joinTrimmed(rest[bodyEnd:])
	if strings.Contains(c.Footer, "BREAKING CHANGE:") || strings.Contains(c.Footer, "BREAKING-CHANGE:") {
		c.Breaking = true
	}
	return c
}

// joinTrimmed joins lines, dropping blank lines at both ends.
func joinTrimmed(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
