// Package langdetect names the language of fenced and indented code blocks.
// A declared info string is resolved through go-enry's alias table; an
// undeclared body is classified from its shebang, a few strong patterns, and
// finally go-enry's classifier.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language tags returned for detected content.
const (
	langGo         = "go"
	langPython     = "python"
	langJavaScript = "javascript"
	langJSON       = "json"
	langYAML       = "yaml"
	langHTML       = "html"
	langSQL        = "sql"
	langRust       = "rust"
	langDockerfile = "dockerfile"
	langText       = "text"
	langBash       = "bash"
)

// Source records how a language was determined.
type Source string

// Language sources.
const (
	// SourceInfo means the block's info string named a known language.
	SourceInfo Source = "info"

	// SourceDetected means the language was inferred from the block body.
	SourceDetected Source = "detected"

	// SourceNone means no language could be determined.
	SourceNone Source = "none"
)

// Result is the language of a code block.
type Result struct {
	// Language is a lowercase fence tag such as "go" or "bash". For an
	// unrecognized info string it is the info word as written.
	Language string

	Source Source
}

// ForBlock returns the language of a code block with the given info string
// and body. The first word of info wins when present.
func ForBlock(info string, body []byte) Result {
	if word := infoWord(info); word != "" {
		if lang, ok := enry.GetLanguageByAlias(word); ok {
			return Result{Language: normalize(lang), Source: SourceInfo}
		}
		return Result{Language: word, Source: SourceInfo}
	}

	lang := Detect(body)
	if lang == langText {
		return Result{Language: langText, Source: SourceNone}
	}
	return Result{Language: lang, Source: SourceDetected}
}

// Detect returns the detected language for code content.
// Returns "text" if detection fails or confidence is low.
func Detect(content []byte) string {
	if len(bytes.TrimSpace(content)) == 0 {
		return langText
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	sample := newSample(content)
	for _, r := range patternRules {
		if r.match(sample) {
			return r.lang
		}
	}

	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return normalize(lang)
	}

	return langText
}

//nolint:gochecknoglobals // Read-only lookup table.
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Markdown", "Dockerfile",
}

// sample holds the views of a code body that the pattern rules inspect.
type sample struct {
	raw     []byte
	trimmed []byte
	text    string
}

func newSample(content []byte) sample {
	return sample{raw: content, trimmed: bytes.TrimSpace(content), text: string(content)}
}

// rule maps a highly indicative pattern to a language.
type rule struct {
	lang  string
	match func(s sample) bool
}

// patternRules run in order of specificity before the classifier.
//
//nolint:gochecknoglobals // Read-only lookup table.
var patternRules = []rule{
	{langGo, func(s sample) bool { return bytes.HasPrefix(s.trimmed, []byte("package ")) }},
	{langPython, isPython},
	{langHTML, func(s sample) bool {
		return containsAny(strings.ToLower(string(s.trimmed)), "<!doctype html", "<html", "<head>", "<body>")
	}},
	{langJSON, func(s sample) bool {
		return (bytes.HasPrefix(s.trimmed, []byte("{")) || bytes.HasPrefix(s.trimmed, []byte("["))) &&
			bytes.Contains(s.trimmed, []byte(`"`))
	}},
	{langDockerfile, func(s sample) bool {
		return bytes.HasPrefix(s.trimmed, []byte("FROM ")) ||
			(strings.Contains(s.text, "\nFROM ") && strings.Contains(s.text, "\nRUN ")) ||
			(strings.Contains(s.text, "WORKDIR ") && strings.Contains(s.text, "COPY "))
	}},
	{langSQL, func(s sample) bool {
		upper := strings.ToUpper(string(s.trimmed))
		for _, kw := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
			if strings.HasPrefix(upper, kw) {
				return true
			}
		}
		return false
	}},
	{langRust, func(s sample) bool { return containsAny(s.text, "fn main()", "println!", "let mut ") }},
	{langJavaScript, func(s sample) bool { return containsAny(s.text, "=>", "const ", "let ", "console.log") }},
	{langYAML, isYAML},
}

func isPython(s sample) bool {
	if strings.Contains(s.text, "def ") && strings.Contains(s.text, "):") {
		return true
	}
	// Go imports use "import (".
	if strings.Contains(s.text, "import ") && !strings.Contains(s.text, "import (") &&
		(strings.Contains(s.text, "from ") || bytes.HasPrefix(s.trimmed, []byte("import "))) {
		return true
	}
	return containsAny(s.text, "__name__", "__main__")
}

// isYAML counts key: value pairs and root list items.
func isYAML(s sample) bool {
	count := 0
	for _, line := range bytes.Split(s.raw, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if bytes.Contains(line, []byte(": ")) &&
			!bytes.ContainsAny(line, "({") && line[0] != '"' {
			count++
		}
		if bytes.HasPrefix(line, []byte("- ")) {
			count++
		}
	}
	return count >= 2
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// infoWord returns the first word of a fence info string, without braces
// such as in "{.python}".
func infoWord(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], "{}.")
}

// normalize converts go-enry language names to fence tags.
func normalize(lang string) string {
	if lang == "Shell" {
		return langBash
	}
	return strings.ToLower(lang)
}
