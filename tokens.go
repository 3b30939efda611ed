package main

import (
	"fmt"
	"regexp"
	"strings"
)

// Token names a marked region in a doc file together with the source path the
// generated documentation is rendered from. The path is relative to the doc
// file's directory and defaults to the conventional package entry point when
// the marker omits it.
type Token struct {
	Name   string
	Source string
}

// DocFile is a documentation file containing at least one token. Tokens are
// kept in the order they appear in the file; that order is the processing
// order during substitution.
type DocFile struct {
	Path   string
	Tokens []Token
}

var startTokenPattern = regexp.MustCompile(`<!--\s*START TOKEN\(([^)]+)\)\s*-->`)

// parseTokenSpec splits the "name|path" payload of a START marker. A missing
// path falls back to defaultSource.
func parseTokenSpec(spec, defaultSource string) Token {
	name, source, found := strings.Cut(spec, "|")
	tok := Token{
		Name:   strings.TrimSpace(name),
		Source: strings.TrimSpace(source),
	}
	if !found || tok.Source == "" {
		tok.Source = defaultSource
	}
	return tok
}

// scanTokens returns the tokens found in content, in textual order. Content
// without markers yields nil.
func scanTokens(content []byte, defaultSource string) []Token {
	matches := startTokenPattern.FindAllSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, parseTokenSpec(string(m[1]), defaultSource))
	}
	return tokens
}

// tokenMarkers returns the START and END marker matchers for a named token.
// Marker payloads may carry the source path after the name, so matching is on
// the name component only.
func tokenMarkers(name string) (start, end *regexp.Regexp) {
	quoted := regexp.QuoteMeta(name)
	start = regexp.MustCompile(`<!--\s*START TOKEN\(` + quoted + `(\|[^)]*)?\)\s*-->`)
	end = regexp.MustCompile(`<!--\s*END TOKEN\(` + quoted + `(\|[^)]*)?\)\s*-->`)
	return start, end
}

// replaceTokenRegion substitutes the lines between a token's START and END
// markers with replacement, keeping both marker lines intact. It returns an
// error when either marker is missing or the END marker precedes the START
// marker.
func replaceTokenRegion(doc []byte, name string, replacement []byte) ([]byte, error) {
	startRe, endRe := tokenMarkers(name)
	startLoc := startRe.FindIndex(doc)
	if startLoc == nil {
		return nil, fmt.Errorf("no START TOKEN(%s) marker found", name)
	}
	endLoc := endRe.FindIndex(doc)
	if endLoc == nil {
		return nil, fmt.Errorf("no END TOKEN(%s) marker found", name)
	}
	if endLoc[0] < startLoc[1] {
		return nil, fmt.Errorf("END TOKEN(%s) marker precedes its START marker", name)
	}
	body := append([]byte{}, doc[:startLoc[1]]...)
	body = append(body, '\n')
	body = append(body, replacement...)
	if len(replacement) > 0 && replacement[len(replacement)-1] != '\n' {
		body = append(body, '\n')
	}
	body = append(body, doc[endLoc[0]:]...)
	return body, nil
}
