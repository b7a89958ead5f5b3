package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// NetrcStore reads credentials from a netrc/authinfo style file:
//
//	machine review.example.com login alice password s3cret
//
// The file is parsed on every Lookup.
type NetrcStore struct {
	path string
}

func NewNetrcStore(path string) *NetrcStore {
	return &NetrcStore{path: path}
}

func (s *NetrcStore) Lookup(host string) (string, string, bool, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", false, nil
		}
		return "", "", false, fmt.Errorf("error opening %s: %w", s.path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	entries, err := parseNetrc(f)
	if err != nil {
		return "", "", false, fmt.Errorf("error parsing %s: %w", s.path, err)
	}

	bare := stripPort(host)
	var fallback *netrcEntry
	for i := range entries {
		e := &entries[i]
		switch {
		case e.machine == host:
			return e.login, e.password, true, nil
		case e.machine == bare && fallback == nil:
			fallback = e
		case e.isDefault && fallback == nil:
			fallback = e
		}
	}
	if fallback != nil {
		return fallback.login, fallback.password, true, nil
	}
	return "", "", false, nil
}

type netrcEntry struct {
	machine   string
	login     string
	password  string
	isDefault bool
}

func parseNetrc(r io.Reader) ([]netrcEntry, error) {
	tokens, err := tokenize(r)
	if err != nil {
		return nil, err
	}

	var entries []netrcEntry
	var cur *netrcEntry
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok {
		case "machine", "default":
			entries = append(entries, netrcEntry{isDefault: tok == "default"})
			cur = &entries[len(entries)-1]
			if tok == "machine" {
				if i+1 >= len(tokens) {
					return nil, fmt.Errorf("machine without a name")
				}
				i++
				cur.machine = tokens[i]
			}
		case "login", "password", "port", "account":
			if cur == nil {
				return nil, fmt.Errorf("%q outside of a machine entry", tok)
			}
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("%q without a value", tok)
			}
			i++
			switch tok {
			case "login":
				cur.login = tokens[i]
			case "password":
				cur.password = tokens[i]
			}
		}
	}
	return entries, nil
}

func tokenize(r io.Reader) ([]string, error) {
	var tokens []string
	scanner := bufio.NewScanner(r)
	inMacro := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if inMacro {
			if line == "" {
				inMacro = false
			}
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := splitQuoted(line)
		for i, f := range fields {
			if f == "macdef" {
				tokens = append(tokens, fields[:i]...)
				inMacro = true
				fields = nil
				break
			}
		}
		tokens = append(tokens, fields...)
	}
	return tokens, scanner.Err()
}

// splitQuoted splits on whitespace, keeping "double quoted" values whole.
func splitQuoted(line string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	hasTok := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			hasTok = true
		case (r == ' ' || r == '\t') && !inQuote:
			if hasTok {
				out = append(out, cur.String())
				cur.Reset()
				hasTok = false
			}
		default:
			cur.WriteRune(r)
			hasTok = true
		}
	}
	if hasTok {
		out = append(out, cur.String())
	}
	return out
}

func stripPort(host string) string {
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.Contains(host[i:], "]") {
		return host[:i]
	}
	return host
}
