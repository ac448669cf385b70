package config

import (
	"bufio"
	"errors"
	"os"
	"strings"
)

// dotenvProvider feeds KEY=VALUE files into koanf. A missing file yields no keys.
type dotenvProvider struct {
	path string
}

func (p dotenvProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("dotenv provider does not support ReadBytes")
}

func (p dotenvProvider) Read() (map[string]interface{}, error) {
	out := map[string]interface{}{}
	f, err := os.Open(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, nil
		}
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if key, val, ok := parseEnvLine(sc.Text()); ok && val != "" {
			out[keyName(key)] = val
		}
	}
	return out, sc.Err()
}

// parseEnvLine accepts `KEY=VALUE`, an optional `export ` prefix and matching outer quotes.
func parseEnvLine(raw string) (string, string, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || line[0] == '#' {
		return "", "", false
	}
	key, val, found := strings.Cut(strings.TrimPrefix(line, "export "), "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", "", false
	}
	val = strings.TrimSpace(val)
	if n := len(val); n >= 2 && (val[0] == '"' || val[0] == '\'') && val[n-1] == val[0] {
		val = val[1 : n-1]
	}
	return key, val, true
}
