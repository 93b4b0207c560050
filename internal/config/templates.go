package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "text":
		return textTemplate, nil
	case "fixed":
		return fixedTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const textTemplate = `[text]
encoding = "utf-8"
encode_errors = "strict"
decode_errors = "strict"
queue_capacity = 100

[pump]
chunk_size = 4096
max_consecutive_malformed = 0

[log]
level = "info"
`

const fixedTemplate = `[fixed]
queue_capacity = 100

[[fixed.fields]]
kind = "uint"
length = 4

[[fixed.fields]]
kind = "bool"
length = 1

[pump]
max_consecutive_malformed = 8

[log]
level = "info"
`
