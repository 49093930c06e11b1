// Package config loads mesh.yaml, the defaults file for mesh commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// ExpandEnv replaces environment references in input:
//   - ${VAR} expands to the value, or "" if unset
//   - ${VAR:-default} expands to the value, or default if unset or empty
//   - ${VAR:?message} expands to the value, or fails with message if unset or empty
//
// Every failed required reference is reported.
func ExpandEnv(input string) (string, error) {
	var errs []error
	out := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, op, arg := groups[1], groups[2], groups[3]

		if value, ok := os.LookupEnv(name); ok && value != "" {
			return value
		}
		switch op {
		case "-":
			return arg
		case "?":
			if arg == "" {
				arg = "required but not set"
			}
			errs = append(errs, fmt.Errorf("%s: %s", name, arg))
		}
		return ""
	})
	return out, errors.Join(errs...)
}
