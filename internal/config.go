package internal

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// EnvString returns the value of key, or def when it is unset or blank.
func EnvString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// EnvBool parses key with strconv.ParseBool. Unparseable values are logged
// and def is used instead.
func EnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARNING: ignoring %s=%q: %v", key, v, err)
		return def
	}
	return b
}

// EnvInt64 parses key as a base-10 integer, falling back to def.
func EnvInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("WARNING: ignoring %s=%q: %v", key, v, err)
		return def
	}
	return n
}
