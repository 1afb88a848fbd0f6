package internal

import (
	"log"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/earthboundkid/versioninfo/v2"
)

var sensitiveRegex = regexp.MustCompile(`(?i)(PASSWORD|API_KEY|ACCESS_KEY|SECRET|TOKEN)`)

func ShowVersion() {
	log.Printf("Version: %s\n", versioninfo.Short())
}

// EnvironmentVars logs every variable starting with prefix, masking values
// whose names look like credentials.
func EnvironmentVars(prefix string) {
	log.Printf("Environment variables (%s*)", prefix)

	var matched []string
	for _, entry := range os.Environ() {
		if strings.HasPrefix(entry, prefix) {
			matched = append(matched, entry)
		}
	}
	sort.Strings(matched)

	for _, entry := range matched {
		key, value, _ := strings.Cut(entry, "=")
		log.Printf("  %s: %s\n", key, maskValue(key, value))
	}
}

func maskValue(key, value string) string {
	if sensitiveRegex.MatchString(key) {
		return "********"
	}
	return value
}
