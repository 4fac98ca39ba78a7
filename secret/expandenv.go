package secret

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// ExpandEnvStrict replaces $NAME and ${NAME} with the value of the
// environment variable NAME. Every referenced variable must be set; the
// error lists the missing names, sorted. "$$" is a literal "$".
func ExpandEnvStrict(s string) (string, error) {
	var missing []string
	lookup := func(name string) string {
		v, ok := os.LookupEnv(name)
		if !ok && !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
		return v
	}

	segments := strings.Split(s, "$$")
	for i, seg := range segments {
		segments[i] = os.Expand(seg, lookup)
	}

	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return strings.Join(segments, "$"), nil
}
