// generate-config prints the default server configuration as YAML
// Redirect the output to config.yaml and edit from there.
package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"
	"pokerroom-server/internal/config"
)

const header = `# pokerroom-server configuration
# Every value can be overridden with a POKERROOM_ variable, e.g. POKERROOM_ROOM_IDLE_TIMEOUT=10m
`

func main() {
	if err := write(os.Stdout, config.DefaultConfig()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func write(w io.Writer, cfg config.Config) error {
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	return yaml.NewEncoder(w).Encode(cfg)
}
