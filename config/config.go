// Package config loads a router's configuration file: three required
// lines naming the router's own id, the UDP ports it listens on, and the
// neighbor links it advertises to. This is the "config loader" external
// collaborator spec'd only to the degree the engine depends on its
// output — the grammar itself is bespoke to this simulator, so no
// off-the-shelf config-file library (TOML, YAML, ini) applies; see
// DESIGN.md.
package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/jackyisme123/RIP-v2/neighbor"
	"github.com/pkg/errors"
)

const (
	minID   = 1
	maxID   = 65535
	minPort = 1025
)

// Config is a fully-parsed, validated router configuration.
type Config struct {
	RouterID   int
	InputPorts []int
	Outputs    []neighbor.Link
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening config file")
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	if len(lines) < 3 {
		return nil, errors.Errorf("config file must have 3 lines, got %d", len(lines))
	}

	routerID, err := parseRouterID(lines[0])
	if err != nil {
		return nil, err
	}
	inputPorts, err := parseInputPorts(lines[1])
	if err != nil {
		return nil, err
	}
	outputs, err := parseOutputs(lines[2])
	if err != nil {
		return nil, err
	}

	cfg := &Config{RouterID: routerID, InputPorts: inputPorts, Outputs: outputs}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseRouterID(line string) (int, error) {
	const prefix = "router-id "
	if !strings.HasPrefix(line, prefix) {
		return 0, errors.Errorf("expected %q, got %q", prefix, line)
	}
	id, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, prefix)))
	if err != nil {
		return 0, errors.Wrap(err, "parsing router-id")
	}
	return id, nil
}

func parseInputPorts(line string) ([]int, error) {
	const prefix = "input-ports "
	if !strings.HasPrefix(line, prefix) {
		return nil, errors.Errorf("expected %q, got %q", prefix, line)
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	fields := strings.Split(rest, ",")
	ports := make([]int, 0, len(fields))
	for _, f := range fields {
		p, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing input port %q", f)
		}
		ports = append(ports, p)
	}
	return ports, nil
}

func parseOutputs(line string) ([]neighbor.Link, error) {
	const prefix = "outputs "
	if !strings.HasPrefix(line, prefix) {
		return nil, errors.Errorf("expected %q, got %q", prefix, line)
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	fields := strings.Split(rest, ",")
	links := make([]neighbor.Link, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		parts := strings.Split(f, "-")
		if len(parts) != 3 {
			return nil, errors.Errorf("malformed output %q, want port-cost-id", f)
		}
		port, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, errors.Wrapf(err, "parsing output port %q", f)
		}
		cost, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, errors.Wrapf(err, "parsing output cost %q", f)
		}
		id, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, errors.Wrapf(err, "parsing output neighbor id %q", f)
		}
		links = append(links, neighbor.Link{ID: id, Port: port, Cost: cost})
	}
	return links, nil
}

func (c *Config) validate() error {
	if c.RouterID < minID || c.RouterID > maxID {
		return errors.Errorf("router-id %d out of range [%d, %d]", c.RouterID, minID, maxID)
	}
	for _, p := range c.InputPorts {
		if p < minPort {
			return errors.Errorf("input port %d must be above 1024", p)
		}
	}
	seen := make(map[int]bool, len(c.Outputs))
	for _, o := range c.Outputs {
		if o.ID < minID || o.ID > maxID {
			return errors.Errorf("neighbor id %d out of range [%d, %d]", o.ID, minID, maxID)
		}
		if o.Cost < 1 {
			return errors.Errorf("neighbor %d: link cost must be >= 1, got %d", o.ID, o.Cost)
		}
		if o.Port < minPort {
			return errors.Errorf("neighbor %d: output port %d must be above 1024", o.ID, o.Port)
		}
		if seen[o.ID] {
			return errors.Errorf("neighbor %d listed more than once in outputs", o.ID)
		}
		seen[o.ID] = true
	}
	if len(c.InputPorts) == 0 {
		return errors.New("input-ports must list at least one port")
	}
	return nil
}
