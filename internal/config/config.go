// Package config parses the server's command-line flags. The teacher
// takes no flags of its own (its proxy addresses are env-var only), so
// pflag is adopted fresh here as the idiomatic GNU-style double-dash flag
// library (see DESIGN.md); the flag set and --replicaof parsing are sized
// to the server's own config surface.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/lukluk/redikv/internal/replication"
)

// Config holds every flag the server accepts.
type Config struct {
	Port        int
	ReplicaOf   *replication.ReplicaOf
	Dir         string
	DBFilename  string
	MetricsAddr string
	LogLevel    string
}

// Parse parses argv (excluding the program name, i.e. os.Args[1:]) into a
// Config. A malformed flag value returns an error describing the bad flag;
// callers are expected to print it and exit non-zero, per spec §9.
func Parse(argv []string) (*Config, error) {
	fs := pflag.NewFlagSet("redikv-server", pflag.ContinueOnError)

	port := fs.Int("port", 6379, "TCP port to listen on")
	replicaOf := fs.String("replicaof", "", `upstream master as "<host> <port>"; starts this server in replica mode`)
	dir := fs.String("dir", ".", "working directory for server state")
	dbFilename := fs.String("dbfilename", "dump.rdb", "on-disk snapshot filename (accepted, unused: persistence is out of scope)")
	metricsAddr := fs.String("metrics-addr", ":9121", "address the Prometheus metrics endpoint listens on")
	logLevel := fs.String("log-level", "info", "logrus/zap level: debug, info, warn, error")

	if err := fs.Parse(argv); err != nil {
		return nil, err
	}

	if *port <= 0 || *port > 65535 {
		return nil, fmt.Errorf("invalid --port %d: must be between 1 and 65535", *port)
	}

	cfg := &Config{
		Port:        *port,
		Dir:         *dir,
		DBFilename:  *dbFilename,
		MetricsAddr: *metricsAddr,
		LogLevel:    *logLevel,
	}

	if strings.TrimSpace(*replicaOf) != "" {
		ro, err := parseReplicaOf(*replicaOf)
		if err != nil {
			return nil, err
		}
		cfg.ReplicaOf = ro
	}

	return cfg, nil
}

func parseReplicaOf(s string) (*replication.ReplicaOf, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return nil, fmt.Errorf(`invalid --replicaof %q: expected "<host> <port>"`, s)
	}
	port, err := strconv.Atoi(fields[1])
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid --replicaof port %q", fields[1])
	}
	return &replication.ReplicaOf{Host: fields[0], Port: port}, nil
}
