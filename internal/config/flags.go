package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// collectionList is a comma separated flag value.
type collectionList []string

func (c *collectionList) String() string {
	return strings.Join(*c, ",")
}

func (c *collectionList) Set(s string) error {
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			*c = append(*c, id)
		}
	}
	return nil
}

// ParseFlags parses configuration flags from args.
//
// Flags:
//
//	-a feed API address in format [host]:[port]
//	-r remote service base URL
//	-t remote service bearer token
//	-d database DSN
//	-c/-config JSON or YAML file path with configs
//	-collections comma separated collection ids
//	-page-size delta page size
//	-concurrency number of collections synced at once
//	-conflict-policy last_writer_wins | remote_wins | local_wins
//	-sync-interval background sync period (e.g., "1m")
//	-request-timeout outbound request timeout (e.g., "30s")
//	-hash-key security hash key
//	-token-sign-key feed API token signing key
//	-export-sink export sink: file | s3
//	-export-dir file sink directory
//	-log-file rotating log file path
//	-log-level log level
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("mirror-keeper", flag.ContinueOnError)

	var serverAddress NetAddress
	var collections collectionList
	var remoteAddress, remoteToken string
	var databaseDSN string
	var configPath string
	var pageSize, concurrency int
	var conflictPolicy string
	var syncInterval, requestTimeout time.Duration
	var hashKey, tokenSignKey string
	var exportSink, exportDir string
	var logFile, logLevel string

	fs.Var(&serverAddress, "a", "Feed API net address host:port")
	fs.StringVar(&remoteAddress, "r", "", "Remote service base URL")
	fs.StringVar(&remoteToken, "t", "", "Remote service bearer token")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&configPath, "c", "", "Config file path")
	fs.StringVar(&configPath, "config", "", "Config file path (alias)")
	fs.Var(&collections, "collections", "Comma separated collection ids")
	fs.IntVar(&pageSize, "page-size", 0, "Delta page size")
	fs.IntVar(&concurrency, "concurrency", 0, "Collections synced at once")
	fs.StringVar(&conflictPolicy, "conflict-policy", "", "Conflict policy")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Sync interval (e.g., 1m)")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.StringVar(&hashKey, "hash-key", "", "Security hash key")
	fs.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	fs.StringVar(&exportSink, "export-sink", "", "Export sink: file or s3")
	fs.StringVar(&exportDir, "export-dir", "", "File sink directory")
	fs.StringVar(&logFile, "log-file", "", "Log file path")
	fs.StringVar(&logLevel, "log-level", "", "Log level")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &StructuredConfig{
		App: App{
			HashKey: hashKey,
		},
		Adapter: Adapter{
			HTTPAddress:    remoteAddress,
			Token:          remoteToken,
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Sync: Sync{
			Collections:    collections,
			PageSize:       pageSize,
			Concurrency:    concurrency,
			ConflictPolicy: conflictPolicy,
			Interval:       syncInterval,
		},
		Server: Server{
			HTTPAddress:  serverAddress.String(),
			TokenSignKey: tokenSignKey,
		},
		Export: Export{
			Sink: exportSink,
			Dir:  exportDir,
		},
		Log: Log{
			Level: logLevel,
			File:  logFile,
		},
		FilePath: configPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
