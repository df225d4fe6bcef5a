// Package config parses startup flags for the ndscppd daemon, following
// the flag.String/Int/Bool style used throughout the corpus (no
// viper/cobra anywhere in the retrieved examples).
package config

import "flag"

// Config holds the daemon's startup configuration.
type Config struct {
	// Addr is the HTTP read-API listen address.
	Addr string
	// TargetFPS is the render loop's target frame rate.
	TargetFPS float64
	// QueueSize is the bounded outbound frame queue capacity per channel.
	QueueSize int
	// Discover enables mDNS discovery of LED controllers.
	Discover bool
}

// Parse parses args (typically os.Args[1:]) into a Config.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("ndscppd", flag.ContinueOnError)

	addr := fs.String("addr", ":7777", "HTTP read-API listen address")
	fps := fs.Float64("fps", 30, "target render loop frame rate")
	queue := fs.Int("queue", 8, "per-channel outbound frame queue capacity")
	discover := fs.Bool("discover", false, "enable mDNS discovery of LED controllers")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &Config{
		Addr:      *addr,
		TargetFPS: *fps,
		QueueSize: *queue,
		Discover:  *discover,
	}, nil
}
