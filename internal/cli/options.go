// Package cli implements the hosplan command line: schedule trips described
// in YAML files without a database.
package cli

// Options is the root command. The struct tags are interpreted by
// github.com/jessevdk/go-flags.
type Options struct {
	ORSKey     string `long:"ors-key" env:"ORS_API_KEY" description:"OpenRouteService API key for legs missing from the trip file"`
	ORSBaseURL string `long:"ors-url" env:"ORS_BASE_URL" description:"OpenRouteService base URL"`
	Verbose    bool   `short:"v" long:"verbose" description:"log routing calls to stderr"`

	Schedule *ScheduleCmd `command:"schedule" description:"Schedule one trip and print its daily logs"`
	Batch    *BatchCmd    `command:"batch" description:"Schedule many trips in parallel and print a summary"`
}

// ScheduleCmd schedules a single trip file.
type ScheduleCmd struct {
	File   string `short:"f" long:"file" required:"true" description:"trip YAML file"`
	Format string `long:"format" default:"text" choice:"text" choice:"json" choice:"csv" description:"output format"`
}

// BatchCmd schedules every trip file given as an argument.
type BatchCmd struct {
	Workers int `short:"w" long:"workers" default:"4" description:"scheduling goroutines"`
	Args    struct {
		Files []string `positional-arg-name:"FILE" required:"1"`
	} `positional-args:"yes"`
}

// NewOptions returns Options with every sub-command allocated, so flags
// may precede the command name.
func NewOptions() *Options {
	return &Options{Schedule: &ScheduleCmd{}, Batch: &BatchCmd{}}
}
