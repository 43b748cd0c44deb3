package cli

import (
	"io"
	"os"
)

// Output formats accepted by the commands.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Options carries the command-line configuration shared by the commands.
type Options struct {
	SchemaPath string
	ConfigPath string

	// RedisAddr stages the configuration in Redis under RedisPrefix and
	// checks it there, serialized by a Redis lock.
	RedisAddr   string
	RedisPrefix string

	LogLevel  string
	LogFormat string

	// WritePath receives the normalized configuration after a check.
	WritePath string
	Output    string

	Stdout io.Writer
	Stderr io.Writer
}

func (o Options) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}
	return o.Stdout
}

func (o Options) stderr() io.Writer {
	if o.Stderr == nil {
		return os.Stderr
	}
	return o.Stderr
}
