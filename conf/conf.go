package conf

import (
	"fmt"

	"github.com/squareup/unsaferow/charset"
	"github.com/squareup/unsaferow/errors"
)

const (
	DefaultServerEncoding         = charset.UTF8
	DefaultClientEncoding         = charset.UTF8
	DefaultInitialVarDataCapacity = 64
	DefaultMetricsHTTPListenAddr  = "localhost:2112"

	CommentOptionsReject = "reject"
	CommentOptionsIgnore = "ignore"
)

// Config configures the row encoder. Field tags allow it to be embedded in a kong
// command line, and to be read from json.
type Config struct {
	ServerEncoding         string `json:"server_encoding,omitempty" help:"Encoding text values are held in" default:"UTF8"`
	ClientEncoding         string `json:"client_encoding,omitempty" help:"Encoding text values are written in" default:"UTF8"`
	StrictTranscoding      bool   `json:"strict_transcoding,omitempty" help:"Fail on characters with no equivalent in the client encoding instead of replacing them"`
	DisableInt128          bool   `json:"disable_int128,omitempty" help:"Reject numerics with precision 19 to 38 instead of writing them as 128-bit integers"`
	InitialVarDataCapacity int    `json:"initial_var_data_capacity,omitempty" help:"Initial capacity in bytes of the variable length region" default:"64"`
	UnknownCommentOptions  string `json:"unknown_comment_options,omitempty" help:"What to do with unknown options in a leading sql comment" enum:"reject,ignore" default:"reject"`
	MetricsEnabled         bool   `json:"metrics_enabled,omitempty" help:"Export encoder metrics over http"`
	MetricsHTTPListenAddr  string `json:"metrics_http_listen_addr,omitempty" help:"Address to serve prometheus metrics on" default:"localhost:2112"`
}

func (c *Config) Validate() error {
	if _, err := charset.Lookup(c.ServerEncoding); err != nil {
		return errors.NewInvalidConfigurationError(fmt.Sprintf("ServerEncoding %q is not a known encoding", c.ServerEncoding))
	}
	if _, err := charset.Lookup(c.ClientEncoding); err != nil {
		return errors.NewInvalidConfigurationError(fmt.Sprintf("ClientEncoding %q is not a known encoding", c.ClientEncoding))
	}
	if c.InitialVarDataCapacity < 0 {
		return errors.NewInvalidConfigurationError("InitialVarDataCapacity must be >= 0")
	}
	if c.UnknownCommentOptions != CommentOptionsReject && c.UnknownCommentOptions != CommentOptionsIgnore {
		return errors.NewInvalidConfigurationError("UnknownCommentOptions must be one of reject, ignore")
	}
	if c.MetricsEnabled && c.MetricsHTTPListenAddr == "" {
		return errors.NewInvalidConfigurationError("MetricsHTTPListenAddr must be specified when metrics are enabled")
	}
	return nil
}

func NewDefaultConfig() *Config {
	return &Config{
		ServerEncoding:         DefaultServerEncoding,
		ClientEncoding:         DefaultClientEncoding,
		InitialVarDataCapacity: DefaultInitialVarDataCapacity,
		UnknownCommentOptions:  CommentOptionsReject,
		MetricsHTTPListenAddr:  DefaultMetricsHTTPListenAddr,
	}
}
