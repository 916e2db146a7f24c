package forward

import (
	"fmt"
	"io"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Options tunes the engine's own timeouts and buffer sizes, as distinct
// from the listener/routing configuration cmd/proxyd owns. It mirrors the
// shape of the teacher's per-component *Options structs (HTTPBackendOptions,
// HTTPFrontendOptions) but covers this package's knobs only.
type Options struct {
	DialTimeout       time.Duration `yaml:"dialTimeout"`
	TunnelIdleTimeout time.Duration `yaml:"tunnelIdleTimeout"`
	TunnelWriteStall  time.Duration `yaml:"tunnelWriteStall"`
	ReadBufferSize    int           `yaml:"readBufferSize"`
}

// DefaultOptions returns the spec's literal timeouts and buffer size.
func DefaultOptions() Options {
	return Options{
		DialTimeout:       5 * time.Second,
		TunnelIdleTimeout: 30 * time.Second,
		TunnelWriteStall:  5 * time.Second,
		ReadBufferSize:    8 * 1024,
	}
}

func (o *Options) setDefaults() {
	d := DefaultOptions()
	if o.DialTimeout <= 0 {
		o.DialTimeout = d.DialTimeout
	}
	if o.TunnelIdleTimeout <= 0 {
		o.TunnelIdleTimeout = d.TunnelIdleTimeout
	}
	if o.TunnelWriteStall <= 0 {
		o.TunnelWriteStall = d.TunnelWriteStall
	}
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = d.ReadBufferSize
	}
}

// LoadOptionsFrom decodes Options from yaml, applying defaults to any zero
// field left unset in the document. Unset fields are valid yaml: an
// operator can override only the timeout they care about.
func LoadOptionsFrom(r io.Reader) (opts Options, err error) {
	d := yaml.NewDecoder(r)
	if err = d.Decode(&opts); err != nil && err != io.EOF {
		err = fmt.Errorf("engine options yaml decode error: %w", err)
		return
	}
	err = nil
	opts.setDefaults()
	return
}

// LoadOptionsFromFile is the file-backed convenience wrapper around
// LoadOptionsFrom, following pkg/config.LoadFromFile's shape.
func LoadOptionsFromFile(fileName string) (opts Options, err error) {
	f, err := os.Open(fileName)
	if err != nil {
		err = fmt.Errorf("engine options file %q open error: %w", fileName, err)
		return
	}
	defer f.Close()
	return LoadOptionsFrom(f)
}
