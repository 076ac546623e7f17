/*
Copyright © 2018-2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/blacktop/fa/internal/config"
	"github.com/blacktop/fa/pkg/commands"
	"github.com/blacktop/fa/pkg/host"
	"github.com/blacktop/fa/pkg/host/macho"
	"github.com/blacktop/fa/pkg/host/memory"
	"github.com/blacktop/fa/pkg/interp"
)

// session is one loaded input plus the interpreter evaluating it.
type session struct {
	conf   *config.Config
	interp *interp.Interpreter
	host   host.Host
}

// RunContext returns the interpreter run settings from the config.
func (s *session) RunContext() interp.RunContext {
	return s.conf.RunContext()
}

func (s *session) Close() error {
	if c, ok := s.host.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func openHost(conf *config.Config, path string) (host.Host, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if conf.Host.Raw {
		return memory.Open(path, conf.Host.Base)
	}
	m, err := macho.Open(path, conf.Host.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("%w (use --raw to load a flat binary)", err)
	}
	return m, nil
}

// newSession builds an interpreter for binary. An empty binary yields an
// interpreter without a host.
func newSession(binary string) (*session, error) {
	conf, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	var h host.Host
	if binary != "" {
		h, err = openHost(conf, binary)
		if err != nil {
			return nil, err
		}
		log.WithField("file", binary).Debug("Loaded input")
	}

	i, err := interp.New(&interp.Config{
		Registry:       commands.Default(),
		Host:           h,
		DefaultAliases: commands.DefaultAliases(),
	})
	if err != nil {
		return nil, err
	}

	return &session{conf: conf, interp: i, host: h}, nil
}
