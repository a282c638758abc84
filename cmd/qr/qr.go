// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt/v2"
	"github.com/rs/zerolog"

	"github.com/tomoacademy/qr"
	"github.com/tomoacademy/qr/api"
	"github.com/tomoacademy/qr/coding"
)

const versionNumber = "0.9.0"

var g = struct {
	fn      string // output filename
	config  string // configuration file
	listen  string // HTTP listen address
	verbose bool   // debug logging
	bg, fg  colour // colour
}{
	bg: colour{c: qr.DefaultStyle.Background},
	fg: colour{c: qr.DefaultStyle.Foreground},
}

func printUsage(w io.Writer) {
	cl := getopt.CommandLine
	fmt.Fprint(w, "Badge symbol generator\nUsage: ", cl.Program(), " ",
		cl.UsageLine(), ` [string ...]
If no string is given, data is read from standard input and the final
newline is stripped.  With -L, symbols are served over HTTP instead.

`)
	var b bytes.Buffer
	cl.PrintOptions(&b)
	w.Write(b.Bytes())
}

type opt func()

func (opt) String() string                    { return "" }
func (o opt) Set(string, getopt.Option) error { o(); return nil }

func usage() {
	printUsage(os.Stderr)
	os.Exit(2)
}

func help() {
	printUsage(os.Stdout)
	os.Exit(0)
}

const copyright = `Copyright (c) 2011 The Go Authors
Copyright (c) 2024 Vadim Vygonets`

func version() {
	fmt.Println("qr version " + versionNumber + "\n" + copyright)
	os.Exit(0)
}

type colour struct {
	c   qr.Colour
	set bool
}

func (c *colour) String() string { return c.c.String() }

func (c *colour) Set(s string, _ getopt.Option) error {
	v, err := qr.ParseColour(s)
	if err != nil {
		return err
	}
	c.c, c.set = v, true
	return nil
}

// output is a symbol and the settings it is written with.
type output struct {
	*qr.Code
	r    *qr.Renderer
	size int
}

var formatNames = []string{
	"url", "png", "pbm", "pbmi", "utf8", "utf8i", "ascii", "asciii",
}

var formats = map[string]struct {
	write func(*output, io.Writer) error
	rev   bool
}{
	"url":    {writeURL, false},
	"png":    {writePNG, false},
	"pbm":    {writePBM, false},
	"pbmi":   {writePBM, true},
	"utf8":   {writeUTF8, false},
	"utf8i":  {writeUTF8, true},
	"ascii":  {writeASCII, false},
	"asciii": {writeASCII, true},
}

func writeURL(o *output, w io.Writer) error {
	url, err := o.r.Render(o.Grid(), o.size)
	if err != nil {
		return err
	}
	if url == "" {
		return qr.ErrNoSurface
	}
	_, err = fmt.Fprintln(w, url)
	return err
}

func writePNG(o *output, w io.Writer) error {
	b, err := o.r.PNG(o.Grid(), o.size)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func writePBM(o *output, w io.Writer) error { return o.EncodePBM(w) }

func writeUTF8(o *output, w io.Writer) error {
	_, err := fmt.Fprint(w, o.Code)
	return err
}

func writeASCII(o *output, w io.Writer) error {
	_, err := io.WriteString(w, o.ASCII())
	return err
}

// parseFlags parses the command line and returns the configuration
// with flags applied over the configuration file.
func parseFlags() (*Config, error) {
	getopt.SetUsage(usage)
	getopt.Flag(opt(help), 'h', "show this help").SetFlag()
	getopt.Flag(opt(version), 'V', "print version and copyright").SetFlag()
	getopt.FlagLong(&g.bg, "background", 'B', `background colour; see -F`,
		"RGB[A]|name")
	getopt.FlagLong(&g.fg, "foreground", 'F', `foreground colour `+
		`as 3, 4, 6 or 8 hex digits or a colour name; `+
		`only for types url and png`, "RGB[A]|name")
	getopt.Flag(&g.config, 'c', "configuration file", "file")
	getopt.Flag(&g.listen, 'L', `serve symbols over HTTP on the `+
		`given address, e.g. ":8080"`, "addr")
	getopt.Flag(&g.verbose, 'v', "log debug messages")
	fno := getopt.Flag(&g.fn, 'o', `output file, or "-" for `+
		`standard output`, "file")
	size := getopt.Unsigned('s', qr.DefaultSize,
		&getopt.UnsignedLimit{Base: 0, Bits: 16, Min: 1, Max: qr.MaxPixels},
		`image size in pixels for types url and png`, "size")
	scale := getopt.Unsigned('x', 4,
		&getopt.UnsignedLimit{Base: 0, Bits: 16, Min: 1, Max: 1 << 12},
		`image pixels per module for type pbm[i]`, "scale")
	border := getopt.Unsigned('m', 0,
		&getopt.UnsignedLimit{Base: 0, Bits: 16, Min: 0, Max: 1 << 12},
		`quiet zone in modules for types pbm[i], utf8[i] and ascii[i]`,
		"margin")
	ff := getopt.Enum('t', formatNames, "", `output format, one of: `+
		strings.Join(formatNames, ", ")+
		`; types with "i" appended have colours inverted; `+
		`if no -o is given and standard output is a TTY, `+
		`default is utf8, otherwise url`, "type")

	getopt.Parse()
	cfg, err := loadConfig(g.config)
	if err != nil {
		return nil, err
	}
	if getopt.IsSet('s') {
		cfg.Size = int(*size)
	}
	if getopt.IsSet('x') {
		cfg.Scale = int(*scale)
	}
	if getopt.IsSet('m') {
		cfg.Border = int(*border)
	}
	if getopt.IsSet('t') {
		cfg.Format = *ff
	}
	if getopt.IsSet('L') {
		cfg.Listen = g.listen
	}
	if g.bg.set {
		cfg.Style.Background = g.bg.c
	}
	if g.fg.set {
		cfg.Style.Foreground = g.fg.c
	}
	if cfg.Format == "" {
		if !fno.Seen() && isatty.IsTerminal(os.Stdout.Fd()) {
			cfg.Format = "utf8"
		} else {
			cfg.Format = "url"
		}
	}
	if g.fn == "-" {
		g.fn = ""
	}
	return cfg, nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Logger()
}

func main() {
	cfg, err := parseFlags()
	log := newLogger(g.verbose)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}
	log.Debug().Interface("config", cfg).Msg("configuration loaded")

	if cfg.Listen != "" {
		if err := serve(cfg, log); err != nil {
			log.Fatal().Err(err).Msg("server")
		}
		return
	}

	text, err := readText(getopt.Args(), os.Stdin)
	if err != nil {
		log.Fatal().Err(err).Msg("reading input")
	}
	if err := write(cfg, text); err != nil {
		log.Fatal().Err(err).Str("type", cfg.Format).Msg("writing symbol")
	}
}

// readText joins args with spaces, or reads r if args is empty and
// strips the final newline.
func readText(args []string, r io.Reader) (string, error) {
	if len(args) != 0 {
		return strings.Join(args, " "), nil
	}
	var b strings.Builder
	if _, err := io.Copy(&b, r); err != nil {
		return "", err
	}
	s, _ := strings.CutSuffix(
		strings.ReplaceAll(b.String(), "\r\n", "\n"), "\n")
	return s, nil
}

func write(cfg *Config, text string) error {
	var w io.WriteCloser = os.Stdout
	if g.fn != "" {
		var err error
		if w, err = os.OpenFile(g.fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC,
			0666); err != nil {
			return err
		}
	}
	err := emit(w, cfg, text)
	if g.fn != "" {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// emit writes the symbol for text to w as configured by cfg.
func emit(w io.Writer, cfg *Config, text string) error {
	f, ok := formats[cfg.Format]
	if !ok {
		return fmt.Errorf("%q: unknown output type", cfg.Format)
	}
	c, err := coding.Build(text)
	if err != nil {
		return err
	}
	o := &output{
		Code: qr.NewCode(c),
		r:    &qr.Renderer{Style: cfg.Style},
		size: cfg.Size,
	}
	o.Scale = cfg.Scale
	o.Border = cfg.Border
	o.Reverse = f.rev
	return f.write(o, w)
}

func serve(cfg *Config, log zerolog.Logger) error {
	srv := &http.Server{
		Addr: cfg.Listen,
		Handler: api.NewRouter(&api.Server{
			Renderer: &qr.Renderer{Style: cfg.Style},
			MaxSize:  cfg.MaxSize,
			Log:      log,
			Version:  versionNumber,
		}),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		errc <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case <-quit:
	}

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
