// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the termserve suggestion server and CLI.

termserve proposes index terms for a free-text query. Every query word is run through a
spelling corrector, the corrected words become prefix keys, and every term of every configured
index field that starts with a key is suggested, ranked by how many documents hold it.

# Usage

Serve msgpack requests on stdin/stdout from an index directory:

	termserve -index indexes/main

Try queries interactively, only looking at the title field:

	termserve -c -index indexes/main -fields title -limit 5

# Index directories

An index directory holds schema.toml and numbered bolt segment files:

	indexes/main/schema.toml
	indexes/main/seg_0000.db
	indexes/main/seg_0001.db

	[[field]]
	name = "title"
	analyzer = "lowercase"

# Spelling

The spell engine comes from the [spell] config section and -spell. The default "dictionary"
engine reads chunked word lists (dict_0001.bin, dict_0002.bin.zst, ...) or a text file of
"word count" lines given by -dict. While serving, the number of loaded chunks can be changed
with the set_size action.

# Flags

	-config string
	    Config file (default ~/.config/termserve/config.toml)
	-index string
	    Comma separated index directories, overriding suggest.indexes
	-fields string
	    Comma separated fields to scan, overriding suggest.fields
	-limit int
	    Number of suggestions to return
	-no-opt
	    Walk whole lexicons instead of seeking to each key
	-spell string
	    Spell engine: dictionary, fuzzy, redisearch or none
	-dict string
	    Dictionary chunk directory or word list file
	-d  Enable debug logging
	-c  Run the interactive CLI instead of the server
	-version
	    Show version
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bastiangx/termserve/internal/cli"
	"github.com/bastiangx/termserve/internal/logger"
	"github.com/bastiangx/termserve/internal/utils"
	"github.com/bastiangx/termserve/pkg/config"
	"github.com/bastiangx/termserve/pkg/server"
	"github.com/bastiangx/termserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0"
	gh      = "https://github.com/bastiangx/termserve"
)

type flags struct {
	configPath string
	indexes    string
	fields     string
	limit      int
	noOpt      bool
	spell      string
	dict       string
	debug      bool
	cli        bool
	version    bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "Config file (default ~/.config/termserve/config.toml)")
	flag.StringVar(&f.indexes, "index", "", "Comma separated index directories")
	flag.StringVar(&f.fields, "fields", "", "Comma separated fields to scan (default all)")
	flag.IntVar(&f.limit, "limit", 0, "Number of suggestions to return (default from config)")
	flag.BoolVar(&f.noOpt, "no-opt", false, "Walk whole lexicons instead of seeking to each key")
	flag.StringVar(&f.spell, "spell", "", "Spell engine: dictionary, fuzzy, redisearch or none")
	flag.StringVar(&f.dict, "dict", "", "Dictionary chunk directory or word list file")
	flag.BoolVar(&f.debug, "d", false, "Toggle debug mode")
	flag.BoolVar(&f.cli, "c", false, "Run CLI instead of the server")
	flag.BoolVar(&f.version, "version", false, "Show current version")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()
	if f.version {
		showVersion()
		return
	}
	logger.Setup(f.debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f); err != nil {
		log.Error(err)
		stop()
		os.Exit(1)
	}
}

// run manages the flow only; the packages it calls do the work.
func run(ctx context.Context, f flags) error {
	resolver, err := utils.NewPathResolver()
	if err != nil {
		return fmt.Errorf("init path resolver: %w", err)
	}

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	applyFlags(cfg, f)
	if err := cfg.Validate(); err != nil {
		return err
	}

	for i, dir := range cfg.Suggest.Indexes {
		if resolved, err := resolver.Resolve(dir); err == nil {
			cfg.Suggest.Indexes[i] = resolved
		}
	}
	if cfg.Spell.DictPath != "" {
		resolved, err := resolver.Resolve(cfg.Spell.DictPath)
		if err != nil {
			return fmt.Errorf("%w: spell.dict_path: %w", suggest.ErrConfiguration, err)
		}
		cfg.Spell.DictPath = resolved
	}
	log.Debug("Config ready", "indexes", cfg.Suggest.Indexes, "fields", cfg.Suggest.Fields,
		"limit", cfg.Suggest.Limit, "optimize", cfg.Suggest.Optimize, "spell", cfg.Spell.Engine)

	speller, err := cfg.NewSpeller(ctx)
	if err != nil {
		return fmt.Errorf("init speller: %w", err)
	}
	defer func() {
		if err := speller.Close(); err != nil {
			log.Warnf("Closing speller: %v", err)
		}
	}()

	opts := cfg.SuggestOptions()
	opts.Speller = speller.Corrector

	if f.cli {
		s, err := suggest.New(opts)
		if err != nil {
			return err
		}
		h := cli.NewInputHandler(s, cli.Options{
			MinQueryLength: 1,
			MaxQueryLength: cfg.Server.MaxQueryLen,
			Optimize:       cfg.Suggest.Optimize,
			ShowFrequency:  cfg.CLI.ShowFrequency,
		}, os.Stdin, os.Stdout)
		return ignoreCancel(h.Start(ctx))
	}

	srv, err := server.NewServer(opts, cfg, speller.Loader)
	if err != nil {
		return err
	}
	showStartupInfo(cfg)
	return ignoreCancel(srv.Start(ctx))
}

func loadConfig(f flags) (*config.Config, error) {
	if f.configPath != "" {
		log.Debugf("Using config file: %s", utils.AbsPath(f.configPath))
		return config.LoadConfig(f.configPath)
	}
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		log.Warnf("No config dir available, using defaults: %v", err)
		return config.DefaultConfig(), nil
	}
	log.Debugf("Using config file: %s", path)
	return config.InitConfig(path)
}

// applyFlags lets explicitly set flags win over the config file.
func applyFlags(cfg *config.Config, f flags) {
	if f.indexes != "" {
		cfg.Suggest.Indexes = splitList(f.indexes)
	}
	if f.fields != "" {
		cfg.Suggest.Fields = splitList(f.fields)
	}
	if f.limit != 0 {
		cfg.Suggest.Limit = f.limit
	} else if f.cli && cfg.CLI.DefaultLimit > 0 {
		cfg.Suggest.Limit = cfg.CLI.DefaultLimit
	}
	if f.noOpt {
		cfg.Suggest.Optimize = false
	}
	if f.spell != "" {
		cfg.Spell.Engine = f.spell
	}
	if f.dict != "" {
		cfg.Spell.DictPath = f.dict
	}
	if f.debug {
		cfg.Suggest.Debug = true
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "\nExiting...")
		return nil
	}
	return err
}

func showVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
	})
	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ termserve ] Index term suggestions for misspelled queries")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}

// showStartupInfo goes to stderr; stdout carries the protocol.
func showStartupInfo(cfg *config.Config) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	log.Infof("termserve %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Info("Indexes", "dirs", cfg.Suggest.Indexes)
	log.Info("Spell", "engine", cfg.Spell.Engine)
	log.Info("status: ready")
}
