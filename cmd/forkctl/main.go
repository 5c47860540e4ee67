// Command forkctl drives the fork-choice core from the command line: it
// opens (or creates) a store, wires the hard chain engine to the easy
// chain peer, and exercises append/query/tip operations against them.
// It exists to give the core a runnable surface, the way the teacher's
// cmd/rubin-node gives node a runnable surface.
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hardchain-labs/node/internal/block"
	"github.com/hardchain-labs/node/internal/blockcache"
	"github.com/hardchain-labs/node/internal/blockstore"
	"github.com/hardchain-labs/node/internal/chainengine"
	"github.com/hardchain-labs/node/internal/digest"
	"github.com/hardchain-labs/node/internal/easychain"
	"github.com/hardchain-labs/node/internal/kv"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// config is forkctl's effective configuration, validated before any
// store is touched.
type config struct {
	HardDataDir string `json:"hard_datadir"`
	EasyDataDir string `json:"easy_datadir"`
	LogLevel    string `json:"log_level"`
	MinHeight   uint64 `json:"min_height"`
	MaxHeight   uint64 `json:"max_height"`
	MaxOrphans  int    `json:"max_orphans"`
	Hysteresis  uint64 `json:"reorg_hysteresis"`
	CacheSize   int    `json:"cache_size"`
}

func defaultConfig() config {
	def := chainengine.DefaultConfig()
	return config{
		HardDataDir: "forkctl-data/hard",
		EasyDataDir: "forkctl-data/easy",
		LogLevel:    "info",
		MinHeight:   def.MinHeight,
		MaxHeight:   def.MaxHeight,
		MaxOrphans:  def.MaxOrphans,
		Hysteresis:  def.ReorgHysteresis,
		CacheSize:   256,
	}
}

func validateConfig(cfg config) error {
	if cfg.HardDataDir == "" {
		return fmt.Errorf("hard datadir must not be empty")
	}
	if cfg.EasyDataDir == "" {
		return fmt.Errorf("easy datadir must not be empty")
	}
	if cfg.HardDataDir == cfg.EasyDataDir {
		return fmt.Errorf("hard and easy datadirs must differ")
	}
	if cfg.MaxOrphans <= 0 {
		return fmt.Errorf("max-orphans must be positive")
	}
	if cfg.CacheSize <= 0 {
		return fmt.Errorf("cache-size must be positive")
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	return nil
}

func run(args []string, stdout, stderr io.Writer) int {
	defaults := defaultConfig()
	cfg := defaults

	fs := flag.NewFlagSet("forkctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.HardDataDir, "hard-datadir", defaults.HardDataDir, "hard chain store directory")
	fs.StringVar(&cfg.EasyDataDir, "easy-datadir", defaults.EasyDataDir, "easy chain store directory")
	fs.StringVar(&cfg.LogLevel, "log-level", defaults.LogLevel, "log level: debug|info|warn|error")
	fs.Uint64Var(&cfg.MinHeight, "min-height", defaults.MinHeight, "admission window: blocks below height-min are rejected")
	fs.Uint64Var(&cfg.MaxHeight, "max-height", defaults.MaxHeight, "admission window: blocks above height+max are rejected")
	fs.IntVar(&cfg.MaxOrphans, "max-orphans", defaults.MaxOrphans, "orphan pool capacity")
	fs.Uint64Var(&cfg.Hysteresis, "reorg-hysteresis", defaults.Hysteresis, "extra depth a side branch needs over the canonical branch to trigger a reorg")
	fs.IntVar(&cfg.CacheSize, "cache-size", defaults.CacheSize, "shared block cache capacity")
	dryRun := fs.Bool("dry-run", false, "print effective config and exit")

	appendParent := fs.String("append-parent", "", "append: hex parent hash")
	appendHeight := fs.Uint64("append-height", 0, "append: block height")
	appendSalt := fs.String("append-salt", "", "append: hex payload salt used to vary the merkle root")
	queryHash := fs.String("query", "", "query: hex block hash to resolve")
	queryHeight := fs.Int64("query-height", -1, "query: canonical height to resolve")
	showTip := fs.Bool("tip", false, "print the current canonical tip and height")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := validateConfig(cfg); err != nil {
		fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return 2
	}

	if *dryRun {
		if err := printConfig(stdout, cfg); err != nil {
			fmt.Fprintf(stderr, "config encode failed: %v\n", err)
			return 1
		}
		return 0
	}

	log := newLogger(cfg.LogLevel, stderr)

	if err := os.MkdirAll(cfg.HardDataDir, 0o750); err != nil {
		fmt.Fprintf(stderr, "hard datadir create failed: %v\n", err)
		return 2
	}
	if err := os.MkdirAll(cfg.EasyDataDir, 0o750); err != nil {
		fmt.Fprintf(stderr, "easy datadir create failed: %v\n", err)
		return 2
	}

	p := digest.DevProvider{}

	hardRaw, err := kv.Open(cfg.HardDataDir + "/chain.db")
	if err != nil {
		fmt.Fprintf(stderr, "hard store open failed: %v\n", err)
		return 2
	}
	defer hardRaw.Close()
	easyRaw, err := kv.Open(cfg.EasyDataDir + "/chain.db")
	if err != nil {
		fmt.Fprintf(stderr, "easy store open failed: %v\n", err)
		return 2
	}
	defer easyRaw.Close()

	hardStore := blockstore.New(hardRaw, p)
	easyStore := blockstore.New(easyRaw, p)

	peer, err := easychain.New(p, easyStore, log)
	if err != nil {
		fmt.Fprintf(stderr, "easy chain init failed: %v\n", err)
		return 2
	}

	cache, err := blockcache.New(cfg.CacheSize)
	if err != nil {
		fmt.Fprintf(stderr, "cache init failed: %v\n", err)
		return 2
	}

	engineCfg := chainengine.Config{
		MinHeight:       cfg.MinHeight,
		MaxHeight:       cfg.MaxHeight,
		MaxOrphans:      cfg.MaxOrphans,
		ReorgHysteresis: cfg.Hysteresis,
	}
	engine, err := chainengine.New(engineCfg, p, hardStore, cache, peer, log)
	if err != nil {
		fmt.Fprintf(stderr, "chain engine init failed: %v\n", err)
		return 2
	}

	if *appendParent != "" {
		b, err := decodeBlock(p, *appendParent, *appendHeight, *appendSalt)
		if err != nil {
			fmt.Fprintf(stderr, "malformed append arguments: %v\n", err)
			return 2
		}
		if err := engine.AppendBlock(b); err != nil {
			fmt.Fprintf(stderr, "append failed: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "appended: hash=%s height=%d\n", hex.EncodeToString(b.Hash[:]), b.Height)
	}

	if *queryHash != "" {
		hash, err := decodeHash(*queryHash)
		if err != nil {
			fmt.Fprintf(stderr, "malformed query hash: %v\n", err)
			return 2
		}
		got, ok, err := engine.Query(hash)
		if err != nil {
			fmt.Fprintf(stderr, "query failed: %v\n", err)
			return 1
		}
		if !ok {
			fmt.Fprintf(stdout, "query: not found\n")
		} else {
			printBlock(stdout, "query", got)
		}
	}

	if *queryHeight >= 0 {
		got, ok, err := engine.QueryByHeight(uint64(*queryHeight))
		if err != nil {
			fmt.Fprintf(stderr, "query by height failed: %v\n", err)
			return 1
		}
		if !ok {
			fmt.Fprintf(stdout, "query_by_height: not found\n")
		} else {
			printBlock(stdout, "query_by_height", got)
		}
	}

	if *showTip || (!*dryRun && *appendParent == "" && *queryHash == "" && *queryHeight < 0) {
		tip := engine.CanonicalTip()
		fmt.Fprintf(stdout, "tip: hash=%s height=%d pool=%d\n", hex.EncodeToString(tip.Hash[:]), engine.Height(), engine.PoolLen())
	}

	return 0
}

func decodeHash(s string) (block.Hash, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return block.Hash{}, err
	}
	if len(raw) != 32 {
		return block.Hash{}, fmt.Errorf("hash must be 32 bytes, got %d", len(raw))
	}
	var h block.Hash
	copy(h[:], raw)
	return h, nil
}

func decodeBlock(p digest.Provider, parentHex string, height uint64, saltHex string) (*block.Block, error) {
	parent, err := decodeHash(parentHex)
	if err != nil {
		return nil, fmt.Errorf("parent: %w", err)
	}
	var merkleRoot block.Hash
	if saltHex != "" {
		salt, err := hex.DecodeString(saltHex)
		if err != nil {
			return nil, fmt.Errorf("salt: %w", err)
		}
		copy(merkleRoot[:], salt)
	} else {
		var heightBuf [8]byte
		for i := 0; i < 8; i++ {
			heightBuf[i] = byte(height >> (8 * (7 - i)))
		}
		copy(merkleRoot[:], heightBuf[:])
	}
	return block.New(parent, true, height, merkleRoot, time.Now().UTC()).Seal(p), nil
}

func printBlock(w io.Writer, label string, b *block.Block) {
	fmt.Fprintf(w, "%s: hash=%s parent=%s height=%d\n", label, hex.EncodeToString(b.Hash[:]), hex.EncodeToString(b.ParentHash[:]), b.Height)
}

func printConfig(w io.Writer, cfg config) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

func newLogger(level string, out io.Writer) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logrus.NewEntry(logger)
}
