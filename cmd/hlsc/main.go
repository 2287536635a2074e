// Command hlsc is the high-level synthesis compiler driver: it reads a
// textual source file or an SSA program, runs the lowering pipeline in
// the conventional order, and emits one Verilog file per top-level
// module.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sarchlab/hlsc/frontend"
	"github.com/sarchlab/hlsc/hwir"
	"github.com/sarchlab/hlsc/hwir/pass"
	"github.com/sarchlab/hlsc/internal/diag"
	"github.com/sarchlab/hlsc/rtl"
	"github.com/sarchlab/hlsc/ssair"
	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML configuration accepted alongside a
// source file, generalizing the hwir.ContextBuilder knobs into an
// on-disk format instead of requiring flags for every option.
type fileConfig struct {
	OutDir       string `yaml:"out_dir"`
	DefaultWidth int    `yaml:"default_width"`
}

func loadConfig(path string) fileConfig {
	if path == "" {
		return fileConfig{}
	}
	data, err := os.ReadFile(path)
	diag.Require(err == nil, "hlsc: cannot read config %q: %v", path, err)

	var cfg fileConfig
	err = yaml.Unmarshal(data, &cfg)
	diag.Require(err == nil, "hlsc: cannot parse config %q: %v", path, err)
	return cfg
}

func main() {
	lang := flag.String("lang", "text", "front end to use for the source file: text or ssa")
	outDir := flag.String("out", "", "directory to write emitted .v files into (default: current directory)")
	configPath := flag.String("config", "", "optional YAML config file overriding output directory and default bit width")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: hlsc [-lang=text|ssa] [-out=dir] [-config=file.yaml] <source-file>")
		os.Exit(2)
	}
	srcPath := flag.Arg(0)

	cfg := loadConfig(*configPath)
	if *outDir != "" {
		cfg.OutDir = *outDir
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}

	builder := hwir.ContextBuilder{}.WithName(filepath.Base(srcPath))
	if cfg.DefaultWidth > 0 {
		builder = builder.WithDefaultWidth(cfg.DefaultWidth)
	}
	ctx := builder.Build()

	var m *hwir.Module
	switch *lang {
	case "text":
		data, err := os.ReadFile(srcPath)
		diag.Require(err == nil, "hlsc: cannot read source %q: %v", srcPath, err)
		decl := frontend.NewParser(string(data)).ParseModule()
		m = frontend.Lower(ctx, decl)
	case "ssa":
		prog := ssair.LoadYAML(srcPath)
		m = ssair.Lower(ctx, prog)
	default:
		diag.Fatalf("hlsc: unknown -lang %q, expected text or ssa", *lang)
	}

	slog.Info("hlsc: lowered module", "name", m.Name, "context", ctx.Name, "source", srcPath, "lang", *lang)

	pass.Inline(ctx, m)
	pass.DelayNormalize(ctx, m)
	pass.ChannelSynth(ctx, m)
	pass.StructuralReduce(m)
	pass.DCE(ctx, m)

	diag.Require(os.MkdirAll(cfg.OutDir, 0o755) == nil, "hlsc: cannot create output directory %q", cfg.OutDir)
	outPath := filepath.Join(cfg.OutDir, m.Name+".v")

	f, err := os.Create(outPath)
	diag.Require(err == nil, "hlsc: cannot create output file %q: %v", outPath, err)
	diag.RegisterOutputCleanup(outPath, func() { f.Close() })

	rtl.Emit(ctx, m, f)
	diag.Require(f.Close() == nil, "hlsc: error closing output file %q", outPath)

	slog.Info("hlsc: emitted RTL", "module", m.Name, "path", outPath)
}
