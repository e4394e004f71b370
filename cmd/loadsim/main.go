package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/kestrelworks/assetkit"
	"github.com/kestrelworks/assetkit/engine"
	"github.com/kestrelworks/assetkit/track"
)

func main() {
	var (
		catalogFile = flag.String("catalog", "", "Path to JSON asset catalog")
		key         = flag.String("key", "", "Asset key to load (defaults to every key)")
		spawn       = flag.Bool("spawn", false, "Instantiate prefabs instead of just loading")
		latency     = flag.Int("latency", 2, "Frames a load stays in flight")
		fps         = flag.Int("fps", 60, "Frame steps per second")
		engVersion  = flag.String("engine-version", engine.DefaultSimVersion, "Engine version to simulate")
		verbose     = flag.Bool("v", false, "Verbose engine logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *catalogFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: loadsim -catalog <file.json> [-key name] [-spawn]")
		fmt.Fprintln(os.Stderr, "       loadsim -catalog <file.json> -i  (interactive mode)")
		os.Exit(1)
	}

	catalog, err := readCatalog(*catalogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		logger, _ := zap.NewDevelopment()
		engine.SetLogger(logger)
		track.SetLogger(logger)
	}

	eng := engine.NewSim(
		engine.WithLatency(*latency),
		engine.WithVersion(*engVersion),
	)
	eng.AddCatalog(catalog)
	defer eng.Close()

	if *interactive {
		if err := runInteractive(eng, catalog); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(eng, catalog, *key, *spawn, *fps); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func readCatalog(path string) (*engine.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return engine.ParseCatalog(data)
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

func run(eng *engine.Sim, catalog *engine.Catalog, key string, spawn bool, fps int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	go eng.Pump(ctx, time.Second/time.Duration(fps))

	colorize := term.IsTerminal(int(os.Stdout.Fd()))
	render := func(style lipgloss.Style, s string) string {
		if colorize {
			return style.Render(s)
		}
		return s
	}

	keys := make([]string, 0, len(catalog.Assets))
	byKey := make(map[string]engine.CatalogAsset, len(catalog.Assets))
	for _, a := range catalog.Assets {
		byKey[a.Key] = a
		keys = append(keys, a.Key)
	}
	if key != "" {
		if _, ok := byKey[key]; !ok {
			return fmt.Errorf("key %q not in catalog", key)
		}
		keys = []string{key}
	}

	var group assetkit.Group
	defer group.Release()

	for _, k := range keys {
		start := time.Now()
		result, err := request(ctx, eng, &group, byKey[k], spawn)
		elapsed := time.Since(start).Round(time.Millisecond)

		if err != nil {
			fmt.Printf("%-24s %s %v (%s)\n", k, render(failStyle, "FAIL"), err, elapsed)
			continue
		}
		fmt.Printf("%-24s %s %s (%s)\n", k, render(okStyle, "OK"), result, elapsed)
	}

	fmt.Printf("\nframes: %d, live instances: %d\n", eng.Frame(), eng.LiveInstances())
	return nil
}

func request(ctx context.Context, eng *engine.Sim, group *assetkit.Group, asset engine.CatalogAsset, spawn bool) (string, error) {
	if spawn && asset.Type == engine.AssetPrefab {
		h := assetkit.Instantiate[any](eng, asset.Key)
		group.Add(h)
		spawned, err := h.Await(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("spawned %s", spawned.Instance.Name()), nil
	}

	h := assetkit.Load[any](eng, asset.Key)
	group.Add(h)
	value, err := h.Await(ctx)
	if err != nil {
		return "", err
	}
	return describe(value), nil
}

func describe(value any) string {
	switch v := value.(type) {
	case *engine.Text:
		body := v.Body
		if len(body) > 40 {
			body = body[:40] + "..."
		}
		return fmt.Sprintf("text %q", body)
	case *engine.Blob:
		return fmt.Sprintf("blob (%d bytes)", len(v.Data))
	case *engine.Prefab:
		types := make([]string, 0, len(v.Specs))
		for _, s := range v.Specs {
			types = append(types, s.Type)
		}
		return fmt.Sprintf("prefab [%s]", strings.Join(types, ", "))
	}
	return fmt.Sprintf("%T", value)
}
