package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hexcrawl/internal/config"
	"github.com/cory-johannsen/hexcrawl/internal/server"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	dir := t.TempDir()
	cfg.Content = config.ContentConfig{
		Biomes: filepath.Join(dir, "missing-biomes.csv"),
		Trails: filepath.Join(dir, "missing-trails.csv"),
		Modes:  filepath.Join(dir, "missing-modes.csv"),
		Party:  filepath.Join(dir, "missing-party.csv"),
	}
	cfg.Storage.Driver = config.DriverFile
	cfg.Storage.Path = filepath.Join(dir, "campaigns")
	return cfg
}

func TestNewApp_FallbackContentBuildsConfiguredRectangle(t *testing.T) {
	cfg := testConfig(t)
	cfg.Map.Width, cfg.Map.Height = 4, 3

	a, err := newApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 12, a.session.Grid().Len())
	assert.Len(t, a.session.Party().Members, 2)
	assert.Equal(t, "normal", a.session.DefaultMode())
}

func TestNewApp_RadiusWithElevation(t *testing.T) {
	cfg := testConfig(t)
	cfg.Map.Shape = config.ShapeRadius
	cfg.Map.Radius = 2
	cfg.Map.Elevation = true

	a, err := newApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 19, a.session.Grid().Len())
}

func TestNewApp_ScriptRuleRequiresScriptDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Travel.LeaderRule = config.LeaderRuleScript

	_, err := newApp(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script_dir")
}

func TestNewApp_ScriptRuleAdjustsQuotes(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cost.lua"),
		[]byte("function adjust_cost(raw, speed, con, mode, biome) return raw + 2 end\n"), 0o644))
	cfg.Content.ScriptDir = dir
	cfg.Travel.LeaderRule = config.LeaderRuleScript

	a, err := newApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	var out bytes.Buffer
	require.NoError(t, a.run(context.Background(), strings.NewReader("quote s\n"), &out))
	assert.Contains(t, out.String(), "cost 5")
}

func TestRun_PrintsResultsAndErrorsUntilQuit(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	in := strings.NewReader("s\nbogus\n# comment\nquit\ntime\n")
	var out bytes.Buffer
	require.NoError(t, a.run(context.Background(), in, &out))

	got := out.String()
	assert.Contains(t, got, "moved S to (0,1)")
	assert.Contains(t, got, `error: unknown command "bogus"`)
	assert.NotContains(t, got, "days elapsed", "lines after quit must not run")
}

func TestRun_SaveThenLoadThroughFileStore(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	var out bytes.Buffer
	require.NoError(t, a.run(context.Background(), strings.NewReader("paint 1 1 forest\nsave trip\n"), &out))
	m := regexp.MustCompile(`saved "trip" as ([0-9a-f-]{36})`).FindStringSubmatch(out.String())
	require.Len(t, m, 2, out.String())

	out.Reset()
	require.NoError(t, a.run(context.Background(), strings.NewReader("campaigns\nload "+m[1]+"\nlook\n"), &out))
	got := out.String()
	assert.Contains(t, got, "trip")
	assert.Contains(t, got, `loaded "trip": 120 tiles`)
	assert.NotContains(t, got, "error:")
}

func TestRun_StopsOnCancelledContext(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	require.NoError(t, a.run(ctx, strings.NewReader("s\n"), &out))
	assert.NotContains(t, out.String(), "moved")
}

func TestLoadConfig_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DriverFile, cfg.Storage.Driver)
}

func TestNewApp_ShippedDevConfigAndContent(t *testing.T) {
	cfg, err := config.Load("../../configs/dev.yaml")
	require.NoError(t, err)
	root := "../.."
	cfg.Content.Biomes = filepath.Join(root, cfg.Content.Biomes)
	cfg.Content.Trails = filepath.Join(root, cfg.Content.Trails)
	cfg.Content.Modes = filepath.Join(root, cfg.Content.Modes)
	cfg.Content.Party = filepath.Join(root, cfg.Content.Party)
	cfg.Content.ScriptDir = filepath.Join(root, cfg.Content.ScriptDir)
	cfg.Storage.Path = t.TempDir()

	a, err := newApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, a.session.Catalogs().Biomes.Has("hills"))
	assert.Len(t, a.session.Party().Members, 3)

	// Arden leads with con 14, so the script shaves half a point off mountains:
	// raw 2 + 0 + 3 - 0.5 = 4.5, which rounds to 4.
	var out bytes.Buffer
	require.NoError(t, a.run(context.Background(), strings.NewReader("paint 0 1 mountain\nquote s\n"), &out))
	assert.Contains(t, out.String(), "raw 4.50, cost 4")
}

func TestRegister_StdinConsoleEndsLifecycleOnQuit(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	lc := server.NewLifecycle(zap.NewNop())
	var out bytes.Buffer
	a.register(context.Background(), lc, config.ConsoleConfig{}, strings.NewReader("n\nquit\n"), &out)

	done := make(chan error, 1)
	go func() { done <- lc.Run(context.Background()) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not end after quit")
	}
	assert.Contains(t, out.String(), "moved N")
}

func TestRegister_TelnetConsoleStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Console.Listen = "127.0.0.1:0"
	a, err := newApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	lc := server.NewLifecycle(zap.NewNop())
	a.register(context.Background(), lc, cfg.Console, strings.NewReader(""), io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not stop the telnet console")
	}
}
