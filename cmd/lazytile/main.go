package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/l1jgo/lazytile/internal/config"
	"github.com/l1jgo/lazytile/internal/core/event"
	coresys "github.com/l1jgo/lazytile/internal/core/system"
	"github.com/l1jgo/lazytile/internal/data"
	"github.com/l1jgo/lazytile/internal/handler"
	"github.com/l1jgo/lazytile/internal/lazy"
	gonet "github.com/l1jgo/lazytile/internal/net"
	"github.com/l1jgo/lazytile/internal/net/packet"
	"github.com/l1jgo/lazytile/internal/persist"
	"github.com/l1jgo/lazytile/internal/scene"
	"github.com/l1jgo/lazytile/internal/scripting"
	"github.com/l1jgo/lazytile/internal/spatial"
	"github.com/l1jgo/lazytile/internal/system"
	"github.com/l1jgo/lazytile/internal/viewport"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             lazytile  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        延遲生成 · 視窗內容管理器          \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m服務:\033[0m %s\n\n", serverName)
}

// displayWidth counts CJK runes as two columns.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r > 0x7F {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func printSection(title string) {
	lineLen := 46 - displayWidth(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - displayWidth(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main logic ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/lazytile.toml"
	if p := os.Getenv("LAZYTILE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Scene, event bus and lazy manager
	bus := event.NewBus()
	sc := scene.New(log)
	index, err := spatial.New(cfg.Grid.Index, cfg.Grid.CellSize)
	if err != nil {
		return fmt.Errorf("spatial index: %w", err)
	}
	manager := lazy.NewManager(lazy.Options{
		TileWidth:  cfg.Grid.TileWidth,
		TileHeight: cfg.Grid.TileHeight,
		Buffer:     cfg.Grid.Buffer,
		Throttle:   cfg.Grid.Throttle,
		Index:      index,
		Groups:     sc.GroupFactory(),
		Bus:        bus,
		Log:        log,
	})

	// 4. Lua generators
	printSection("內容生成器")
	luaEngine, err := scripting.NewEngine(cfg.Content.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	if err := luaEngine.Bind(manager); err != nil {
		return fmt.Errorf("bind generators: %w", err)
	}
	printStat("Lua 生成器", len(luaEngine.Kinds()))
	printStat("群組", len(manager.Registry().Classes()))
	fmt.Println()

	// 5. Static placements
	printSection("資料載入")
	table, err := data.LoadPlacementTable(cfg.Content.Placements)
	if err != nil {
		return fmt.Errorf("load placements: %w", err)
	}
	if err := manager.AddContentBatch(fromTable(table.Placements())); err != nil {
		return fmt.Errorf("register placements: %w", err)
	}
	printStat("靜態內容", table.Count())

	// 6. Optional PostgreSQL store
	var persistSys *system.PersistenceSystem
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL 連線成功")

		version, err := persist.RunMigrations(ctx, db)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("資料庫遷移完成 (版本 %d)", version))

		rows, err := persist.NewContentRepo(db).LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("load stored content: %w", err)
		}
		if err := manager.AddContentBatch(fromRows(rows)); err != nil {
			return fmt.Errorf("register stored content: %w", err)
		}
		printStat("資料庫內容", len(rows))

		trimEvery := int(time.Minute / cfg.Loop.TickRate)
		persistSys = system.NewPersistenceSystem(persist.NewJournalRepo(db), cfg.Database.JournalKeep, trimEvery, log)
	}
	printStat("座標", manager.Stats().Entries)
	fmt.Println()

	// 7. Camera and first visibility pass
	camera := viewport.NewCamera(cfg.Camera.Width, cfg.Camera.Height, cfg.Camera.MinZoom, cfg.Camera.MaxZoom)
	if err := manager.Initialize(camera); err != nil {
		// A failing generator leaves its coordinate inactive; keep serving.
		log.Error("初始視窗生成失敗", zap.Error(err))
	}
	defer manager.Dispose()

	// 8. Systems
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(manager)
	reportEvery := int(10 * time.Second / cfg.Loop.TickRate)
	runner.Register(system.NewTelemetrySystem(bus, manager, sc, log, reportEvery))
	if persistSys != nil {
		runner.Register(persistSys)
	}
	runner.Register(system.NewCleanupSystem(sc))

	// 9. Feed server
	var netServer *gonet.Server
	if cfg.Feed.Enabled {
		pktReg := packet.NewRegistry(log)
		deps := &handler.Deps{
			Manager: manager,
			Camera:  camera,
			Config:  cfg,
			Log:     log,
		}
		if persistSys != nil {
			deps.Journal = persistSys
		}
		handler.RegisterAll(pktReg, deps)

		netServer, err = gonet.NewServer(cfg.Feed.BindAddress, gonet.SessionOptions{
			InQueueSize:      cfg.Feed.InQueueSize,
			OutQueueSize:     cfg.Feed.OutQueueSize,
			PacketsPerSecond: cfg.Feed.PacketsPerSecond,
			WriteTimeout:     cfg.Feed.WriteTimeout,
			ReadTimeout:      cfg.Feed.ReadTimeout,
			MaxFrameSize:     cfg.Feed.MaxFrameSize,
			RequireAuth:      cfg.Feed.PasswordHash != "",
		}, log)
		if err != nil {
			return fmt.Errorf("feed server: %w", err)
		}
		go netServer.AcceptLoop()
		runner.Register(system.NewInputSystem(netServer, pktReg, gonet.NewSessionStore(), cfg.Feed.MaxPacketsPerTick, log))
	}

	// 10. Start loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Loop.TickRate)
	defer ticker.Stop()

	// 在兩次 tick 之間輪詢 feed 輸入。
	inputTicker := time.NewTicker(5 * time.Millisecond)
	defer inputTicker.Stop()

	printSection("服務就緒")
	if netServer != nil {
		printReady(fmt.Sprintf("feed 監聽位址 %s", netServer.Addr().String()))
	}
	printReady(fmt.Sprintf("主迴圈啟動 (tick: %s, 系統: %d)", cfg.Loop.TickRate, runner.Len()))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Loop.TickRate)
		case <-inputTicker.C:
			runner.TickPhase(coresys.PhaseInput, 0)
		case sig := <-shutdownCh:
			log.Info("收到關閉信號", zap.String("signal", sig.String()))
			if netServer != nil {
				netServer.Shutdown()
			}
			if persistSys != nil {
				persistSys.Flush()
			}
			log.Info("服務已停止")
			return nil
		}
	}
}

func fromTable(ps []data.Placement) []lazy.Placement {
	out := make([]lazy.Placement, len(ps))
	for i, p := range ps {
		out[i] = lazy.Placement{Coord: p.Coord, Descriptor: p.Descriptor}
	}
	return out
}

func fromRows(rows []persist.ContentRow) []lazy.Placement {
	out := make([]lazy.Placement, len(rows))
	for i, r := range rows {
		out[i] = lazy.Placement{Coord: r.Coord, Descriptor: r.Descriptor}
	}
	return out
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
