package main

import (
	"log"
	"modelhub/pkg/catalog"
	"modelhub/pkg/channels"
	_ "modelhub/pkg/channels/autoload" // 自動註冊 Channels
	"modelhub/pkg/config"
	"modelhub/pkg/handler"
	"modelhub/pkg/history"
	"modelhub/pkg/hub"
	"modelhub/pkg/invoker"
	"modelhub/pkg/monitor"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	log.Println("==========================================")

	// --- 0. 讀取設定檔 ---
	cfg, sysCfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v\n", err)
	}
	monitor.SetupSlog(sysCfg.LogLevel)

	// --- 1. 能力目錄 ---
	cat := catalog.New(cfg.ProxyBaseURL)
	log.Printf("✅ Catalog ready with %d capabilities\n", len(cat.List()))

	// --- 1a. 歷史紀錄管理 ---
	var store *history.Store
	if cfg.HistoryPath != "" {
		store, err = history.Open(cfg.HistoryPath)
		if err != nil {
			log.Printf("⚠️ Warning: history disabled: %v\n", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	// --- 2. 核心服務 ---
	mon := monitor.NewCLIMonitor()
	inv := invoker.NewHTTPInvoker(sysCfg.HTTPTimeoutMs)
	svc := handler.NewCapabilityHandler(cat, inv, sysCfg, store, mon)

	// --- 3. Channels ---
	chs := channels.LoadFromConfig(cfg.Channels, &channels.Deps{
		System:  sysCfg,
		History: store,
	})
	if len(chs) == 0 {
		log.Fatalf("❌ No channels could be started, check config.json\n")
	}

	// --- 4. Hub 初始化（使用 Builder 模式）---
	h, err := hub.NewHubBuilder().
		WithMonitor(mon).
		WithService(svc).
		WithChannel(chs...).
		Build()
	if err != nil {
		log.Fatalf("❌ Failed to build hub: %v\n", err)
	}

	// 監聽系統信號
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 等待信號
	<-sigChan
	log.Println("\nReceived shutdown signal. Stopping services...")

	// 執行清理
	h.StopAll()
	log.Println("Bye!")
}
