//go:build windows

// Command shiftsync-tray keeps the CSV uploader resident in the Windows
// system tray: it rescans the watch folder on a timer, supports a manual
// "Upload Now", and feeds sync status to the local dashboard bridge.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"syscall"
	"time"
	"unsafe"

	"github.com/getlantern/systray"
	"github.com/pkg/browser"
	"golang.org/x/sys/windows/registry"

	"github.com/schedulehq/desktop-tools/internal/bridge"
	"github.com/schedulehq/desktop-tools/internal/upload"
)

const (
	dashboardURL = "https://app.schedulehq.com"
	bridgePort   = "8247"
	regKey       = `Software\Microsoft\Windows\CurrentVersion\Run`
	regValueName = "ShiftSync"
)

// Version is set at build time via -ldflags "-X main.Version=1.2.0"
var Version = "0.0.0"

var (
	cfg        upload.Config
	batch      *upload.Batch
	statusSrv  *bridge.StatusServer
	statusItem *systray.MenuItem
)

// ── Single instance lock ────────────────────────────────────────────────

var (
	kernel32     = syscall.NewLazyDLL("kernel32.dll")
	createMutexW = kernel32.NewProc("CreateMutexW")
	getLastError = kernel32.NewProc("GetLastError")
)

const errorAlreadyExists = 183

func acquireSingleInstanceLock() bool {
	name, _ := syscall.UTF16PtrFromString("Global\\ShiftSyncTray")
	ret, _, _ := createMutexW.Call(0, 0, uintptr(unsafe.Pointer(name)))
	if ret == 0 {
		return false
	}
	code, _, _ := getLastError.Call()
	if code == errorAlreadyExists {
		log.Println("Another instance is already running. Exiting.")
		return false
	}
	return true
}

// ── Auto-launch helpers ─────────────────────────────────────────────────

func isAutoLaunchEnabled() bool {
	k, err := registry.OpenKey(registry.CURRENT_USER, regKey, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()

	_, _, err = k.GetStringValue(regValueName)
	return err == nil
}

func setAutoLaunch(enabled bool) {
	if enabled {
		exePath, err := os.Executable()
		if err != nil {
			log.Printf("[auto-launch] Failed to get exe path: %v", err)
			return
		}
		k, err := registry.OpenKey(registry.CURRENT_USER, regKey, registry.SET_VALUE)
		if err != nil {
			log.Printf("[auto-launch] Failed to open registry key: %v", err)
			return
		}
		defer k.Close()

		if err := k.SetStringValue(regValueName, `"`+exePath+`"`); err != nil {
			log.Printf("[auto-launch] Failed to set registry value: %v", err)
		}
	} else {
		k, err := registry.OpenKey(registry.CURRENT_USER, regKey, registry.SET_VALUE)
		if err != nil {
			return
		}
		defer k.Close()
		k.DeleteValue(regValueName)
	}
}

// ── Sync runs ───────────────────────────────────────────────────────────

func runBatch(trigger string) {
	statusItem.SetTitle("Uploading…")
	sum, err := batch.Run(context.Background())
	if err != nil {
		log.Printf("[sync] %s run finished with failures: %v", trigger, err)
	}
	statusSrv.Broadcast(map[string]interface{}{
		"type":     "summary",
		"uploaded": sum.Uploaded,
		"failed":   sum.Failed,
	})

	status := fmt.Sprintf("Last run: %d uploaded, %d failed", sum.Uploaded, sum.Failed)
	statusItem.SetTitle(status)
	systray.SetTooltip("ShiftSync – " + status)
}

func runScanLoop() {
	// Initial run after a short delay (let the app settle)
	time.Sleep(10 * time.Second)
	runBatch("startup")

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for range ticker.C {
		runBatch("scheduled")
	}
}

// ── Tray ────────────────────────────────────────────────────────────────

func onReady() {
	systray.SetIcon(trayIconICO())
	tooltip := "ShiftSync"
	if Version != "0.0.0" {
		tooltip += " v" + Version
	}
	systray.SetTooltip(tooltip)

	titleItem := systray.AddMenuItem(tooltip, "")
	titleItem.Disable()

	statusItem = systray.AddMenuItem("Waiting for first scan…", "")
	statusItem.Disable()

	systray.AddSeparator()

	uploadItem := systray.AddMenuItem("Upload Now", "Scan the watch folder and upload immediately")
	openItem := systray.AddMenuItem("Open ScheduleHQ", "Open the dashboard in your browser")
	autoStartItem := systray.AddMenuItemCheckbox("Start on Login", "Launch automatically when you log in", isAutoLaunchEnabled())
	quitItem := systray.AddMenuItem("Quit", "Exit ShiftSync")

	statusSrv = bridge.NewStatusServer()
	statusSrv.Start(bridgePort)

	batch = &upload.Batch{
		Dir:    cfg.WatchDir,
		Prefix: cfg.Prefix,
		Store:  upload.NewHTTPStore(cfg.Endpoint, cfg.Token),
		Notify: func(r upload.FileResult) {
			msg := map[string]interface{}{"type": "file", "name": r.Name, "ok": r.Err == nil}
			if r.Err != nil {
				msg["error"] = r.Err.Error()
			}
			statusSrv.Broadcast(msg)
		},
	}

	go runScanLoop()

	// Handle menu clicks
	go func() {
		for {
			select {
			case <-uploadItem.ClickedCh:
				go runBatch("manual")
			case <-openItem.ClickedCh:
				browser.OpenURL(dashboardURL)
			case <-autoStartItem.ClickedCh:
				if autoStartItem.Checked() {
					autoStartItem.Uncheck()
					setAutoLaunch(false)
				} else {
					autoStartItem.Check()
					setAutoLaunch(true)
				}
			case <-quitItem.ClickedCh:
				systray.Quit()
			}
		}
	}()
}

func onExit() {
	if statusSrv != nil {
		statusSrv.Stop()
	}
}

// ── Entry point ─────────────────────────────────────────────────────────

func main() {
	if !acquireSingleInstanceLock() {
		os.Exit(0)
	}

	var err error
	cfg, err = upload.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	systray.Run(onReady, onExit)
}
