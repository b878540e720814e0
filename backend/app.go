package backend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/20after4/configdir"
	"github.com/dweymouth/librarypicker/backend/mediaprovider/local"
	"github.com/dweymouth/librarypicker/backend/metrics"
	"github.com/otiai10/copy"
)

const (
	configFile   = "config.toml"
	portableDir  = "librarypicker_portable"
	metadataFile = "metadata.db"
	capturesDir  = "captures"
)

var ErrNoLibraryRoot = errors.New("no library root directory configured")

type App struct {
	Config          *Config
	Library         *local.Provider
	ImageManager    *ImageManager
	CaptureImporter *CaptureImporter

	appName      string
	configDir    string
	cacheDir     string
	portableMode bool

	isFirstLaunch bool // set by config file reader
	bgrndCtx      context.Context
	cancel        context.CancelFunc
	metricsServer *http.Server

	cfgMu          sync.Mutex
	lastWrittenCfg Config
}

func StartupApp(appName string) (*App, error) {
	var confDir, cacheDir string
	portableMode := false
	if p := checkPortablePath(); p != "" {
		confDir = filepath.Join(p, "config")
		cacheDir = filepath.Join(p, "cache")
		portableMode = true
	} else {
		confDir = configdir.LocalConfig(appName)
		cacheDir = configdir.LocalCache(appName)
	}
	// ensure config and cache dirs exist
	configdir.MakePath(confDir)
	configdir.MakePath(cacheDir)

	log.Printf("Starting %s...", appName)
	log.Printf("Using config dir: %s", confDir)
	log.Printf("Using cache dir: %s", cacheDir)

	a := &App{
		appName:      appName,
		configDir:    confDir,
		cacheDir:     cacheDir,
		portableMode: portableMode,
	}
	a.bgrndCtx, a.cancel = context.WithCancel(context.Background())
	a.readConfig()
	ApplyCLIArgs(a.Config)
	a.startConfigWriter(a.bgrndCtx)

	if err := a.initLibrary(); err != nil {
		a.cancel()
		return nil, err
	}

	a.Config.Application.ThumbnailSize = clamp(a.Config.Application.ThumbnailSize, 64, 512)
	a.ImageManager = NewImageManager(a.bgrndCtx, a.Library, cacheDir, a.Config.Application.ThumbnailSize)
	a.Config.Application.MaxImageCacheSizeMB = clamp(a.Config.Application.MaxImageCacheSizeMB, 1, 500)
	a.ImageManager.SetMaxOnDiskCacheSizeBytes(int64(a.Config.Application.MaxImageCacheSizeMB) * 1_048_576)
	a.Library.OnLibraryChanged(a.ImageManager.Clear)

	captureDir := a.Config.Library.CaptureDir
	if captureDir == "" {
		captureDir = filepath.Join(cacheDir, capturesDir)
	}
	a.CaptureImporter = NewCaptureImporter(captureDir, a.Library.Metadata())

	if addr := a.Config.Application.MetricsAddr; addr != "" {
		a.startMetricsServer(addr)
	}
	return a, nil
}

func (a *App) initLibrary() error {
	c := a.Config.Library
	if c.RootDir == "" {
		return ErrNoLibraryRoot
	}
	opts := local.Options{
		Root:         c.RootDir,
		UseExiftool:  c.UseExiftool,
		UseFFmpeg:    c.UseFFmpeg,
		WatchChanges: c.WatchChanges,
	}
	if c.UseMetadataStore {
		opts.MetadataDBPath = filepath.Join(a.cacheDir, metadataFile)
	}
	lib, err := local.New(a.bgrndCtx, opts)
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	log.Printf("Using library root: %s", lib.Root())
	a.Library = lib
	return nil
}

func (a *App) startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	a.metricsServer = &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.Printf("Serving metrics on %s/metrics", addr)
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server: %v", err)
		}
	}()
}

func (a *App) IsFirstLaunch() bool {
	return a.isFirstLaunch
}

func (a *App) IsPortableMode() bool {
	return a.portableMode
}

func checkPortablePath() string {
	if p, err := os.Executable(); err == nil {
		pdirPath := filepath.Join(filepath.Dir(p), portableDir)
		if s, err := os.Stat(pdirPath); err == nil && s.IsDir() {
			return pdirPath
		}
	}
	return ""
}

func (a *App) readConfig() {
	cfgPath := a.configFilePath()
	var cfgExists bool
	if _, err := os.Stat(cfgPath); err == nil {
		cfgExists = true
	}
	a.isFirstLaunch = !cfgExists
	cfg, err := ReadConfigFile(cfgPath)
	if err != nil {
		if cfgExists {
			log.Printf("Error reading app config file: %v", err)
			backupCfgName := fmt.Sprintf("%s.bak", configFile)
			log.Printf("Config file may be malformed: copying to %s", backupCfgName)
			_ = copy.Copy(cfgPath, filepath.Join(a.configDir, backupCfgName))
		}
		cfg = DefaultConfig()
	}
	a.Config = cfg
}

// periodically save config file so abnormal exit won't lose settings
func (a *App) startConfigWriter(ctx context.Context) {
	tick := time.NewTicker(2 * time.Minute)
	go func() {
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				a.cfgMu.Lock()
				if !reflect.DeepEqual(&a.lastWrittenCfg, a.Config) {
					a.saveConfigLocked()
				}
				a.cfgMu.Unlock()
			}
		}
	}()
}

func (a *App) Shutdown() {
	a.cancel()
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		a.metricsServer.Shutdown(ctx)
		cancel()
	}
	if a.Library != nil {
		if err := a.Library.Close(); err != nil {
			log.Printf("error closing library: %v", err)
		}
	}
	a.SaveConfigFile()
}

func (a *App) SaveConfigFile() {
	a.cfgMu.Lock()
	defer a.cfgMu.Unlock()
	a.saveConfigLocked()
}

func (a *App) saveConfigLocked() {
	if err := a.Config.WriteConfigFile(a.configFilePath()); err != nil {
		log.Printf("failed to write config file: %v", err)
		return
	}
	a.lastWrittenCfg = *a.Config
}

func (a *App) configFilePath() string {
	return filepath.Join(a.configDir, configFile)
}

func clamp(i, min, max int) int {
	if i < min {
		i = min
	} else if i > max {
		i = max
	}
	return i
}

func parsePositiveInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, fmt.Errorf("must be at least 1, got %d", v)
	}
	return v, nil
}
