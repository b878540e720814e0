package backend

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

type AppConfig struct {
	WindowWidth         int
	WindowHeight        int
	MaxImageCacheSizeMB int
	ThumbnailSize       int
	// host:port to serve Prometheus metrics on; empty disables
	MetricsAddr string
}

type LibraryConfig struct {
	RootDir          string
	CaptureDir       string // defaults to <cache dir>/captures
	UseExiftool      bool
	UseFFmpeg        bool
	UseMetadataStore bool
	WatchChanges     bool
}

type PickerConfig struct {
	MaximumSelectionsAllowed int
	TakePhotoEnabled         bool
	MaxVideoDurationSecs     float64
	CancelButtonTitle        string
	UploadButtonTitle        string
	CancelButtonColor        string // #RRGGBB
	UploadButtonColor        string // #RRGGBB
	ItemsInRow               int
}

// HostConfig holds the capabilities the demo host
// advertises to the picker.
type HostConfig struct {
	SendPhotoEnabled bool
	SendVideoEnabled bool
}

type Config struct {
	Application AppConfig
	Library     LibraryConfig
	Picker      PickerConfig
	Host        HostConfig
}

func DefaultConfig() *Config {
	root := ""
	if home, err := os.UserHomeDir(); err == nil {
		root = filepath.Join(home, "Pictures")
	}
	return &Config{
		Application: AppConfig{
			WindowWidth:         420,
			WindowHeight:        720,
			MaxImageCacheSizeMB: 50,
			ThumbnailSize:       200,
		},
		Library: LibraryConfig{
			RootDir:          root,
			UseExiftool:      true,
			UseFFmpeg:        true,
			UseMetadataStore: true,
			WatchChanges:     true,
		},
		Picker: PickerConfig{
			MaximumSelectionsAllowed: 1,
			TakePhotoEnabled:         true,
			MaxVideoDurationSecs:     20,
			CancelButtonTitle:        "Cancel",
			UploadButtonTitle:        "Upload",
			CancelButtonColor:        "#4A4A4A",
			UploadButtonColor:        "#FE3B2F",
			ItemsInRow:               3,
		},
		Host: HostConfig{
			SendPhotoEnabled: true,
			SendVideoEnabled: false,
		},
	}
}

func ReadConfigFile(filepath string) (*Config, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c := DefaultConfig()
	if err := toml.NewDecoder(f).Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}

var writeLock sync.Mutex

func (c *Config) WriteConfigFile(filepath string) error {
	if !writeLock.TryLock() {
		return nil // another write in progress
	}
	defer writeLock.Unlock()

	b, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, b, 0644)
}
