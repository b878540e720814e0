package backend

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_ReadConfig_BacksUpMalformed(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, configFile)
	os.WriteFile(cfgPath, []byte("[Picker\nbroken"), 0644)

	a := &App{configDir: dir}
	a.readConfig()
	if a.IsFirstLaunch() {
		t.Error("existing config should not count as first launch")
	}
	if a.Config.Picker.UploadButtonTitle != "Upload" {
		t.Error("expected defaults after malformed config")
	}
	if _, err := os.Stat(filepath.Join(dir, configFile+".bak")); err != nil {
		t.Errorf("expected backup of malformed config: %v", err)
	}
}

func Test_ReadConfig_FirstLaunch(t *testing.T) {
	dir := t.TempDir()
	a := &App{configDir: dir}
	a.readConfig()
	if !a.IsFirstLaunch() {
		t.Error("missing config should count as first launch")
	}
	a.SaveConfigFile()
	if _, err := os.Stat(filepath.Join(dir, configFile)); err != nil {
		t.Errorf("config not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, configFile+".bak")); err == nil {
		t.Error("no backup expected on first launch")
	}
}

func Test_Clamp(t *testing.T) {
	for _, tt := range []struct{ in, want int }{{0, 1}, {5, 5}, {900, 500}} {
		if got := clamp(tt.in, 1, 500); got != tt.want {
			t.Errorf("clamp(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if _, err := parsePositiveInt("0"); err == nil {
		t.Error("expected error for 0")
	}
	if v, err := parsePositiveInt("3"); err != nil || v != 3 {
		t.Errorf("parsePositiveInt(3) = %d, %v", v, err)
	}
}
