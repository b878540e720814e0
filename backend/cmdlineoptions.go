package backend

import (
	"flag"
)

var (
	MaxSelectionsCLIArg int = -1

	FlagRoot    = flag.String("root", "", "library root directory (overrides config)")
	FlagVideo   = flag.Bool("video", false, "allow picking and capturing videos")
	FlagDialog  = flag.Bool("dialog", false, "present the picker in a dialog instead of the main window")
	FlagVersion = flag.Bool("version", false, "print app version and exit")
	FlagHelp    = flag.Bool("help", false, "print command line options and exit")
)

func init() {
	flag.Func("max-selections", "maximum number of items that can be picked (1 = single select)", func(s string) error {
		v, err := parsePositiveInt(s)
		MaxSelectionsCLIArg = v
		return err
	})
}

// ApplyCLIArgs overlays command line options onto the loaded config.
// They are not persisted unless the config is later rewritten.
func ApplyCLIArgs(c *Config) {
	if *FlagRoot != "" {
		c.Library.RootDir = *FlagRoot
	}
	if *FlagVideo {
		c.Host.SendVideoEnabled = true
	}
	if MaxSelectionsCLIArg > 0 {
		c.Picker.MaximumSelectionsAllowed = MaxSelectionsCLIArg
	}
}
