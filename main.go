package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dweymouth/librarypicker/backend"
	"github.com/dweymouth/librarypicker/res"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

func main() {
	flag.Parse()
	if *backend.FlagVersion {
		fmt.Println(res.AppVersionTag)
		os.Exit(0)
	}
	if *backend.FlagHelp {
		flag.Usage()
		os.Exit(0)
	}

	myApp, err := backend.StartupApp(res.AppName)
	if err != nil {
		log.Fatalf("fatal startup error: %v", err.Error())
	}

	fyneApp := app.New()

	w := float32(myApp.Config.Application.WindowWidth)
	if w <= 1 {
		w = 420
	}
	h := float32(myApp.Config.Application.WindowHeight)
	if h <= 1 {
		h = 720
	}
	window := fyneApp.NewWindow(res.DisplayName)
	newHost(myApp, window, *backend.FlagDialog).showHome()
	window.Resize(fyne.NewSize(w, h))
	window.SetCloseIntercept(func() {
		size := window.Canvas().Size()
		myApp.Config.Application.WindowWidth = int(size.Width)
		myApp.Config.Application.WindowHeight = int(size.Height)
		fyneApp.Quit()
	})
	window.Show()
	fyneApp.Run()

	log.Println("Running shutdown tasks...")
	myApp.Shutdown()
}
