package main

import (
	"fmt"
	"os"

	"github.com/emuhub/emulator-hub/logger"
	"github.com/emuhub/emulator-hub/settings"
)

func main() {
	_, workingFolder, err := settings.GetWorkingFolder()
	if err != nil {
		fmt.Printf("failed to detect working folder - %v\n", err)
		os.Exit(1)
	}

	appSettings := settings.NewAppSettings(workingFolder)

	sugar := logger.GetSugar(appSettings.BaseFolder(), appSettings.Debug)
	defer logger.Defer()

	CreateConsole(appSettings.BaseFolder(), appSettings, sugar).Start()
}
