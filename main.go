// Command amcsetup runs the install and uninstall steps of the ArduPilot
// Methodic Configurator installer.
package main

import "github.com/VoxDroid/amcsetup/cmd"

func main() {
	cmd.Execute()
}
