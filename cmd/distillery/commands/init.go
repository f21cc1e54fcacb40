package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andreapavoni/distillery/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample configuration file",
	Long: `Write a commented sample configuration file.

Without --config the file is written to the default location
($XDG_CONFIG_HOME/distillery/config.yaml). An existing file is never
overwritten unless --force is given.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	var path string
	var err error

	if cfgPath := GetConfigFile(); cfgPath != "" {
		path = cfgPath
		err = config.InitConfigToPath(cfgPath, initForce)
	} else {
		path, err = config.InitConfig(initForce)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Configuration file created at: %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration to list your stores")
	fmt.Println("  2. Place migration files under <data_root>/<app>/<store>/migrations")
	fmt.Println("  3. Run: distillery migrate")
	return nil
}
