package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wdgames/gameshelf/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `                                    _          _  __
   __ _  __ _ _ __ ___   ___  ___| |__   ___| |/ _|
  / _' |/ _' | '_ ' _ \ / _ \/ __| '_ \ / _ \ | |_
 | (_| | (_| | | | | | |  __/\__ \ | | |  __/ |  _|
  \__, |\__,_|_| |_| |_|\___||___/_| |_|\___|_|_|
  |___/

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gameshelf",
	Short: "Plan HDD game orders from a shared catalog.",
	Long: LOGO + `gameshelf manages a game-library catalog stored as a JSON document in a
GitHub repository: browse and search it, plan a selection of games against an
HDD capacity budget, export order summaries as text or an image, and
administer the catalog document itself.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gameshelf.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("dbpath", "", "Path to the local cache database (default is ~/.config/gameshelf/gameshelf.sqlite)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".gameshelf")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.gameshelf.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("github.owner", "")
	viper.SetDefault("github.repo", "wd-games")
	viper.SetDefault("github.token", "")
	viper.SetDefault("github.path", "steamrip_games.json")
	viper.SetDefault("github.branch", "main")
	viper.SetDefault("storage.capacity_gb", 500)

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
