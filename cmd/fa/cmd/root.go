/*
Copyright © 2018-2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/blacktop/fa/internal/colors"
	"github.com/blacktop/fa/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// Verbose boolean flag for verbose logging
	Verbose bool
	// Color boolean flag for colorized output
	Color bool
	// NoColor boolean flag to disable colorized output
	NoColor bool
	// AppVersion stores the plugin's version
	AppVersion string
	// AppBuildTime stores the plugin's build time
	AppBuildTime string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fa",
	Short: "Find symbols in binaries using composable signatures",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}
		switch {
		case NoColor:
			off := false
			colors.Init(&off)
		case viper.GetBool("color"):
			on := true
			colors.Init(&on)
		}
	},
	Version: AppVersion,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (%s)", AppVersion, AppBuildTime)
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	log.SetHandler(clihander.Default)

	cobra.OnInitialize(initConfig)

	// Flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/fa/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&Color, "color", false, "force colorized output")
	rootCmd.PersistentFlags().BoolVar(&NoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().StringP("signatures", "s", "", "signatures root folder (default is $HOME/.config/fa/signatures)")
	rootCmd.PersistentFlags().StringP("project", "p", "", "project folder below the signatures root")
	rootCmd.PersistentFlags().Bool("strict", false, "abort on the first failing instruction")
	rootCmd.PersistentFlags().StringP("target-version", "t", "", "skip signatures whose version range excludes this version")
	rootCmd.PersistentFlags().String("aliases", "", "global alias file (default is the built-in table)")
	rootCmd.PersistentFlags().String("alias-mode", "", "alias matching: 'prefix' or 'token'")
	rootCmd.PersistentFlags().Bool("raw", false, "treat <binary> as a raw blob instead of a MachO")
	rootCmd.PersistentFlags().String("base", "0", "load address of a --raw blob")
	rootCmd.PersistentFlags().Int("cache-size", 0, "symbol lookup cache size")
	rootCmd.PersistentFlags().MarkHidden("cache-size")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	viper.BindPFlag("signatures-root", rootCmd.PersistentFlags().Lookup("signatures"))
	viper.BindPFlag("project", rootCmd.PersistentFlags().Lookup("project"))
	viper.BindPFlag("strict", rootCmd.PersistentFlags().Lookup("strict"))
	viper.BindPFlag("target-version", rootCmd.PersistentFlags().Lookup("target-version"))
	viper.BindPFlag("alias.global", rootCmd.PersistentFlags().Lookup("aliases"))
	viper.BindPFlag("alias.mode", rootCmd.PersistentFlags().Lookup("alias-mode"))
	viper.BindPFlag("host.raw", rootCmd.PersistentFlags().Lookup("raw"))
	viper.BindPFlag("host.base", rootCmd.PersistentFlags().Lookup("base"))
	viper.BindPFlag("host.cache-size", rootCmd.PersistentFlags().Lookup("cache-size"))
	// Settings
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.SetDefaults()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := config.Dir()
		cobra.CheckErr(err)

		// Search config in ~/.config/fa with name "config" (without extension).
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		// used by 'fa project select' when no config file exists yet
		viper.SetConfigFile(filepath.Join(dir, "config.yaml"))
	}

	viper.SetEnvPrefix("fa")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}
}
