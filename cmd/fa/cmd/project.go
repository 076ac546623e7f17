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
	"path/filepath"
	"slices"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/fa/internal/colors"
	"github.com/blacktop/fa/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectSelectCmd)
}

// projectCmd represents the project command
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "List or select signature projects",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// projectListCmd represents the project list command
var projectListCmd = &cobra.Command{
	Use:           "list",
	Aliases:       []string{"ls"},
	Short:         "List the projects below the signatures root",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession("")
		if err != nil {
			return err
		}
		rc := s.RunContext()
		projects, err := s.interp.ListProjects(rc)
		if err != nil {
			return err
		}
		for _, p := range projects {
			if p == rc.Project {
				fmt.Println(colors.BoldGreen().Sprintf("* %s", p))
				continue
			}
			fmt.Printf("  %s\n", p)
		}
		return nil
	},
}

// projectSelectCmd represents the project select command
var projectSelectCmd = &cobra.Command{
	Use:   "select [PROJECT]",
	Short: "Set the active project in the config file",
	Example: heredoc.Doc(`
		# Pick interactively
		❯ fa project select
		# Or by name
		❯ fa project select ios/kernel`),
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession("")
		if err != nil {
			return err
		}
		rc := s.RunContext()
		projects, err := s.interp.ListProjects(rc)
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			return fmt.Errorf("no projects found in %s", rc.Root)
		}

		var choice string
		if len(args) > 0 {
			choice = args[0]
			if !slices.Contains(projects, choice) {
				return fmt.Errorf("project %s not found in %s", choice, rc.Root)
			}
		} else {
			prompt := &survey.Select{
				Message: "Select project:",
				Options: projects,
				Default: rc.Project,
			}
			if !slices.Contains(projects, rc.Project) {
				prompt.Default = nil
			}
			if err := survey.AskOne(prompt, &choice); err == terminal.InterruptErr {
				log.Warn("Exiting...")
				return nil
			} else if err != nil {
				return err
			}
		}

		path := viper.ConfigFileUsed()
		if path == "" {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			path = filepath.Join(dir, "config.yaml")
		}
		if err := config.Set(path, "project", choice); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
		log.WithField("config", path).Infof("Selected project %s", choice)
		return nil
	},
}
