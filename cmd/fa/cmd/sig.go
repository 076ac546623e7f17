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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/apex/log"
	"github.com/blacktop/fa/internal/colors"
	"github.com/blacktop/fa/pkg/signature"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(sigCmd)
	sigCmd.AddCommand(sigShowCmd)
	sigCmd.AddCommand(sigSaveCmd)
	sigCmd.AddCommand(sigListCmd)

	sigSaveCmd.Flags().StringArrayP("instruction", "i", nil, "instruction line (repeatable)")
	sigSaveCmd.Flags().StringP("file", "f", "", "read instruction lines from a file ('-' for stdin)")
	sigSaveCmd.Flags().StringP("description", "d", "", "signature description")
	sigSaveCmd.Flags().String("min", "", "minimum supported target version")
	sigSaveCmd.Flags().String("max", "", "maximum supported target version")
	sigSaveCmd.MarkFlagsMutuallyExclusive("instruction", "file")
	viper.BindPFlag("sig.save.instruction", sigSaveCmd.Flags().Lookup("instruction"))
	viper.BindPFlag("sig.save.file", sigSaveCmd.Flags().Lookup("file"))
	viper.BindPFlag("sig.save.description", sigSaveCmd.Flags().Lookup("description"))
	viper.BindPFlag("sig.save.min", sigSaveCmd.Flags().Lookup("min"))
	viper.BindPFlag("sig.save.max", sigSaveCmd.Flags().Lookup("max"))
}

// sigCmd represents the sig command
var sigCmd = &cobra.Command{
	Use:     "sig",
	Aliases: []string{"signature"},
	Short:   "Manage project signatures",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// sigShowCmd represents the sig show command
var sigShowCmd = &cobra.Command{
	Use:           "show <SYMBOL>",
	Short:         "Print the signatures defining a symbol",
	Example:       `❯ fa sig show _panic --project ios`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession("")
		if err != nil {
			return err
		}
		sigs, err := s.interp.LoadByName(s.RunContext(), args[0])
		if err != nil {
			return err
		}
		for _, sig := range sigs {
			data, err := json.MarshalIndent(sig, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(colors.Faint().Sprintf("// %s", sig.Path))
			if colors.Enabled() {
				if err := quick.Highlight(os.Stdout, string(data)+"\n", "json", "terminal256", "nord"); err != nil {
					return err
				}
			} else {
				fmt.Println(string(data))
			}
		}
		return nil
	},
}

// sigSaveCmd represents the sig save command
var sigSaveCmd = &cobra.Command{
	Use:   "save <SYMBOL>",
	Short: "Save instructions as a new signature",
	Example: heredoc.Doc(`
		# Existing definitions are never overwritten: a second save writes _panic.1.sig
		❯ fa sig save _panic -i 'find-str "panic: %s" --null-terminated' -i 'single' --description "kernel panic"
		❯ fa sig save _panic --file draft.txt --min 17.0 --max 18.9`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		lines := viper.GetStringSlice("sig.save.instruction")
		if file := viper.GetString("sig.save.file"); file != "" {
			var err error
			lines, err = readLines(file)
			if err != nil {
				return fmt.Errorf("failed to read instructions: %w", err)
			}
		}
		if len(lines) == 0 {
			return fmt.Errorf("no instructions given (use --instruction or --file)")
		}

		sig := &signature.Signature{
			Name:         args[0],
			Instructions: lines,
			Description:  viper.GetString("sig.save.description"),
		}
		if lo, hi := viper.GetString("sig.save.min"), viper.GetString("sig.save.max"); lo != "" || hi != "" {
			sig.Version = &signature.Version{Min: lo, Max: hi}
			if err := sig.Version.Validate(); err != nil {
				return err
			}
		}

		s, err := newSession("")
		if err != nil {
			return err
		}
		path, err := s.interp.Save(s.RunContext(), sig)
		if err != nil {
			return err
		}
		log.WithField("file", path).Infof("Saved signature %s", sig.Name)
		return nil
	},
}

// sigListCmd represents the sig list command
var sigListCmd = &cobra.Command{
	Use:           "list",
	Aliases:       []string{"ls"},
	Short:         "List the signatures of the project",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession("")
		if err != nil {
			return err
		}
		rc := s.RunContext()
		sigs, err := s.interp.Signatures(rc)
		if err != nil {
			return err
		}
		if len(sigs) == 0 {
			log.Warnf("no signatures in %s", rc.ProjectDir())
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, sig := range sigs {
			rel, err := filepath.Rel(rc.ProjectDir(), sig.Path)
			if err != nil {
				rel = sig.Path
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", colors.Bold().Sprint(sig.Name), colors.Faint().Sprint(rel), sig.Description)
		}
		return w.Flush()
	},
}
