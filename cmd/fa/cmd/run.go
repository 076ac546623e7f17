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
	"bufio"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/fa/internal/colors"
	"github.com/blacktop/fa/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringArrayP("instruction", "i", nil, "instruction line to run (repeatable)")
	runCmd.Flags().StringP("file", "f", "", "read instruction lines from a file ('-' for stdin)")
	runCmd.Flags().BoolP("decremental", "d", false, "keep the last non-empty address set when an instruction empties it")
	runCmd.Flags().Bool("history", false, "print the address set after every instruction")
	runCmd.MarkFlagsMutuallyExclusive("instruction", "file")
	viper.BindPFlag("run.instruction", runCmd.Flags().Lookup("instruction"))
	viper.BindPFlag("run.file", runCmd.Flags().Lookup("file"))
	viper.BindPFlag("run.decremental", runCmd.Flags().Lookup("decremental"))
	viper.BindPFlag("run.history", runCmd.Flags().Lookup("history"))
}

func readLines(path string) ([]string, error) {
	f := os.Stdin
	if path != "-" {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
	}
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <BINARY>",
	Short: "Run ad-hoc instructions against a binary",
	Example: heredoc.Doc(`
		# Find every reference to a string and keep the first
		❯ fa run kernelcache -i 'find-str "IOUserClient" --null-terminated' -i 'single'
		# Run the instructions of a draft signature
		❯ fa run kernelcache --file draft.txt --history`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		lines := viper.GetStringSlice("run.instruction")
		if file := viper.GetString("run.file"); file != "" {
			var err error
			lines, err = readLines(file)
			if err != nil {
				return fmt.Errorf("failed to read instructions: %w", err)
			}
		}
		if len(lines) == 0 {
			return fmt.Errorf("no instructions given (use --instruction or --file)")
		}

		s, err := newSession(args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		rc := s.RunContext()
		rc.Decremental = viper.GetBool("run.decremental")

		res, err := s.interp.Run(rc, lines, nil)
		if viper.GetBool("run.history") && res != nil {
			log.Info("History")
			for idx, step := range res.History {
				utils.Indent(log.Info, 2)(fmt.Sprintf("%s %s", colors.Faint().Sprintf("%3d:", idx+1), step))
			}
		}
		if err != nil {
			return err
		}
		for _, addr := range res.Addresses {
			fmt.Println(colorAddr("%#x", addr))
		}
		return nil
	},
}
