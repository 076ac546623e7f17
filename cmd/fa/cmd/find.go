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

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/fa/internal/colors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var colorAddr = colors.Bold().SprintfFunc()

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().BoolP("decremental", "d", false, "keep the last non-empty address set when an instruction empties it")
	viper.BindPFlag("find.decremental", findCmd.Flags().Lookup("decremental"))
}

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find <SYMBOL> <BINARY>",
	Short: "Locate a symbol using its signatures",
	Example: heredoc.Doc(`
		# Find _panic in a kernelcache using the 'ios' project signatures
		❯ fa find _panic kernelcache.release.iPhone15,2 --project ios
		0xfffffff0072a1b40
		# Find in a raw blob loaded at 0x10000
		❯ fa find _start firmware.bin --raw --base 0x10000`),
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(args[1])
		if err != nil {
			return err
		}
		defer s.Close()

		addrs, err := s.interp.Find(s.RunContext(), args[0], viper.GetBool("find.decremental"))
		if err != nil {
			return err
		}
		if len(addrs) == 0 {
			return fmt.Errorf("no address found for %s", args[0])
		}
		if len(addrs) > 1 {
			log.Warnf("%s is ambiguous: %d addresses", args[0], len(addrs))
		}
		for _, addr := range addrs {
			fmt.Println(colorAddr("%#x", addr))
		}
		return nil
	},
}
