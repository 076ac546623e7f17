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
	"strings"
	"text/tabwriter"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/blacktop/fa/internal/colors"
	"github.com/blacktop/fa/pkg/alias"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(aliasCmd)
	aliasCmd.AddCommand(aliasResolveCmd)
}

// aliasCmd represents the alias command
var aliasCmd = &cobra.Command{
	Use:           "alias",
	Short:         "List the merged global and project aliases",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession("")
		if err != nil {
			return err
		}
		t, err := s.interp.Aliases(s.RunContext())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', 0)
		for _, key := range t.Keys() {
			value, _ := t.Get(key)
			fmt.Fprintf(w, "%s\t=\t%s\n", colors.Bold().Sprint(key), value)
		}
		return w.Flush()
	},
}

// aliasResolveCmd represents the alias resolve command
var aliasResolveCmd = &cobra.Command{
	Use:   "resolve <LINE>...",
	Short: "Show how an instruction line expands",
	Example: heredoc.Doc(`
		❯ fa alias resolve 'fs "hello" --null-terminated'
		find-str "hello" --null-terminated`),
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession("")
		if err != nil {
			return err
		}
		rc := s.RunContext()
		t, err := s.interp.Aliases(rc)
		if err != nil {
			return err
		}
		fmt.Println(alias.Resolve(strings.Join(args, " "), t, rc.AliasMode))
		return nil
	},
}
