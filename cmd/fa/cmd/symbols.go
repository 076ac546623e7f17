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
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/aymanbagabas/go-udiff"
	"github.com/blacktop/fa/internal/colors"
	"github.com/blacktop/fa/internal/db"
	"github.com/blacktop/fa/internal/model"
	"github.com/blacktop/fa/pkg/alias"
	"github.com/blacktop/fa/pkg/interp"
	"github.com/blacktop/fa/pkg/signature"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	yaml "gopkg.in/yaml.v3"
)

func init() {
	rootCmd.AddCommand(symbolsCmd)
	symbolsCmd.Flags().BoolP("json", "j", false, "output as JSON")
	symbolsCmd.Flags().BoolP("yaml", "y", false, "output as YAML")
	symbolsCmd.Flags().Bool("flat", false, "only output symbols that resolved to a single address")
	symbolsCmd.Flags().String("db", "", "save the symbols to a database (postgres:// URL, .db sqlite file or gob file)")
	symbolsCmd.Flags().Int("batch-size", 500, "database insert batch size")
	symbolsCmd.Flags().BoolP("watch", "w", false, "re-run whenever the project signatures change")
	symbolsCmd.Flags().MarkHidden("batch-size")
	symbolsCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	viper.BindPFlag("symbols.json", symbolsCmd.Flags().Lookup("json"))
	viper.BindPFlag("symbols.yaml", symbolsCmd.Flags().Lookup("yaml"))
	viper.BindPFlag("symbols.flat", symbolsCmd.Flags().Lookup("flat"))
	viper.BindPFlag("symbols.db", symbolsCmd.Flags().Lookup("db"))
	viper.BindPFlag("symbols.batch-size", symbolsCmd.Flags().Lookup("batch-size"))
	viper.BindPFlag("symbols.watch", symbolsCmd.Flags().Lookup("watch"))
}

func saveSymbols(path, binary, project string, table interp.SymbolTable) error {
	d, err := db.Open(path, viper.GetInt("symbols.batch-size"))
	if err != nil {
		return err
	}
	if err := d.Connect(); err != nil {
		return err
	}
	if err := d.SaveSymbols(binary, project, model.FromTable(binary, project, table)); err != nil {
		d.Close()
		return err
	}
	return d.Close()
}

func evaluate(s *session) (*interp.SymbolsResult, error) {
	if viper.GetBool("verbose") || !term.IsTerminal(int(os.Stderr.Fd())) {
		return s.interp.Symbols(s.RunContext())
	}
	spin := spinner.New(spinner.CharSets[38], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	spin.Prefix = colors.Blue().Sprint("   • Evaluating signatures... ")
	spin.Start()
	defer spin.Stop()
	return s.interp.Symbols(s.RunContext())
}

// formatSymbols renders the table in the selected output format. Warnings
// are part of the text format only.
func formatSymbols(res *interp.SymbolsResult, plain bool) (string, error) {
	var out any = res.Table
	if viper.GetBool("symbols.flat") {
		flat := make(map[string]string)
		for name, addr := range res.Table.Resolved() {
			flat[name] = fmt.Sprintf("%#x", addr)
		}
		out = flat
	}

	switch {
	case viper.GetBool("symbols.json"):
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case viper.GetBool("symbols.yaml"):
		data, err := yaml.Marshal(out)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	paint := func(c *color.Color, a ...any) string {
		if plain {
			return fmt.Sprint(a...)
		}
		return c.Sprint(a...)
	}

	var sb strings.Builder
	sb.WriteString(paint(colors.Faint(), res.WarningText()))
	for _, name := range res.Table.Names() {
		addrs := res.Table[name]
		if len(addrs) != 1 {
			if viper.GetBool("symbols.flat") {
				continue
			}
			fmt.Fprintf(&sb, "%s %s\n", paint(colors.Yellow(), addrs), name)
			continue
		}
		fmt.Fprintf(&sb, "%s %s\n", paint(colors.Bold(), fmt.Sprintf("%#016x", addrs[0])), name)
	}
	return sb.String(), nil
}

func printDiff(prev, curr string) {
	diff := udiff.Unified("previous", "current", prev, curr)
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Print(colors.Bold().Sprint(line))
		case strings.HasPrefix(line, "+"):
			fmt.Print(colors.Green().Sprint(line))
		case strings.HasPrefix(line, "-"):
			fmt.Print(colors.Red().Sprint(line))
		case strings.HasPrefix(line, "@@"):
			fmt.Print(colors.Cyan().Sprint(line))
		default:
			fmt.Print(line)
		}
	}
}

// runSymbols evaluates the project and prints the result. When prev holds
// the plain output of an earlier run only the difference is printed. It
// returns the plain output of this run.
func runSymbols(s *session, binary, prev string) (string, error) {
	res, err := evaluate(s)
	if err != nil {
		return "", err
	}
	if viper.GetBool("symbols.json") || viper.GetBool("symbols.yaml") {
		fmt.Fprint(os.Stderr, res.WarningText())
	}

	plain, err := formatSymbols(res, true)
	if err != nil {
		return "", err
	}
	switch {
	case prev == "":
		out, err := formatSymbols(res, false)
		if err != nil {
			return "", err
		}
		fmt.Print(out)
	case prev == plain:
		log.Info("No changes")
	default:
		printDiff(prev, plain)
	}

	if path := viper.GetString("symbols.db"); path != "" {
		rc := s.RunContext()
		if err := saveSymbols(path, filepath.Base(binary), rc.Project, res.Table); err != nil {
			return "", fmt.Errorf("failed to save symbols: %w", err)
		}
		log.WithField("db", path).Infof("Saved %d symbols", len(res.Table))
	}
	return plain, nil
}

// watchDirs adds the project folder and every folder below it.
func watchDirs(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}

func isSignatureEvent(event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) {
		return false
	}
	return signature.IsSignatureFile(event.Name) || filepath.Base(event.Name) == alias.FileName
}

// symbolsCmd represents the symbols command
var symbolsCmd = &cobra.Command{
	Use:   "symbols <BINARY>",
	Short: "Evaluate every signature of the project",
	Example: heredoc.Doc(`
		# List all symbols found in a kernelcache
		❯ fa symbols kernelcache --project ios
		# Only unambiguous symbols as JSON
		❯ fa symbols kernelcache --flat --json
		# Save to sqlite
		❯ fa symbols kernelcache --db symbols.db
		# Re-run while editing signatures
		❯ fa symbols kernelcache --watch`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		prev, err := runSymbols(s, args[0], "")
		if err != nil {
			return err
		}

		if !viper.GetBool("symbols.watch") {
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()

		dir := s.RunContext().ProjectDir()
		if err := watchDirs(watcher, dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		log.WithField("dir", dir).Info("Watching for signature changes (press Ctrl+C to stop)")

		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Has(fsnotify.Create) {
					if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
						if err := watchDirs(watcher, event.Name); err != nil {
							log.WithError(err).Warn("failed to watch new folder")
						}
						continue
					}
				}
				if !isSignatureEvent(event) {
					continue
				}
				log.Infof("event: %s", event.String())
				curr, err := runSymbols(s, args[0], prev)
				if err != nil {
					log.WithError(err).Error("failed to evaluate signatures")
					continue
				}
				prev = curr
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				log.Errorf("error: %v", err)
			}
		}
	},
}
