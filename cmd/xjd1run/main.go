// Copyright © 2016 Abcum Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command xjd1run runs a script of xjd1 statements against a sqlite
// file, printing every produced row as one line of JSON to stdout.
// Grounded on cli/cli.go's cobra root-command shape and cli/import.go's
// "read a whole file, run it as one script" flow, narrowed from an
// HTTP-importing remote client down to a direct, in-process Conn since
// xjd1 has no network surface (spec.md §1's Non-goals).
package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/spf13/cobra"

	"github.com/xjd1/xjd1/cnf"
	"github.com/xjd1/xjd1/log"
	"github.com/xjd1/xjd1/xjd1"
)

var (
	dbPath    string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:     "xjd1run [flags] <script.xjd1>",
	Short:   "Run an xjd1 script against a sqlite-backed document store",
	Example: "  xjd1run --db ./data.db backup.xjd1",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := ioutil.ReadFile(args[0])
		if err != nil {
			log.Errorf("reading script: %v", err)
			return err
		}
		return runScript(dbPath, string(text))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", ":memory:", "Path to the sqlite file to run against (\":memory:\" for transient)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Logging format (text, json)")
}

func runScript(dbPath, text string) error {
	var opts cnf.Options
	opts.Logging.Level = logLevel
	opts.Logging.Format = logFormat
	opts.Logging.Output = "stderr"

	ctx := xjd1.NewContext(xjd1.WithLogging(opts))
	defer ctx.Close()

	conn, err := ctx.Open(dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	for remaining := text; len(remaining) > 0; {
		s, consumed, err := conn.Prepare(remaining)
		if err != nil {
			return err
		}
		if consumed == 0 {
			break
		}
		remaining = remaining[consumed:]

		for {
			res, err := s.Step()
			if err != nil {
				s.Close()
				return err
			}
			if res == xjd1.Done {
				break
			}
			fmt.Println(s.Value())
		}
		s.Close()
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
