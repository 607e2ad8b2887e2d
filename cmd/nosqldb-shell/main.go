// Command nosqldb-shell is an interactive and scriptable CLI over the
// nosqldb driver, grounded on the teacher's cmd/cowsql-demo sample
// application and internal/shell options, adapted from an HTTP-facing demo
// to a liner-backed REPL plus one-shot cobra subcommands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nosqldb/nosqldb-go"
	"github.com/nosqldb/nosqldb-go/internal/shell"
	"github.com/nosqldb/nosqldb-go/logging"
)

func main() {
	var (
		endpoint string
		region   string
		timeout  time.Duration
		verbose  bool
		histFile string
		format   string
	)

	clientOptions := func() ([]nosqldb.Option, error) {
		if (endpoint == "") == (region == "") {
			return nil, fmt.Errorf("exactly one of --endpoint or --region must be set")
		}
		opts := []nosqldb.Option{nosqldb.WithDefaultTimeout(timeout)}
		if endpoint != "" {
			opts = append(opts, nosqldb.WithEndpoint(endpoint))
		} else {
			opts = append(opts, nosqldb.WithRegion(region))
		}
		if verbose {
			opts = append(opts, nosqldb.WithLogFunc(logging.DefaultLogFunc))
		}
		return opts, nil
	}

	root := &cobra.Command{
		Use:   "nosqldb-shell",
		Short: "Interactive and scriptable client for a NoSQL database service",
		Long: `nosqldb-shell is a command-line client for the NoSQL database driver.

Run with no subcommand to enter an interactive prompt; use a subcommand for
one-shot scripted access.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := clientOptions()
			if err != nil {
				return err
			}
			if histFile == "" {
				if home, err := os.UserHomeDir(); err == nil {
					histFile = filepath.Join(home, ".nosqldb_history")
				}
			}

			sh, err := shell.New(shell.WithClientOptions(opts...), shell.WithHistoryFile(histFile), shell.WithFormat(format))
			if err != nil {
				return err
			}
			defer sh.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sig
				cancel()
			}()

			return sh.Run(ctx)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&endpoint, "endpoint", "", "service endpoint, e.g. https://localhost:8080")
	flags.StringVar(&region, "region", "", "cloud region identifier, e.g. us-ashburn-1")
	flags.DurationVar(&timeout, "timeout", 5*time.Second, "default per-request timeout")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log driver activity to stderr")
	flags.StringVar(&histFile, "history-file", "", "path to persist prompt history (default: ~/.nosqldb_history)")
	flags.StringVar(&format, "format", "tabular", "row output format for the interactive prompt: tabular or json")

	root.AddCommand(newGetCommand(clientOptions))
	root.AddCommand(newPutCommand(clientOptions))
	root.AddCommand(newQueryCommand(clientOptions))
	root.AddCommand(newShowTablesCommand(clientOptions))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newGetCommand(clientOptions func() ([]nosqldb.Option, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <key-json>",
		Short: "Fetch a single row by its primary key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := clientOptions()
			if err != nil {
				return err
			}
			client, err := nosqldb.New(opts...)
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := client.Get(cmd.Context(), args[0], []byte(args[1]), nosqldb.GetOptions{})
			if err != nil {
				return err
			}
			if res.Value == nil {
				fmt.Println("not found")
				return nil
			}
			fmt.Printf("%s\n", res.Value)
			return nil
		},
	}
}

func newPutCommand(clientOptions func() ([]nosqldb.Option, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "put <table> <row-json>",
		Short: "Write a row unconditionally",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := clientOptions()
			if err != nil {
				return err
			}
			client, err := nosqldb.New(opts...)
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := client.Put(cmd.Context(), args[0], []byte(args[1]), nosqldb.PutOptions{})
			if err != nil {
				return err
			}
			fmt.Printf("success=%v\n", res.Success)
			return nil
		},
	}
}

func newQueryCommand(clientOptions func() ([]nosqldb.Option, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "query <statement>",
		Short: "Run a SQL statement and print every result row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := clientOptions()
			if err != nil {
				return err
			}
			client, err := nosqldb.New(opts...)
			if err != nil {
				return err
			}
			defer client.Close()

			it := client.NewQueryIterator(args[0], nil, nosqldb.QueryOptions{})
			for !it.Done() {
				rows, _, err := it.Next(cmd.Context())
				if err != nil {
					return err
				}
				for _, row := range rows {
					fmt.Printf("%s\n", row)
				}
			}
			return nil
		},
	}
}

func newShowTablesCommand(clientOptions func() ([]nosqldb.Option, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "show-tables",
		Short: "List every table's name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := clientOptions()
			if err != nil {
				return err
			}
			client, err := nosqldb.New(opts...)
			if err != nil {
				return err
			}
			defer client.Close()

			it := client.ListTables(0, nosqldb.ListTablesOptions{})
			for {
				names, done, err := it.Next(cmd.Context())
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Println(name)
				}
				if done {
					break
				}
			}
			return nil
		},
	}
}
