// Package shell implements an interactive command prompt over a
// nosqldb.Client, in the spirit of the teacher's cmd/cowsql-demo HTTP-facing
// sample application, but driven by a liner-backed REPL instead of an HTTP
// handler: get/put/query/show against a live NoSQL service endpoint.
package shell

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/nosqldb/nosqldb-go"
)

// Shell is an interactive prompt over a Client.
type Shell struct {
	client *nosqldb.Client
	opts   *options
	line   *liner.State
	out    io.Writer
}

// New builds a Shell, constructing its own Client from the supplied
// nosqldb.Options (see WithClientOptions).
func New(opts ...Option) (*Shell, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	client, err := nosqldb.New(o.clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("build client: %w", err)
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	if o.historyFile != "" {
		if f, err := os.Open(o.historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	return &Shell{client: client, opts: o, line: line, out: os.Stdout}, nil
}

// Close releases the shell's liner state, history file, and Client.
func (s *Shell) Close() error {
	if s.opts.historyFile != "" {
		if f, err := os.Create(s.opts.historyFile); err == nil {
			s.line.WriteHistory(f)
			f.Close()
		}
	}
	s.line.Close()
	return s.client.Close()
}

// Run drives the read-eval-print loop until EOF, an explicit "exit"/"quit",
// or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		text, err := s.line.Prompt("nosqldb> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		s.line.AppendHistory(text)

		if text == "exit" || text == "quit" {
			return nil
		}

		if err := s.dispatch(ctx, text); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

// dispatch parses and executes a single command line.
func (s *Shell) dispatch(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "get":
		return s.cmdGet(ctx, fields[1:])
	case "put":
		return s.cmdPut(ctx, fields[1:])
	case "delete":
		return s.cmdDelete(ctx, fields[1:])
	case "query":
		return s.cmdQuery(ctx, strings.TrimSpace(strings.TrimPrefix(line, fields[0])))
	case "show":
		return s.cmdShow(ctx, fields[1:])
	case "help":
		s.printHelp()
		return nil
	default:
		return fmt.Errorf("unrecognized command %q (try \"help\")", fields[0])
	}
}

func (s *Shell) cmdGet(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: get <table> <key-json>")
	}
	table, keyJSON := args[0], strings.Join(args[1:], " ")

	res, err := s.client.Get(ctx, table, []byte(keyJSON), nosqldb.GetOptions{})
	if err != nil {
		return err
	}
	if res.Value == nil {
		fmt.Fprintln(s.out, "not found")
		return nil
	}
	fmt.Fprintln(s.out, s.formatRow(res.Value))
	return nil
}

func (s *Shell) cmdPut(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: put <table> <row-json>")
	}
	table, rowJSON := args[0], strings.Join(args[1:], " ")

	res, err := s.client.Put(ctx, table, []byte(rowJSON), nosqldb.PutOptions{})
	if err != nil {
		return err
	}
	if !res.Success {
		fmt.Fprintln(s.out, "put did not apply")
		return nil
	}
	fmt.Fprintf(s.out, "ok (consumed %d write units)\n", res.Consumed.WriteUnits)
	return nil
}

func (s *Shell) cmdDelete(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: delete <table> <key-json>")
	}
	table, keyJSON := args[0], strings.Join(args[1:], " ")

	res, err := s.client.Delete(ctx, table, []byte(keyJSON), nosqldb.DeleteOptions{})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "success=%v\n", res.Success)
	return nil
}

func (s *Shell) cmdQuery(ctx context.Context, statement string) error {
	if statement == "" {
		return fmt.Errorf("usage: query <statement>")
	}

	it := s.client.NewQueryIterator(statement, nil, nosqldb.QueryOptions{})
	total := 0
	for !it.Done() {
		rows, _, err := it.Next(ctx)
		if err != nil {
			return err
		}
		for _, row := range rows {
			fmt.Fprintln(s.out, s.formatRow(row))
			total++
		}
	}
	fmt.Fprintf(s.out, "(%s)\n", pluralRows(total))
	return nil
}

func (s *Shell) cmdShow(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: show tables|namespaces|users|roles")
	}

	switch strings.ToLower(args[0]) {
	case "tables":
		return s.showTables(ctx)
	case "namespaces":
		names, err := s.client.ListNamespaces(ctx, 0)
		if err != nil {
			return err
		}
		return s.printList(names)
	case "users":
		users, err := s.client.ListUsers(ctx, 0)
		if err != nil {
			return err
		}
		names := make([]string, len(users))
		for i, u := range users {
			names[i] = u.Name
		}
		return s.printList(names)
	case "roles":
		roles, err := s.client.ListRoles(ctx, 0)
		if err != nil {
			return err
		}
		return s.printList(roles)
	default:
		return fmt.Errorf("unknown show target %q", args[0])
	}
}

func (s *Shell) showTables(ctx context.Context) error {
	it := s.client.ListTables(0, nosqldb.ListTablesOptions{})
	var all []string
	for {
		names, done, err := it.Next(ctx)
		if err != nil {
			return err
		}
		all = append(all, names...)
		if done {
			break
		}
	}
	return s.printList(all)
}

func (s *Shell) printList(items []string) error {
	for _, item := range items {
		fmt.Fprintln(s.out, item)
	}
	fmt.Fprintf(s.out, "(%s)\n", pluralRows(len(items)))
	return nil
}

func (s *Shell) printHelp() {
	fmt.Fprint(s.out, `commands:
  get <table> <key-json>     fetch a row by its primary key
  put <table> <row-json>     write a row unconditionally
  delete <table> <key-json>  delete a row by its primary key
  query <statement>          run a SQL statement and print every result row
  show tables|namespaces|users|roles
  exit | quit

rows print as "tabular" (sorted key=value pairs) or "json" (pretty-printed),
per the WithFormat shell option.
`)
}

// formatRow renders a row's opaque JSON bytes per s.opts.format. Tabular
// mode flattens the row to one "key=value" pair per field, sorted by key;
// json mode pretty-prints the raw document. Malformed JSON falls back to
// the raw bytes unchanged, since rows are opaque to the driver (spec §3).
func (s *Shell) formatRow(raw []byte) string {
	if s.opts.format == formatJSON {
		var buf strings.Builder
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return string(raw)
		}
		return buf.String()
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return string(raw)
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, fields[k])
	}
	return strings.Join(parts, "\t")
}

func pluralRows(n int) string {
	if n == 1 {
		return "1 row"
	}
	return strconv.Itoa(n) + " rows"
}
