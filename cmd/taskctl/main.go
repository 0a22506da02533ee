// Command taskctl is a terminal client for the task list API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/xixhienxix/task-list/internal/client"
	dom "github.com/xixhienxix/task-list/internal/domain"
)

const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitInvalidUsage = 2
)

const usage = `usage: taskctl [-api URL] [-session FILE] <command> [args]

commands:
  register <email> [name]
  login <email>
  logout
  list
  add -t TITLE -d DESCRIPTION [-done]
  edit <id> [-t TITLE] [-d DESCRIPTION]
  toggle <id>
  rm <id>
`

var knownCommands = map[string]bool{
	"register": true, "login": true, "logout": true,
	"list": true, "add": true, "edit": true, "toggle": true, "rm": true,
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := execute(ctx, args, stdout)
	if err == nil {
		return ExitSuccess
	}
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(stderr, ue.msg)
		fmt.Fprint(stderr, usage)
		return ExitInvalidUsage
	}
	fmt.Fprintln(stderr, "taskctl:", err)
	return ExitFailure
}

func execute(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("taskctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	apiURL := fs.String("api", envOr("TASKLIST_API_URL", "http://localhost:8080"), "API base URL")
	sessionPath := fs.String("session", "", "session file (default: user config dir)")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	if fs.NArg() == 0 {
		return usagef("missing command")
	}

	path := *sessionPath
	if path == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return err
		}
		path = p
	}
	session := client.NewSession(path)
	api := client.New(*apiURL)
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if !knownCommands[cmd] {
		return usagef("unknown command %q", cmd)
	}

	switch cmd {
	case "register":
		if len(rest) < 1 {
			return usagef("register: email required")
		}
		a, err := api.Register(ctx, rest[0], strings.Join(rest[1:], " "))
		if err != nil {
			return err
		}
		if err := session.Save(a.Email); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "registered %s (%s)\n", a.Email, a.ID)
		return nil

	case "login":
		if len(rest) != 1 {
			return usagef("login: email required")
		}
		a, err := api.Login(ctx, rest[0])
		if err != nil {
			return err
		}
		if err := session.Save(a.Email); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "logged in as %s\n", a.Email)
		return nil

	case "logout":
		return session.Clear()
	}

	// Task commands need a session, like the routes behind the login page.
	if !session.LoggedIn() {
		return errors.New("not logged in; run taskctl login <email>")
	}
	tasks := client.NewTasks(api, client.NewTaskStore())

	switch cmd {
	case "list":
		list, err := tasks.Refresh(ctx)
		if err != nil {
			return err
		}
		printTasks(stdout, list)
		return nil

	case "add":
		sub := flag.NewFlagSet("add", flag.ContinueOnError)
		sub.SetOutput(io.Discard)
		titulo := sub.String("t", "", "title")
		descripcion := sub.String("d", "", "description")
		done := sub.Bool("done", false, "create as done")
		if err := sub.Parse(rest); err != nil {
			return usagef("add: %v", err)
		}
		t, err := tasks.Add(ctx, *titulo, *descripcion, *done)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "created %s\n", t.ID)
		return nil

	case "edit":
		if len(rest) < 1 {
			return usagef("edit: id required")
		}
		sub := flag.NewFlagSet("edit", flag.ContinueOnError)
		sub.SetOutput(io.Discard)
		var patch dom.TaskPatch
		sub.Func("t", "title", func(v string) error { patch.Titulo = &v; return nil })
		sub.Func("d", "description", func(v string) error { patch.Descripcion = &v; return nil })
		if err := sub.Parse(rest[1:]); err != nil {
			return usagef("edit: %v", err)
		}
		if patch.Empty() {
			return usagef("edit: nothing to change")
		}
		if _, err := tasks.Update(ctx, rest[0], patch); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "updated %s\n", rest[0])
		return nil

	case "toggle":
		if len(rest) != 1 {
			return usagef("toggle: id required")
		}
		list, err := tasks.Refresh(ctx)
		if err != nil {
			return err
		}
		var current *dom.Task
		for i := range list {
			if list[i].ID == rest[0] {
				current = &list[i]
			}
		}
		if current == nil {
			return fmt.Errorf("task %s not found", rest[0])
		}
		estado := !current.Estado
		if _, err := tasks.Update(ctx, current.ID, dom.TaskPatch{Estado: &estado}); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s %s\n", current.ID, statusLabel(estado))
		return nil

	case "rm":
		if len(rest) != 1 {
			return usagef("rm: id required")
		}
		if err := tasks.Remove(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "deleted %s\n", rest[0])
		return nil
	}
	return usagef("unknown command %q", cmd)
}

func printTasks(w io.Writer, list []dom.Task) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tESTADO\tCREADA\tTITULO\tDESCRIPCION")
	for _, t := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			t.ID, statusLabel(t.Estado), t.FechaCreacion.Local().Format(time.DateTime), t.Titulo, t.Descripcion)
	}
	_ = tw.Flush()
}

func statusLabel(done bool) string {
	if done {
		return "completada"
	}
	return "pendiente"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
