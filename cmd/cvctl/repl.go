package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jonathan/cv-editor/internal/collection"
	"github.com/jonathan/cv-editor/internal/confirm"
	"github.com/jonathan/cv-editor/internal/editor"
	"github.com/jonathan/cv-editor/internal/preview"
	"github.com/jonathan/cv-editor/internal/session"
	"github.com/jonathan/cv-editor/internal/workspace"
)

const replHelp = `Commands:
  show                                  print the CV (expanded sections only)
  set <path> <value>                    set objective, personalInfo.<field> or skills.<field>
  add <list>                            append an entry to education, work, certifications or awards
  remove <list> <index>                 remove an entry
  field <list> <index> <field> <value>  set a field of an entry (description takes HTML)
  toggle <section>                      expand or collapse basic, education, experience,
                                        certifications, awards or skills
  roles                                 list roles with phrase suggestions
  role <name>                           choose a role
  phrases                               list the phrases of the chosen role
  phrase <n>                            add or remove phrase n in the objective
  status                                show autosave state
  save                                  save now
  submit                                generate the PDF
  list                                  list your CVs (refreshed after each save)
  quit                                  save and leave`

var errQuit = errors.New("quit")

type repl struct {
	ws         *workspace.Session
	lines      <-chan string
	out        io.Writer
	printer    *preview.Printer
	exporter   workspace.Submitter
	collection *collection.View
}

func newREPL(ws *workspace.Session, in io.Reader, out io.Writer) *repl {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return &repl{ws: ws, lines: lines, out: out, printer: preview.NewPrinter(out)}
}

// confirmer asks on the REPL's own input so answers are not lost to a second reader.
func (r *repl) confirmer(yes bool) confirm.Confirmer {
	if yes {
		return confirm.Always(true)
	}
	return confirm.Func(func(ctx context.Context, question string) (bool, error) {
		r.printf("%s [y/N]: ", question)
		line, err := r.readLine(ctx)
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	})
}

func (r *repl) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

func (r *repl) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func (r *repl) run(ctx context.Context) error {
	r.printer.PrintCV(r.ws.Document(), r.ws.State().Sections)
	r.printf("Type `help` for commands.\n")

	for {
		r.printf("cv> ")
		line, err := r.readLine(ctx)
		if err != nil {
			// end of input or interrupt; the caller saves pending edits
			r.printf("\n")
			return nil
		}

		err = r.exec(ctx, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			r.printf("error: %v\n", err)
		}
	}
}

func (r *repl) exec(ctx context.Context, line string) error {
	name, rest := cutWord(line)
	switch name {
	case "":
		return nil
	case "help", "?":
		r.printf("%s\n", replHelp)
	case "show":
		r.printer.PrintCV(r.ws.Document(), r.ws.State().Sections)
	case "set", "add", "remove", "field", "toggle":
		in, err := parseIntent(name, rest)
		if err != nil {
			return err
		}
		if err := r.ws.Apply(in); err != nil {
			return err
		}
		if _, ok := in.(editor.ToggleSection); ok {
			r.printer.PrintCV(r.ws.Document(), r.ws.State().Sections)
		}
	case "roles":
		roles, err := r.ws.Roles(ctx)
		if err != nil {
			return err
		}
		for _, role := range roles {
			r.printf("  %s\n", role)
		}
	case "role":
		if rest == "" {
			return errors.New("usage: role <name>")
		}
		if _, err := r.ws.SelectRole(ctx, rest); err != nil {
			return err
		}
		r.printPhrases()
	case "phrases":
		r.printPhrases()
	case "phrase":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return errors.New("usage: phrase <n>")
		}
		_, phrases, _ := r.ws.Phrases()
		if n < 1 || n > len(phrases) {
			return fmt.Errorf("no phrase %d", n)
		}
		selected, err := r.ws.TogglePhrase(phrases[n-1])
		if err != nil {
			return err
		}
		if selected {
			r.printf("added: %s\n", phrases[n-1])
		} else {
			r.printf("removed: %s\n", phrases[n-1])
		}
	case "status":
		r.printer.PrintStatus(r.ws.ID(), r.ws.Status())
	case "save":
		if err := r.ws.Save(ctx); err != nil {
			return err
		}
		r.printf("saved\n")
	case "submit":
		res, err := r.ws.Submit(ctx, r.exporter)
		if err != nil {
			return err
		}
		r.printf("Saved %s (%d bytes)\n", res.Path, res.Bytes)
		return errQuit
	case "list":
		if r.collection == nil {
			return session.ErrNotRegistered
		}
		items, err := r.collection.List(ctx)
		if err != nil {
			return err
		}
		r.printer.PrintCollection(items)
	case "quit", "exit", "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (try `help`)", name)
	}
	return nil
}

func (r *repl) printPhrases() {
	role, phrases, selected := r.ws.Phrases()
	if role == "" {
		r.printf("no role selected; use `roles` and `role <name>`\n")
		return
	}
	r.printer.PrintPhrases(role, phrases, selected)
}

// parseIntent turns an editing command into a typed intent.
func parseIntent(name, rest string) (editor.Intent, error) {
	switch name {
	case "set":
		path, value := cutWord(rest)
		if path == "" {
			return nil, errors.New("usage: set <path> <value>")
		}
		return editor.ParseFieldPath(path, value)

	case "add":
		list, err := editor.ParseListName(strings.TrimSpace(rest))
		if err != nil {
			return nil, err
		}
		return editor.AddSubRecord{List: list}, nil

	case "remove":
		listName, rest := cutWord(rest)
		list, err := editor.ParseListName(listName)
		if err != nil {
			return nil, err
		}
		index, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return nil, errors.New("usage: remove <list> <index>")
		}
		return editor.RemoveSubRecord{List: list, Index: index}, nil

	case "field":
		listName, rest := cutWord(rest)
		list, err := editor.ParseListName(listName)
		if err != nil {
			return nil, err
		}
		indexStr, rest := cutWord(rest)
		index, err := strconv.Atoi(indexStr)
		if err != nil {
			return nil, errors.New("usage: field <list> <index> <field> <value>")
		}
		field, value := cutWord(rest)
		return editor.ParseSubRecordField(list, index, field, value)

	case "toggle":
		section, err := editor.ParseSection(strings.TrimSpace(rest))
		if err != nil {
			return nil, err
		}
		return editor.ToggleSection{Section: section}, nil
	}
	return nil, fmt.Errorf("unknown command %q", name)
}

// cutWord splits s into its first whitespace-separated word and the remainder with
// leading whitespace removed. Whitespace inside the remainder is kept.
func cutWord(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i+1:], " \t")
}
