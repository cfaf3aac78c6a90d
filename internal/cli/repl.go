package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/regkeeper/internal/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Browse(ctx context.Context, term string) error
	More(ctx context.Context) error
	Scan(ctx context.Context, filter models.ScanFilter) error
	Show(ctx context.Context, id int64) error
	Count(ctx context.Context) error
	Edits(ctx context.Context) error
	SetAmount(ctx context.Context, id int64, index int, amount *float64) error
	Save(ctx context.Context, id int64) error
	Export(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	Reset(ctx context.Context, id int64) error
	ResetAll(ctx context.Context, confirmed bool) error
}

const replHelp = `Available commands:
  brands [term]             list brands, or search by name
  more                      load the next page of brands
  scan [company]            list merged invoices
  show <id>                 show an invoice and its items
  count                     count invoices and register items
  edits                     list saved edits
  amount <id> <item> <val>  set an item amount ("-" clears)
  save <id> | export <id>   save or export an invoice
  delete <id> | reset <id>  drop saved edits of an invoice
  reset-all [yes]           drop every saved edit
  exit | quit               leave the shell`

// runREPL reads commands from scanner until EOF, "exit" or "quit" and
// dispatches them to a. The prompt is printed only when prompt returns a
// non-empty string. Command errors are reported and the loop goes on.
func runREPL(ctx context.Context, a execIface, prompt func() string, scanner *bufio.Scanner) {
	for {
		if err := ctx.Err(); err != nil {
			return
		}
		if p := prompt(); p != "" {
			printlnFn(p)
		}
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help", "?":
			printlnFn(replHelp)

		case "brands", "b":
			err = a.Browse(ctx, strings.Join(args, " "))

		case "more", "m":
			err = a.More(ctx)

		case "scan", "l", "list":
			err = a.Scan(ctx, models.ScanFilter{Company: strings.Join(args, " ")})

		case "count":
			err = a.Count(ctx)

		case "edits":
			err = a.Edits(ctx)

		case "show", "save", "export", "delete", "reset":
			if len(args) != 1 {
				printlnFn("Usage:", cmd, "<id>")
				continue
			}
			err = withID(args[0], func(id int64) error {
				switch cmd {
				case "show":
					return a.Show(ctx, id)
				case "save":
					return a.Save(ctx, id)
				case "export":
					return a.Export(ctx, id)
				case "delete":
					return a.Delete(ctx, id)
				default:
					return a.Reset(ctx, id)
				}
			})

		case "amount":
			if len(args) != 3 {
				printlnFn("Usage: amount <id> <item> <value|->")
				continue
			}
			err = amountCmd(ctx, a, args)

		case "reset-all":
			if !confirmLine(scanner, args) {
				printlnFn("Cancelled.")
				continue
			}
			err = a.ResetAll(ctx, true)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(errorStyle.Render("Error: " + err.Error()))
		}
	}
}

// confirmLine accepts "reset-all yes" directly, otherwise asks on the next
// line.
func confirmLine(scanner *bufio.Scanner, args []string) bool {
	if len(args) == 1 {
		return isYes(args[0])
	}
	printlnFn("Delete all saved edits? [y/N]")
	if !scanner.Scan() {
		return false
	}
	return isYes(scanner.Text())
}

func withID(s string, fn func(int64) error) error {
	id, err := parseID(s)
	if err != nil {
		return err
	}
	return fn(id)
}

func amountCmd(ctx context.Context, a execIface, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	index, err := parseIndex(args[1])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[2])
	if err != nil {
		return err
	}
	return a.SetAmount(ctx, id, index, amount)
}
