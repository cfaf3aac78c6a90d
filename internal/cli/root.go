package cli

import (
	"bufio"
	"context"
	"io"

	"github.com/dmitrijs2005/regkeeper/internal/config"
	"github.com/dmitrijs2005/regkeeper/internal/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// session carries the App between the cobra hooks and Execute.
type session struct {
	app *App
}

func (s *session) get() *App { return s.app }

// Execute runs the command line args against the given streams.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	s := &session{}
	root := newRootCmd(s)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if s.app != nil {
		if cerr := s.app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	path, err := fs.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyFlags(fs, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ResolvePaths()
	return cfg, nil
}

func newRootCmd(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:   "regkeeper",
		Short: "Browse brand records and annotate invoice registers offline",
		Long: `regkeeper reads a local brand database and a directory of invoice JSON
files. Invoices found in several files are merged by id, keeping the most
recently updated copy. Register amounts can be edited, saved and exported.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			s.app = NewApp(cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			// Services capture the logger in Open, so tag it first.
			if cmd.Name() == "shell" {
				s.app.log = s.app.log.With("session", uuid.NewString())
			}
			return s.app.Open(cmd.Context())
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newBrandsCmd(s),
		newInvoicesCmd(s),
		newEditsCmd(s),
		newShellCmd(s),
	)
	return root
}

func newBrandsCmd(s *session) *cobra.Command {
	var (
		term string
		page int
		size int
	)
	cmd := &cobra.Command{
		Use:   "brands",
		Short: "List or search brand records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.get().BrandsPage(cmd.Context(), term, page, size)
		},
	}
	cmd.Flags().StringVarP(&term, "search", "s", "", "case-insensitive substring of the name")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "1-based page number")
	cmd.Flags().IntVar(&size, "size", 0, "page size (default: page_size from config)")
	return cmd
}

func newInvoicesCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invoices",
		Aliases: []string{"inv"},
		Short:   "Scan and inspect invoice files",
	}

	var (
		id      int64
		company string
	)
	scan := &cobra.Command{
		Use:   "scan",
		Short: "List merged invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := models.ScanFilter{Company: company}
			if cmd.Flags().Changed("id") {
				filter.ID = &id
			}
			return s.get().Scan(cmd.Context(), filter)
		},
	}
	scan.Flags().Int64Var(&id, "id", 0, "only this invoice id")
	scan.Flags().StringVar(&company, "company", "", "case-insensitive substring of the company")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an invoice and its register items",
		Args:  cobra.ExactArgs(1),
		RunE:  idRunE(s, (*App).Show),
	}

	count := &cobra.Command{
		Use:   "count",
		Short: "Count merged invoices and register items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.get().Count(cmd.Context())
		},
	}

	cmd.AddCommand(scan, show, count)
	return cmd
}

func newEditsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edits",
		Short: "Manage saved invoice edits",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved edits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.get().Edits(cmd.Context())
		},
	}

	amount := &cobra.Command{
		Use:   "amount <id> <item> <value|->",
		Short: "Set the current amount of a register item and save",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return amountCmd(cmd.Context(), s.get(), args)
		},
	}

	var yes bool
	resetAll := &cobra.Command{
		Use:   "reset-all",
		Short: "Delete every saved edit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.get().ResetAll(cmd.Context(), yes)
		},
	}
	resetAll.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(
		list,
		amount,
		&cobra.Command{Use: "save <id>", Short: "Save an invoice", Args: cobra.ExactArgs(1), RunE: idRunE(s, (*App).Save)},
		&cobra.Command{Use: "export <id>", Short: "Save and export an invoice", Args: cobra.ExactArgs(1), RunE: idRunE(s, (*App).Export)},
		&cobra.Command{Use: "delete <id>", Short: "Delete the saved edits of an invoice", Args: cobra.ExactArgs(1), RunE: idRunE(s, (*App).Delete)},
		&cobra.Command{Use: "reset <id>", Short: "Revert an invoice to its scanned state", Args: cobra.ExactArgs(1), RunE: idRunE(s, (*App).Reset)},
		resetAll,
	)
	return cmd
}

func newShellCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := s.get()
			a.log.Info(cmd.Context(), "shell started")

			in := cmd.InOrStdin()
			prompt := func() string { return "" }
			if interactive(in) {
				printlnFn(titleStyle.Render("regkeeper shell (type 'help' for commands)"))
				prompt = func() string { return "regkeeper>" }
			}
			runREPL(cmd.Context(), a, prompt, bufio.NewScanner(in))
			return nil
		},
	}
}

func idRunE(s *session, fn func(*App, context.Context, int64) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return fn(s.get(), cmd.Context(), id)
	}
}
