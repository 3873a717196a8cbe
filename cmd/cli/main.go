package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"calcdash/adapters/excel"
	"calcdash/app"
	"calcdash/domain/dashboard"
	"calcdash/internal"
	"calcdash/internal/config"
	"calcdash/internal/container"
	"calcdash/internal/errors"
	"calcdash/internal/mapper"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var outputFormat string

func main() {
	rootCmd := &cobra.Command{
		Use:           "calcdash-cli",
		Short:         "Calculus market dashboard operator CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional
			_ = godotenv.Load()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Output format: table|json|yaml")

	rootCmd.AddCommand(
		newParseCmd(),
		newValidateCmd(),
		newComputeCmd(),
		newPreviewCmd(),
		newApplyCmd(),
		newExportCmd(),
		newResetCmd(),
		newHistoryCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func printError(err error) {
	if mc, ok := errors.AsMissingColumns(err); ok {
		fmt.Fprintln(os.Stderr, mc.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "error [%s]: %v\n", errors.GetCode(err), err)
}

func loadConfig() (*config.Config, error) {
	return config.Load()
}

// openContainer connects to the configured store for commands that read or
// write persisted sections.
func openContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// parser returns an upload service without stores, enough for ParseFile.
func parser() (*app.UploadService, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	return app.NewUploadService(nil, nil, nil, cfg.Upload, logger), nil
}

func newParseCmd() *cobra.Command {
	var sheet string
	var limit int

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse an XLSX or CSV roster and print its rows",
		Long: `Parse a roster file without validating its columns.

Example: calcdash-cli parse institutions.xlsx --sheet All_Institutions --limit 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := excel.ReadFile(args[0], excel.DefaultParseOptions().WithSheet(sheet))
			if err != nil {
				return err
			}
			return printTable(table, limit)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Preferred worksheet name")
	cmd.Flags().IntVar(&limit, "limit", 10, "Rows to print (0 for all)")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var fileType string

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a roster for the columns its type requires",
		Long: `Parse a roster with its preferred sheet and check the required columns.

Example: calcdash-cli validate courses.csv --type courses`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, ok := app.ParseFileType(fileType)
			if !ok {
				return fmt.Errorf("--type must be institutions or courses")
			}
			svc, err := parser()
			if err != nil {
				return err
			}
			table, err := parseRoster(svc, ft, args[0])
			if err != nil {
				return err
			}
			return printValue(map[string]interface{}{
				"file":    filepath.Base(args[0]),
				"type":    ft,
				"rows":    table.RowCount(),
				"headers": table.Headers,
				"message": fmt.Sprintf("%s file parsed successfully (%d rows).", ft.Label(), table.RowCount()),
			})
		},
	}

	cmd.Flags().StringVar(&fileType, "type", "", "Roster type: institutions|courses")
	cmd.MarkFlagRequired("type")
	return cmd
}

func parseRoster(svc *app.UploadService, ft app.FileType, path string) (*excel.ParsedTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.UnreadableInput("failed to open "+filepath.Base(path), err)
	}
	return svc.ParseFile(ft, path, data)
}

// rosterFlags are the --institutions/--courses inputs shared by the
// computing commands.
type rosterFlags struct {
	institutions string
	courses      string
}

func (f *rosterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.institutions, "institutions", "", "Institutions roster (XLSX or CSV)")
	cmd.Flags().StringVar(&f.courses, "courses", "", "Courses roster (XLSX or CSV)")
}

func (f *rosterFlags) load() (inst, courses *excel.ParsedTable, err error) {
	if f.institutions == "" && f.courses == "" {
		return nil, nil, errors.InvalidInput("No uploaded data found. Please upload at least one file.")
	}
	svc, err := parser()
	if err != nil {
		return nil, nil, err
	}
	if f.institutions != "" {
		if inst, err = parseRoster(svc, app.FileInstitutions, f.institutions); err != nil {
			return nil, nil, err
		}
	}
	if f.courses != "" {
		if courses, err = parseRoster(svc, app.FileCourses, f.courses); err != nil {
			return nil, nil, err
		}
	}
	return inst, courses, nil
}

func newComputeCmd() *cobra.Command {
	var rosters rosterFlags
	var section string

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute every dashboard section from roster files",
		Long: `Compute the dashboard sections without touching the store.

Example: calcdash-cli compute --institutions inst.xlsx --courses courses.xlsx --section publishers -f json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, courses, err := rosters.load()
			if err != nil {
				return err
			}
			data := mapper.ComputeAll(excel.ToRecords(inst), excel.ToRecords(courses))
			if section == "" {
				if outputFormat == "table" {
					return printPreview("computed", mapper.Preview(data))
				}
				return printValue(data)
			}
			sec, ok := dashboard.ParseSection(section)
			if !ok {
				return errors.NotFound("section " + section)
			}
			return printValue(data.Payload(sec))
		},
	}

	rosters.register(cmd)
	cmd.Flags().StringVar(&section, "section", "", "Print only this section")
	return cmd
}

func newPreviewCmd() *cobra.Command {
	var rosters rosterFlags

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show what applying roster files would change",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.Context(), rosters, true)
		},
	}
	rosters.register(cmd)
	return cmd
}

func newApplyCmd() *cobra.Command {
	var rosters rosterFlags

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Compute sections from roster files and save them",
		Long: `Apply one or both rosters. With a single roster only the sections derived
from it are replaced; the rest keep their stored values.

Example: calcdash-cli apply --courses courses.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.Context(), rosters, false)
		},
	}
	rosters.register(cmd)
	return cmd
}

func runApply(ctx context.Context, rosters rosterFlags, previewOnly bool) error {
	inst, courses, err := rosters.load()
	if err != nil {
		return err
	}
	c, err := openContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	result, err := c.Uploads.ApplyTables(ctx, inst, courses, previewOnly)
	if err != nil {
		return err
	}
	if previewOnly {
		if outputFormat == "table" {
			return printPreview(string(result.Mode), result.Preview)
		}
		return printValue(result)
	}
	if outputFormat == "table" {
		fmt.Println(result.Message)
		fmt.Printf("mode: %s\nupdated: %s\n", result.Mode, joinSections(result.UpdatedSections))
		return nil
	}
	return printValue(result)
}

func joinSections(secs []dashboard.Section) string {
	names := make([]string, len(secs))
	for i, s := range secs {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func newExportCmd() *cobra.Command {
	var out, stateJS string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored dashboard as XLSX and optionally the state map script",
		Long: `Example: calcdash-cli export --out dashboard.xlsx --state-js state-data.js`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" && stateJS == "" {
				return fmt.Errorf("nothing to export: pass --out and/or --state-js")
			}
			ctx := cmd.Context()
			c, err := openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := c.Dashboard.Export(ctx, f); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", out)
			}
			if stateJS != "" {
				script, err := c.Dashboard.StateScript(ctx)
				if err != nil {
					return err
				}
				if err := os.WriteFile(stateJS, []byte(script), 0644); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", stateJS)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "XLSX output path")
	cmd.Flags().StringVar(&stateJS, "state-js", "", "Write state_data as a stateData script to this path")
	return cmd
}

func newResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored section so the dashboard shows its defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			ctx := cmd.Context()
			c, err := openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			if err := c.Dashboard.Reset(ctx); err != nil {
				return err
			}
			fmt.Println("Dashboard data reset to defaults.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent applies, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			records, err := c.Dashboard.History(ctx, limit)
			if err != nil {
				return err
			}
			return printHistory(records)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", app.DefaultHistoryLimit, "Entries to list")
	return cmd
}
