package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/inspection-cli/internal/export"
	"github.com/sells-group/inspection-cli/internal/i18n"
	"github.com/sells-group/inspection-cli/internal/model"
	"github.com/sells-group/inspection-cli/internal/requirement"
)

var requirementsCmd = &cobra.Command{
	Use:     "requirements",
	Aliases: []string{"req"},
	Short:   "View and edit weekly execution requirements of an inspection",
}

// -- requirements show --

var requirementsShowCmd = &cobra.Command{
	Use:   "show <inspection-id>",
	Short: "Show requirement rows, optionally for one week",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		st, err := env.Requirements.Load(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "requirements show")
		}

		week, _ := cmd.Flags().GetInt("week")
		year, _ := cmd.Flags().GetInt("year")
		if week > 0 {
			st.Rows = requirement.RowsForWeek(st.Rows, week, year)
		}
		return formatState(cmd.OutOrStdout(), st, env.Locale)
	},
}

// -- requirements select --

var requirementsSelectCmd = &cobra.Command{
	Use:   "select <inspection-id>",
	Short: "Generate the rows of a week if they do not exist yet",
	Long:  "Generates the 18 rows of the given week, copying requirements from the following or preceding week. An inspection without rows starts from the week of its start date.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		week, _ := cmd.Flags().GetInt("week")
		year, _ := cmd.Flags().GetInt("year")

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		st, err := env.Requirements.Select(ctx, args[0], week, year)
		if err != nil {
			return eris.Wrap(err, "requirements select")
		}
		return formatState(cmd.OutOrStdout(), st, env.Locale)
	},
}

// -- requirements append --

var requirementsAppendCmd = &cobra.Command{
	Use:   "append <inspection-id>",
	Short: "Generate the week after the last stored week",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		st, err := env.Requirements.AppendNextWeek(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "requirements append")
		}
		return formatState(cmd.OutOrStdout(), st, env.Locale)
	},
}

// -- requirements remove-week --

var requirementsRemoveWeekCmd = &cobra.Command{
	Use:   "remove-week <inspection-id>",
	Short: "Delete all rows of a week",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		week, _ := cmd.Flags().GetInt("week")
		year, _ := cmd.Flags().GetInt("year")

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		st, err := env.Requirements.RemoveWeek(ctx, args[0], week, year)
		if err != nil {
			return eris.Wrap(err, "requirements remove-week")
		}
		return formatState(cmd.OutOrStdout(), st, env.Locale)
	},
}

// -- requirements set --

var requirementsSetCmd = &cobra.Command{
	Use:   "set <inspection-id>",
	Short: "Set the requirement of one row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		week, _ := cmd.Flags().GetInt("week")
		year, _ := cmd.Flags().GetInt("year")
		areaFlag, _ := cmd.Flags().GetString("area")
		class, _ := cmd.Flags().GetInt("class")
		value, _ := cmd.Flags().GetString("value")

		area, err := i18n.ParseArea(areaFlag)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		st, err := env.Requirements.SetRequirement(ctx, args[0], model.ExecutionRequirement{
			Area:           area,
			EquipmentClass: class,
			Week:           week,
			Year:           year,
			Requirement:    value,
		})
		if err != nil {
			return eris.Wrap(err, "requirements set")
		}
		st.Rows = requirement.RowsForWeek(st.Rows, week, year)
		return formatState(cmd.OutOrStdout(), st, env.Locale)
	},
}

// -- requirements export --

var requirementsExportCmd = &cobra.Command{
	Use:   "export <inspection-id>...",
	Short: "Write requirement rows to an XLSX workbook",
	Long:  "Writes one sheet per inspection. With a single inspection the sheet is named Requirements; otherwise sheets are named by the short inspection ID.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		out, _ := cmd.Flags().GetString("out")

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		states, err := env.Requirements.LoadMany(ctx, args)
		if err != nil {
			return eris.Wrap(err, "requirements export")
		}

		sheets := make([]export.Sheet[model.ExecutionRequirement], 0, len(args))
		for _, id := range args {
			name := export.RequirementSheet
			if len(args) > 1 {
				name = truncateID(id)
			}
			sheets = append(sheets, export.Sheet[model.ExecutionRequirement]{Name: name, Items: states[id].Rows})
		}

		f, err := os.Create(out)
		if err != nil {
			return eris.Wrap(err, "requirements export: create file")
		}
		if err := export.WriteWorkbook(f, export.RequirementTable(env.Locale), sheets); err != nil {
			_ = f.Close()
			return eris.Wrap(err, "requirements export")
		}
		if err := f.Close(); err != nil {
			return eris.Wrap(err, "requirements export: close file")
		}

		zap.L().Info("requirements exported", zap.String("file", out), zap.Int("inspections", len(args)))
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
		return nil
	},
}

// -- requirements import --

var requirementsImportCmd = &cobra.Command{
	Use:   "import <inspection-id>",
	Short: "Replace requirement rows with the rows of an XLSX sheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		file, _ := cmd.Flags().GetString("file")

		rows, err := export.ReadRequirementsXLSX(ctx, file)
		if err != nil {
			return eris.Wrap(err, "requirements import")
		}

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		st, err := env.Requirements.Import(ctx, args[0], rows)
		if err != nil {
			return eris.Wrap(err, "requirements import")
		}

		zap.L().Info("requirements imported", zap.String("file", file), zap.Int("rows", len(st.Rows)))
		return formatState(cmd.OutOrStdout(), st, env.Locale)
	},
}

func addWeekFlags(cmd *cobra.Command, required bool) {
	cmd.Flags().Int("week", 0, "ISO week number")
	cmd.Flags().Int("year", 0, "year of the week")
	if required {
		_ = cmd.MarkFlagRequired("week")
		_ = cmd.MarkFlagRequired("year")
	}
}

func init() {
	addWeekFlags(requirementsShowCmd, false)
	addWeekFlags(requirementsSelectCmd, true)
	addWeekFlags(requirementsRemoveWeekCmd, true)
	addWeekFlags(requirementsSetCmd, true)

	requirementsSetCmd.Flags().String("area", "", "operating area: CENTER, OTHER or a localized name (required)")
	requirementsSetCmd.Flags().Int("class", 0, "equipment class 1-9 (required)")
	requirementsSetCmd.Flags().String("value", "", "requirement percentage, e.g. 12,5 (required)")
	_ = requirementsSetCmd.MarkFlagRequired("area")
	_ = requirementsSetCmd.MarkFlagRequired("class")
	_ = requirementsSetCmd.MarkFlagRequired("value")

	requirementsExportCmd.Flags().String("out", "requirements.xlsx", "output XLSX path")

	requirementsImportCmd.Flags().String("file", "", "XLSX file to import (required)")
	_ = requirementsImportCmd.MarkFlagRequired("file")

	requirementsCmd.AddCommand(requirementsShowCmd)
	requirementsCmd.AddCommand(requirementsSelectCmd)
	requirementsCmd.AddCommand(requirementsAppendCmd)
	requirementsCmd.AddCommand(requirementsRemoveWeekCmd)
	requirementsCmd.AddCommand(requirementsSetCmd)
	requirementsCmd.AddCommand(requirementsExportCmd)
	requirementsCmd.AddCommand(requirementsImportCmd)
	rootCmd.AddCommand(requirementsCmd)
}
