package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/inspection-cli/internal/model"
	"github.com/sells-group/inspection-cli/internal/store"
)

var inspectionCmd = &cobra.Command{
	Use:   "inspection",
	Short: "Manage inspections",
}

// -- inspection create --

var inspectionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an inspection period",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		operator, _ := cmd.Flags().GetString("operator")
		season, _ := cmd.Flags().GetString("season")
		startFlag, _ := cmd.Flags().GetString("start")
		endFlag, _ := cmd.Flags().GetString("end")
		maxFlag, _ := cmd.Flags().GetString("max")

		start, err := parseDate("start", startFlag)
		if err != nil {
			return err
		}
		end, err := parseDate("end", endFlag)
		if err != nil {
			return err
		}
		maxDate, err := parseDate("max", maxFlag)
		if err != nil {
			return err
		}
		insp := model.Inspection{OperatorID: operator, Season: season, StartDate: start, EndDate: end, MaxDate: maxDate}

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		created, err := env.Requirements.CreateInspection(ctx, insp)
		if err != nil {
			return eris.Wrap(err, "inspection create")
		}
		fmt.Fprintln(cmd.OutOrStdout(), created.ID)
		return nil
	},
}

// -- inspection show --

var inspectionShowCmd = &cobra.Command{
	Use:   "show <inspection-id>",
	Short: "Show an inspection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		insp, err := env.Requirements.GetInspection(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "inspection show")
		}
		return writeJSON(cmd.OutOrStdout(), insp)
	},
}

// -- inspection list --

var inspectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List inspections",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		operator, _ := cmd.Flags().GetString("operator")
		limit, _ := cmd.Flags().GetInt("limit")

		list, err := env.Store.ListInspections(ctx, store.InspectionFilter{OperatorID: operator, Limit: limit})
		if err != nil {
			return eris.Wrap(err, "inspection list")
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No inspections found.")
			return nil
		}
		return inspectionTable.WriteText(cmd.OutOrStdout(), list)
	},
}

func init() {
	inspectionCreateCmd.Flags().String("operator", "", "operator ID (required)")
	inspectionCreateCmd.Flags().String("season", "", "season label, e.g. 2024-spring")
	inspectionCreateCmd.Flags().String("start", "", "start date YYYY-MM-DD (required)")
	inspectionCreateCmd.Flags().String("end", "", "end date YYYY-MM-DD (required)")
	inspectionCreateCmd.Flags().String("max", "", "last date requirements may be generated for (default: end date)")
	_ = inspectionCreateCmd.MarkFlagRequired("operator")
	_ = inspectionCreateCmd.MarkFlagRequired("start")
	_ = inspectionCreateCmd.MarkFlagRequired("end")

	inspectionListCmd.Flags().String("operator", "", "filter by operator ID")
	inspectionListCmd.Flags().Int("limit", 50, "max number of inspections to display")

	inspectionCmd.AddCommand(inspectionCreateCmd)
	inspectionCmd.AddCommand(inspectionShowCmd)
	inspectionCmd.AddCommand(inspectionListCmd)
	rootCmd.AddCommand(inspectionCmd)
}
