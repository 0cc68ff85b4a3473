package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/inspection-cli/internal/model"
	"github.com/sells-group/inspection-cli/internal/store"
)

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Manage contracts and their rule sets",
}

// -- contract create --

var contractCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a contract, optionally seeded from a rule template",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		operator, _ := cmd.Flags().GetString("operator")
		unit, _ := cmd.Flags().GetString("unit")
		description, _ := cmd.Flags().GetString("description")
		startFlag, _ := cmd.Flags().GetString("start")
		endFlag, _ := cmd.Flags().GetString("end")
		template, _ := cmd.Flags().GetString("template")

		start, err := parseDate("start", startFlag)
		if err != nil {
			return err
		}
		end, err := parseDate("end", endFlag)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		c, err := env.Rules.CreateContract(ctx, model.Contract{
			OperatorID:        operator,
			ProcurementUnitID: unit,
			Description:       description,
			StartDate:         start,
			EndDate:           end,
		})
		if err != nil {
			return eris.Wrap(err, "contract create")
		}

		if template != "" {
			report, err := env.Rules.MergeTemplate(ctx, c.ID, template)
			if err != nil {
				return eris.Wrap(err, "contract create")
			}
			c.Rules = report.Rules
		}

		return formatContract(cmd.OutOrStdout(), *c, env.Locale)
	},
}

// -- contract show --

var contractShowCmd = &cobra.Command{
	Use:   "show <contract-id>",
	Short: "Show a contract and its rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		c, err := env.Rules.GetContract(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "contract show")
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), c)
		}
		return formatContract(cmd.OutOrStdout(), *c, env.Locale)
	},
}

// -- contract list --

var contractListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contracts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		operator, _ := cmd.Flags().GetString("operator")
		unit, _ := cmd.Flags().GetString("unit")
		limit, _ := cmd.Flags().GetInt("limit")

		contracts, err := env.Store.ListContracts(ctx, store.ContractFilter{
			OperatorID:        operator,
			ProcurementUnitID: unit,
			Limit:             limit,
		})
		if err != nil {
			return eris.Wrap(err, "contract list")
		}
		if len(contracts) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No contracts found.")
			return nil
		}
		return contractTable.WriteText(cmd.OutOrStdout(), contracts)
	},
}

// -- contract merge-rules --

var contractMergeCmd = &cobra.Command{
	Use:   "merge-rules <contract-id>",
	Short: "Pull updated values from a rule template into a contract",
	Long:  "Replaces the values of contract rules whose category and name match a template rule. Template rules missing from the contract are reported but not added.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		template, _ := cmd.Flags().GetString("template")

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Rules.MergeTemplate(ctx, args[0], template)
		if err != nil {
			return eris.Wrap(err, "contract merge-rules")
		}
		return formatMergeReport(cmd.OutOrStdout(), *report, env.Locale)
	},
}

func init() {
	contractCreateCmd.Flags().String("operator", "", "operator ID (required)")
	contractCreateCmd.Flags().String("unit", "", "procurement unit ID (required)")
	contractCreateCmd.Flags().String("description", "", "free-text description")
	contractCreateCmd.Flags().String("start", "", "start date YYYY-MM-DD (required)")
	contractCreateCmd.Flags().String("end", "", "end date YYYY-MM-DD (required)")
	contractCreateCmd.Flags().String("template", "", "rule template to seed the contract with")
	_ = contractCreateCmd.MarkFlagRequired("operator")
	_ = contractCreateCmd.MarkFlagRequired("unit")
	_ = contractCreateCmd.MarkFlagRequired("start")
	_ = contractCreateCmd.MarkFlagRequired("end")

	contractShowCmd.Flags().Bool("json", false, "print the contract as JSON")

	contractListCmd.Flags().String("operator", "", "filter by operator ID")
	contractListCmd.Flags().String("unit", "", "filter by procurement unit ID")
	contractListCmd.Flags().Int("limit", 50, "max number of contracts to display")

	contractMergeCmd.Flags().String("template", "default", "rule template name")

	contractCmd.AddCommand(contractCreateCmd)
	contractCmd.AddCommand(contractShowCmd)
	contractCmd.AddCommand(contractListCmd)
	contractCmd.AddCommand(contractMergeCmd)
	rootCmd.AddCommand(contractCmd)
}
