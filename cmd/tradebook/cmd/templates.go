package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tradebook/tradebook/api"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage trade templates",
	Long: `Trade templates pre-fill the trade form with a saved setup.

Examples:
  tradebook templates create "morning scalp" --symbol AAPL --side long
  tradebook templates update 3 "morning scalp v2" --tag 1 --tag 4`,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all trade templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesList,
}

var templatesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a trade template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesCreate,
}

var templatesUpdateCmd = &cobra.Command{
	Use:   "update <template-id> <name>",
	Short: "Replace a trade template",
	Args:  cobra.ExactArgs(2),
	RunE:  runTemplatesUpdate,
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete <template-id>",
	Short: "Delete a trade template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesDelete,
}

var (
	templateSymbol   string
	templateSide     string
	templateStrategy int
	templateTags     []int
	templateNotes    string
	templatePlan     string
	templatePaper    bool
)

func addTemplateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&templateSymbol, "symbol", "", "symbol name")
	cmd.Flags().StringVar(&templateSide, "side", "", "long or short")
	cmd.Flags().IntVar(&templateStrategy, "strategy", 0, "strategy id")
	cmd.Flags().IntSliceVar(&templateTags, "tag", nil, "tag id (repeatable)")
	cmd.Flags().StringVar(&templateNotes, "notes", "", "default notes")
	cmd.Flags().StringVar(&templatePlan, "plan", "", "default pre-trade plan")
	cmd.Flags().BoolVar(&templatePaper, "paper", false, "default to paper trade")
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesCreateCmd)
	templatesCmd.AddCommand(templatesUpdateCmd)
	templatesCmd.AddCommand(templatesDeleteCmd)

	addTemplateFlags(templatesCreateCmd)
	addTemplateFlags(templatesUpdateCmd)
}

func templateInput(cmd *cobra.Command, name string) api.TemplateInput {
	in := api.TemplateInput{
		Name:         name,
		Symbol:       templateSymbol,
		Side:         templateSide,
		TagIDs:       templateTags,
		Notes:        templateNotes,
		PreTradePlan: templatePlan,
		IsPaper:      templatePaper,
	}
	if cmd.Flags().Changed("strategy") {
		in.Strategy = &templateStrategy
	}
	return in
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	items, err := client.ListTemplates(cmd.Context())
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	for _, t := range items {
		setup := t.Symbol
		if t.Side != "" {
			setup = fmt.Sprintf("%s %s", t.Side, t.Symbol)
		}
		fmt.Printf("%-6d %-24s %s\n", t.ID, t.Name, setup)
	}
	return nil
}

func runTemplatesCreate(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	t, err := client.CreateTemplate(cmd.Context(), templateInput(cmd, args[0]))
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	fmt.Printf("✓ Created template %d: %s\n", t.ID, t.Name)
	return nil
}

func runTemplatesUpdate(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("template id: %w", err)
	}
	client, _, err := newClient()
	if err != nil {
		return err
	}
	t, err := client.UpdateTemplate(cmd.Context(), id, templateInput(cmd, args[1]))
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	fmt.Printf("✓ Updated template %d: %s\n", t.ID, t.Name)
	return nil
}

func runTemplatesDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("template id: %w", err)
	}
	client, _, err := newClient()
	if err != nil {
		return err
	}
	if err := client.DeleteTemplate(cmd.Context(), id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	fmt.Printf("✓ Deleted template %d\n", id)
	return nil
}
