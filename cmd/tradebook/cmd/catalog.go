package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tradebook/tradebook/api"
)

// The three lookup catalogs share the same shape, so their commands are
// stamped out from one helper.

type namedItem struct {
	ID   int
	Name string
}

type catalogOps struct {
	list   func(context.Context, *api.Client) ([]namedItem, error)
	create func(context.Context, *api.Client, string) (namedItem, error)
	rename func(context.Context, *api.Client, int, string) (namedItem, error)
	remove func(context.Context, *api.Client, int) error
}

func newCatalogCmd(use, singular string, ops catalogOps) *cobra.Command {
	parent := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Manage %s", use),
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List all %s", use),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient()
			if err != nil {
				return err
			}
			items, err := ops.list(cmd.Context(), client)
			if err != nil {
				return fmt.Errorf("list %s: %w", use, err)
			}
			for _, it := range items {
				fmt.Printf("%-6d %s\n", it.ID, it.Name)
			}
			return nil
		},
	}

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: fmt.Sprintf("Create a %s", singular),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient()
			if err != nil {
				return err
			}
			it, err := ops.create(cmd.Context(), client, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("create %s: %w", singular, err)
			}
			fmt.Printf("✓ Created %s %d: %s\n", singular, it.ID, it.Name)
			return nil
		},
	}

	renameCmd := &cobra.Command{
		Use:   fmt.Sprintf("rename <%s-id> <name>", singular),
		Short: fmt.Sprintf("Rename a %s", singular),
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%s id: %w", singular, err)
			}
			client, _, err := newClient()
			if err != nil {
				return err
			}
			it, err := ops.rename(cmd.Context(), client, id, strings.Join(args[1:], " "))
			if err != nil {
				return fmt.Errorf("rename %s: %w", singular, err)
			}
			fmt.Printf("✓ Renamed %s %d to %s\n", singular, it.ID, it.Name)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   fmt.Sprintf("delete <%s-id>", singular),
		Short: fmt.Sprintf("Delete a %s", singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%s id: %w", singular, err)
			}
			client, _, err := newClient()
			if err != nil {
				return err
			}
			if err := ops.remove(cmd.Context(), client, id); err != nil {
				return fmt.Errorf("delete %s: %w", singular, err)
			}
			fmt.Printf("✓ Deleted %s %d\n", singular, id)
			return nil
		},
	}

	parent.AddCommand(listCmd, createCmd, renameCmd, deleteCmd)
	return parent
}

func init() {
	rootCmd.AddCommand(newCatalogCmd("strategies", "strategy", catalogOps{
		list: func(ctx context.Context, c *api.Client) ([]namedItem, error) {
			items, err := c.ListStrategies(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]namedItem, len(items))
			for i, s := range items {
				out[i] = namedItem{s.ID, s.Name}
			}
			return out, nil
		},
		create: func(ctx context.Context, c *api.Client, name string) (namedItem, error) {
			s, err := c.CreateStrategy(ctx, name)
			return namedItem{s.ID, s.Name}, err
		},
		rename: func(ctx context.Context, c *api.Client, id int, name string) (namedItem, error) {
			s, err := c.RenameStrategy(ctx, id, name)
			return namedItem{s.ID, s.Name}, err
		},
		remove: func(ctx context.Context, c *api.Client, id int) error {
			return c.DeleteStrategy(ctx, id)
		},
	}))

	rootCmd.AddCommand(newCatalogCmd("symbols", "symbol", catalogOps{
		list: func(ctx context.Context, c *api.Client) ([]namedItem, error) {
			items, err := c.ListSymbols(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]namedItem, len(items))
			for i, s := range items {
				out[i] = namedItem{s.ID, s.Name}
			}
			return out, nil
		},
		create: func(ctx context.Context, c *api.Client, name string) (namedItem, error) {
			s, err := c.CreateSymbol(ctx, name)
			return namedItem{s.ID, s.Name}, err
		},
		rename: func(ctx context.Context, c *api.Client, id int, name string) (namedItem, error) {
			s, err := c.RenameSymbol(ctx, id, name)
			return namedItem{s.ID, s.Name}, err
		},
		remove: func(ctx context.Context, c *api.Client, id int) error {
			return c.DeleteSymbol(ctx, id)
		},
	}))

	rootCmd.AddCommand(newCatalogCmd("tags", "tag", catalogOps{
		list: func(ctx context.Context, c *api.Client) ([]namedItem, error) {
			items, err := c.ListTags(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]namedItem, len(items))
			for i, t := range items {
				out[i] = namedItem{t.ID, t.Name}
			}
			return out, nil
		},
		create: func(ctx context.Context, c *api.Client, name string) (namedItem, error) {
			t, err := c.CreateTag(ctx, name)
			return namedItem{t.ID, t.Name}, err
		},
		rename: func(ctx context.Context, c *api.Client, id int, name string) (namedItem, error) {
			t, err := c.RenameTag(ctx, id, name)
			return namedItem{t.ID, t.Name}, err
		},
		remove: func(ctx context.Context, c *api.Client, id int) error {
			return c.DeleteTag(ctx, id)
		},
	}))
}
