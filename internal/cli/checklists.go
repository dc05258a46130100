package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpmf/NexxtTask/internal/model"
)

func checklistCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Manage the checklists of a task",
	}

	add := &cobra.Command{
		Use:   "add <task-id> <title>",
		Short: "Append a checklist to a task",
		Args:  cobra.ExactArgs(2),
	}
	add.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		contents, _ := cmd.Flags().GetStringArray("item")
		items := make([]model.ChecklistItemInput, 0, len(contents))
		for _, c := range contents {
			items = append(items, model.ChecklistItemInput{Content: c})
		}

		cl, err := a.Tasks.AddChecklist(ctx, args[0], args[1], items)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added checklist %s\n", cl.ID)
		return nil
	})
	add.Flags().StringArray("item", nil, "item content (repeatable)")

	rename := &cobra.Command{
		Use:   "rename <checklist-id> <title>",
		Short: "Rename a checklist",
		Args:  cobra.ExactArgs(2),
	}
	rename.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		if _, err := a.Tasks.UpdateChecklist(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed checklist %s\n", args[0])
		return nil
	})

	del := &cobra.Command{
		Use:   "delete <checklist-id>",
		Short: "Delete a checklist and its items",
		Args:  cobra.ExactArgs(1),
	}
	del.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.Tasks.DeleteChecklist(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted checklist %s\n", args[0])
		return nil
	})

	reorder := &cobra.Command{
		Use:   "reorder <task-id> <checklist-id>...",
		Short: "Order the checklists of a task as given",
		Args:  cobra.MinimumNArgs(2),
	}
	reorder.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		return a.Tasks.ReorderChecklists(ctx, args[0], args[1:])
	})

	cmd.AddCommand(add, rename, del, reorder)
	return cmd
}

func itemCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage checklist items",
	}

	add := &cobra.Command{
		Use:   "add <checklist-id> <content>",
		Short: "Append an item to a checklist",
		Args:  cobra.ExactArgs(2),
	}
	add.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		item, err := a.Tasks.AddChecklistItem(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added item %s\n", item.ID)
		return nil
	})

	edit := &cobra.Command{
		Use:   "edit <item-id>",
		Short: "Change the content or checked state of an item",
		Args:  cobra.ExactArgs(1),
	}
	edit.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}

		var in model.UpdateChecklistItemInput
		if cmd.Flags().Changed("content") {
			content, _ := cmd.Flags().GetString("content")
			in.Content = &content
		}
		if cmd.Flags().Changed("checked") {
			checked, _ := cmd.Flags().GetBool("checked")
			in.IsChecked = &checked
		}

		if _, err := a.Tasks.UpdateChecklistItem(ctx, args[0], in); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated item %s\n", args[0])
		return nil
	})
	edit.Flags().String("content", "", "new content")
	edit.Flags().Bool("checked", false, "checked state")

	toggle := &cobra.Command{
		Use:   "toggle <item-id>",
		Short: "Flip the checked state of an item",
		Args:  cobra.ExactArgs(1),
	}
	toggle.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		item, err := a.Tasks.ToggleChecklistItem(ctx, args[0])
		if err != nil {
			return err
		}
		state := "unchecked"
		if item.IsChecked {
			state = "checked"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Item %s %s\n", item.ID, state)
		return nil
	})

	del := &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
	}
	del.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.Tasks.DeleteChecklistItem(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted item %s\n", args[0])
		return nil
	})

	reorder := &cobra.Command{
		Use:   "reorder <checklist-id> <item-id>...",
		Short: "Order the items of a checklist as given",
		Args:  cobra.MinimumNArgs(2),
	}
	reorder.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		return a.Tasks.ReorderChecklistItems(ctx, args[0], args[1:])
	})

	cmd.AddCommand(add, edit, toggle, del, reorder)
	return cmd
}
