package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpmf/NexxtTask/internal/app"
	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/theme"
)

func tagCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags and tag tasks",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all tags",
		Args:  cobra.NoArgs,
	}
	list.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		tags, err := a.Tags.GetTags(ctx)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, t := range tags {
			fmt.Fprintf(w, "%s %s\n", idStyle.Render(t.ID), theme.TagStyle(t).Render("#"+t.Name))
		}
		return nil
	})

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
	}
	create.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		color, _ := cmd.Flags().GetString("color")
		tag, err := a.Tags.CreateTag(ctx, model.CreateTagInput{Name: args[0], Color: color})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created tag %s\n", tag.ID)
		return nil
	})
	create.Flags().String("color", "", "hex color such as #f97316")

	add := &cobra.Command{
		Use:   "add <task-id> <name>",
		Short: "Tag a task, creating the tag when missing",
		Args:  cobra.ExactArgs(2),
	}
	add.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		tags, err := a.Tags.ResolveTags(ctx, []string{args[1]})
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			return errors.New("tag name must not be blank")
		}
		if err := a.Tasks.AddTagToTask(ctx, args[0], tags[0].ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Tagged task %s with #%s\n", args[0], tags[0].Name)
		return nil
	})

	remove := &cobra.Command{
		Use:   "remove <task-id> <name>",
		Short: "Remove a tag from a task",
		Args:  cobra.ExactArgs(2),
	}
	remove.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		tag, err := findTag(ctx, a, args[1])
		if err != nil {
			return err
		}
		if err := a.Tasks.RemoveTagFromTask(ctx, args[0], tag.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed #%s from task %s\n", tag.Name, args[0])
		return nil
	})

	cmd.AddCommand(list, create, add, remove)
	return cmd
}

func findTag(ctx context.Context, a *app.App, name string) (*model.Tag, error) {
	tags, err := a.Tags.GetTags(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	for i := range tags {
		if strings.EqualFold(tags[i].Name, name) {
			return &tags[i], nil
		}
	}
	return nil, fmt.Errorf("no tag named %q", name)
}

func assignCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <task-id> <user>",
		Short: "Assign a team member, given by e-mail or id, to a task",
		Args:  cobra.ExactArgs(2),
	}
	cmd.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		userID, err := resolveUser(ctx, a, args[1])
		if err != nil {
			return err
		}
		if _, err := a.Tasks.AssignUser(ctx, args[0], userID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s to task %s\n", args[1], args[0])
		return nil
	})
	return cmd
}

func unassignCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unassign <task-id> <user>",
		Short: "Remove a team member from a task",
		Args:  cobra.ExactArgs(2),
	}
	cmd.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		userID, err := resolveUser(ctx, a, args[1])
		if err != nil {
			return err
		}
		if err := a.Tasks.UnassignUser(ctx, args[0], userID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Unassigned %s from task %s\n", args[1], args[0])
		return nil
	})
	return cmd
}
