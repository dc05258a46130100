package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpmf/NexxtTask/internal/app"
	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/ui/taskform"
)

func taskCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, inspect and change tasks",
	}

	cmd.AddCommand(taskListCmd(cc))
	cmd.AddCommand(taskShowCmd(cc))
	cmd.AddCommand(taskCreateCmd(cc))
	cmd.AddCommand(taskUpdateCmd(cc))
	cmd.AddCommand(taskStatusCmd(cc))
	cmd.AddCommand(taskDeleteCmd(cc))
	cmd.AddCommand(taskProgressCmd(cc))

	return cmd
}

func taskListCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks you own or are assigned to",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}

		tag, _ := cmd.Flags().GetString("tag")
		archived, _ := cmd.Flags().GetBool("archived")
		page, _ := cmd.Flags().GetInt("page")
		perPage, _ := cmd.Flags().GetInt("per-page")

		tasks, err := a.Tasks.GetTasks(ctx)
		if err != nil {
			return err
		}
		active, archivedTasks := model.SplitByArchive(model.FilterByTag(tasks, tag))
		view := active
		if archived {
			view = archivedTasks
		}
		pageTasks, totalPages := model.Paginate(view, page, perPage)

		w := cmd.OutOrStdout()
		if len(pageTasks) == 0 {
			fmt.Fprintln(w, "No tasks.")
			return nil
		}
		renderTaskRows(w, pageTasks)
		fmt.Fprintf(w, "\nPage %d of %d (%d tasks)\n", page, totalPages, len(view))
		return nil
	})

	cmd.Flags().String("tag", "", "only tasks with a tag containing this text")
	cmd.Flags().Bool("archived", false, "list completed and canceled tasks")
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().Int("per-page", model.DefaultPerPage, "tasks per page")

	return cmd
}

func taskShowCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task with its checklists",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		task, err := a.Tasks.GetTask(ctx, args[0])
		if err != nil {
			return err
		}
		members, err := memberIndex(ctx, a)
		if err != nil {
			return err
		}

		renderTask(cmd.OutOrStdout(), task, members)
		return nil
	})
	return cmd
}

func taskCreateCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Long: `Create a task. Without --title an interactive form is shown.

Checklists are given as "Title=item one,item two", e.g.

  nexxttask task create --title "Release 1.2" \
    --checklist "Before=freeze,changelog" --checklist "After=announce" \
    --tag release --assign ada@example.com`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}

		var result taskform.Result
		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			members, err := a.Users.ListTeamMembers(ctx)
			if err != nil {
				return err
			}
			if result, err = taskform.Run(members); err != nil {
				return err
			}
		} else {
			if result, err = resultFromFlags(ctx, cmd, a, title); err != nil {
				return err
			}
		}

		if len(result.TagNames) > 0 {
			tags, err := a.Tags.ResolveTags(ctx, result.TagNames)
			if err != nil {
				return err
			}
			for _, t := range tags {
				result.Input.TagIDs = append(result.Input.TagIDs, t.ID)
			}
		}

		task, err := a.Tasks.CreateTask(ctx, result.Input)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", task.ID)
		return nil
	})

	cmd.Flags().String("title", "", "task title")
	cmd.Flags().String("description", "", "task description")
	cmd.Flags().StringArray("checklist", nil, `checklist as "Title=item,item" (repeatable)`)
	cmd.Flags().StringSlice("tag", nil, "tag names, created when missing")
	cmd.Flags().StringSlice("assign", nil, "assignee e-mails or ids")

	return cmd
}

// resultFromFlags builds the create input from command line flags.
func resultFromFlags(ctx context.Context, cmd *cobra.Command, a *app.App, title string) (taskform.Result, error) {
	description, _ := cmd.Flags().GetString("description")
	checklists, _ := cmd.Flags().GetStringArray("checklist")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	assignees, _ := cmd.Flags().GetStringSlice("assign")

	in := model.CreateTaskInput{Title: title, Description: description}
	for _, value := range checklists {
		in.Checklists = append(in.Checklists, parseChecklist(value))
	}
	for _, who := range assignees {
		userID, err := resolveUser(ctx, a, who)
		if err != nil {
			return taskform.Result{}, err
		}
		in.AssignedUserIDs = append(in.AssignedUserIDs, userID)
	}

	return taskform.Result{Input: in, TagNames: tags}, nil
}

// parseChecklist parses "Title=item,item". Blank items are dropped.
func parseChecklist(value string) model.ChecklistInput {
	title, items, _ := strings.Cut(value, "=")
	cl := model.ChecklistInput{Title: strings.TrimSpace(title)}
	for _, item := range strings.Split(items, ",") {
		if content := strings.TrimSpace(item); content != "" {
			cl.Items = append(cl.Items, model.ChecklistItemInput{Content: content})
		}
	}
	return cl
}

func taskUpdateCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Change the title or description of a task",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}

		var in model.UpdateTaskInput
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			in.Title = &title
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			in.Description = &description
		}

		task, err := a.Tasks.UpdateTask(ctx, args[0], in)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", task.ID)
		return nil
	})

	cmd.Flags().String("title", "", "new title")
	cmd.Flags().String("description", "", "new description")

	return cmd
}

func taskStatusCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "status <task-id> <active|completed|canceled>",
		Short:     "Set the status of a task",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"active", "completed", "canceled"},
	}
	cmd.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		task, err := a.Tasks.UpdateTaskStatus(ctx, args[0], model.TaskStatus(args[1]))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", task.ID, task.Status)
		return nil
	})
	return cmd
}

func taskDeleteCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task you own",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.Tasks.DeleteTask(ctx, args[0]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
		return nil
	})
	return cmd
}

func taskProgressCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress <task-id>",
		Short: "Print the share of checked items of a task",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		progress, err := a.Tasks.TaskProgress(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d%%\n", progress)
		return nil
	})
	return cmd
}

// memberIndex maps user ids to team members.
func memberIndex(ctx context.Context, a *app.App) (map[string]model.TeamMember, error) {
	members, err := a.Users.ListTeamMembers(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]model.TeamMember, len(members))
	for _, m := range members {
		index[m.ID] = m
	}
	return index, nil
}

// resolveUser accepts a user id or e-mail and returns the user id.
func resolveUser(ctx context.Context, a *app.App, who string) (string, error) {
	members, err := a.Users.ListTeamMembers(ctx)
	if err != nil {
		return "", err
	}
	for _, m := range members {
		if m.ID == who || strings.EqualFold(m.Email, who) {
			return m.ID, nil
		}
	}
	return "", fmt.Errorf("no team member %q", who)
}
