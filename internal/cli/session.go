package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mpmf/NexxtTask/internal/services"
)

// promptPassword asks for a password without echoing it.
func promptPassword(title string) (string, error) {
	var password string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&password).
		Run()
	return password, err
}

func passwordFlag(cmd *cobra.Command) (string, error) {
	password, _ := cmd.Flags().GetString("password")
	if password != "" {
		return password, nil
	}
	return promptPassword("Password")
}

func signUpCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		password, err := passwordFlag(cmd)
		if err != nil {
			return err
		}

		a, err := cc.open(cmd.Context())
		if err != nil {
			return err
		}
		result, err := a.Auth.SignUp(cmd.Context(), services.SignUpParams{
			Email:       email,
			Password:    password,
			FullName:    name,
			Fingerprint: cc.cfg.Client.Fingerprint,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Signed up as %s (%s)\n", email, result.UserID)
		return nil
	})

	cmd.Flags().String("email", "", "e-mail address")
	cmd.Flags().String("name", "", "full name")
	cmd.Flags().String("password", "", "password (prompted when empty)")
	cmd.MarkFlagRequired("email")

	return cmd
}

func signInCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and store the session in the keyring",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, err := passwordFlag(cmd)
		if err != nil {
			return err
		}

		a, err := cc.open(cmd.Context())
		if err != nil {
			return err
		}
		_, err = a.Auth.SignIn(cmd.Context(), services.SignInParams{
			Email:       email,
			Password:    password,
			Fingerprint: cc.cfg.Client.Fingerprint,
		})
		if errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrUserPasswordMismatch) {
			return errors.New("invalid e-mail or password")
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", email)
		return nil
	})

	cmd.Flags().String("email", "", "e-mail address")
	cmd.Flags().String("password", "", "password (prompted when empty)")
	cmd.MarkFlagRequired("email")

	return cmd
}

func signOutCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signout",
		Short: "Sign out of every session",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		userID, _ := services.ActorFrom(ctx)
		if err := a.Auth.SignOut(ctx, userID); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	})
	return cmd
}

func whoAmICmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		userID, _ := services.ActorFrom(ctx)
		user, err := a.Auth.CurrentUser(ctx, userID)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n%s\n", user.DisplayName(), user.Email, user.ID)
		return nil
	})
	return cmd
}

func passwordCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change the password of the signed in user",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		password, err := passwordFlag(cmd)
		if err != nil {
			return err
		}
		userID, _ := services.ActorFrom(ctx)
		if err := a.Auth.UpdatePassword(ctx, userID, password); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Password updated")
		return nil
	})

	cmd.Flags().String("password", "", "new password (prompted when empty)")
	return cmd
}

func membersCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "List team members that tasks can be assigned to",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		members, err := a.Users.ListTeamMembers(ctx)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, m := range members {
			fmt.Fprintf(w, "%s  %-24s %s\n", m.ID, m.FullName, m.Email)
		}
		return nil
	})
	return cmd
}
