package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jumpyouth/checkin/internal/app/models/dto"
)

var createUserAdmCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a staff account",
	Long: `Create a staff account with the given permissions.

Permissions: view_dashboard, view_groups, review_duplicates, add_event_day,
add_auditorium_count, add_visitor_count, manage_participants, export_data.`,
	RunE: runCreateUserAdm,
}

var (
	userName        string
	userPassword    string
	userFullName    string
	userEmail       string
	userSuperuser   bool
	userPermissions []string
)

func init() {
	rootAdmCmd.AddCommand(createUserAdmCmd)

	createUserAdmCmd.Flags().StringVar(&userName, "username", "", "Login name")
	createUserAdmCmd.Flags().StringVar(&userPassword, "password", "", "Password (at least 8 characters)")
	createUserAdmCmd.Flags().StringVar(&userFullName, "name", "", "Full name")
	createUserAdmCmd.Flags().StringVar(&userEmail, "email", "", "Email address")
	createUserAdmCmd.Flags().BoolVar(&userSuperuser, "superuser", false, "Grant every permission")
	createUserAdmCmd.Flags().StringSliceVar(&userPermissions, "perm", nil, "Permission to grant (repeatable)")
	_ = createUserAdmCmd.MarkFlagRequired("username")
	_ = createUserAdmCmd.MarkFlagRequired("password")
}

func runCreateUserAdm(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	deps, err := env.services(cmd.Context())
	if err != nil {
		return err
	}

	user, err := deps.AuthService.CreateUser(cmd.Context(), dto.CreateUserRequest{
		Username:    userName,
		Password:    userPassword,
		FullName:    userFullName,
		Email:       userEmail,
		IsSuperuser: userSuperuser,
		Permissions: userPermissions,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created user %q (id %d)\n", user.Username, user.ID)
	return nil
}
