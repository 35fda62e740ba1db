package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	appMigrations "github.com/yigit/orghub/internal/app/migrations"
	"github.com/yigit/orghub/internal/app/models"
	appRepos "github.com/yigit/orghub/internal/app/repositories"
	"github.com/yigit/orghub/internal/app/services"
	"github.com/yigit/orghub/internal/bootstrap"
	"github.com/yigit/orghub/internal/config"
	"github.com/yigit/orghub/internal/db"
	"github.com/yigit/orghub/internal/pkg/auth"
	"github.com/yigit/orghub/internal/seed"
	"github.com/yigit/orghub/internal/server"
)

// ErrDataCheckFailed is returned by check-data when the report is not clean
var ErrDataCheckFailed = errors.New("data check found problems")

// NewRootCommand builds the orghubctl command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "orghubctl",
		Short:         "OrgHub administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", defaultConfigPath(), "Path to the configuration file")

	root.AddCommand(
		NewServeCommand(),
		NewMigrateCommand(),
		NewImportCommand(),
		NewCheckDataCommand(),
		NewHashPasswordCommand(),
		NewUserCommand(),
	)
	return root
}

func defaultConfigPath() string {
	if path := os.Getenv("ORGHUB_CONFIG"); path != "" {
		return path
	}
	return bootstrap.DefaultConfigPath
}

func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	return bootstrap.LoadConfigAndSetupLogger(path)
}

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the OrgHub API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			srv, err := server.NewServer(path)
			if err != nil {
				return err
			}
			return srv.Run()
		},
	}
}

// NewMigrateCommand creates the migrate command
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			database, err := db.NewPostgresDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := appMigrations.NewMigrator(database.Pool).Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}

// NewImportCommand creates the import command
func NewImportCommand() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Copy organizations from a JSON data file into PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lgr, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			from, _ := cmd.Flags().GetString("from")
			if from == "" {
				from = cfg.Storage.DataFile
			}

			database, err := db.NewPostgresDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			ctx := cmd.Context()
			if err := appMigrations.NewMigrator(database.Pool).Migrate(ctx); err != nil {
				return err
			}

			imported, err := seed.ImportOrganizations(ctx,
				appRepos.NewOrganizationFileRepository(from),
				appRepos.NewOrganizationPostgresRepository(database),
				lgr)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d organizations from %s\n", imported, from)
			return nil
		},
	}
	importCmd.Flags().String("from", "", "JSON data file to import (defaults to storage.data_file)")
	return importCmd
}

// NewCheckDataCommand creates the check-data command
func NewCheckDataCommand() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check-data",
		Short: "Report duplicate ids and names in a JSON data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("data")
			if path == "" {
				cfg, _, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				path = cfg.Storage.DataFile
			}
			return checkData(cmd.Context(), cmd, path)
		},
	}
	checkCmd.Flags().String("data", "", "JSON data file (defaults to storage.data_file)")
	return checkCmd
}

func checkData(ctx context.Context, cmd *cobra.Command, path string) error {
	orgs, err := appRepos.NewOrganizationFileRepository(path).Inspect(ctx)
	if err != nil {
		return err
	}

	report := services.CheckOrganizations(orgs)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Checked %d organizations and branches in %s\n", report.Organizations, path)

	for _, id := range report.DuplicateIDs {
		fmt.Fprintf(out, "duplicate organization id: %d\n", id)
	}
	for _, d := range report.DuplicateNames {
		fmt.Fprintf(out, "duplicate name in %s of %q (id %d): %q x%d\n", d.Table, d.OrganizationName, d.OrganizationID, d.Name, d.Count)
	}
	for _, d := range report.BothMemberAndApplicant {
		fmt.Fprintf(out, "member also listed as applicant in %q (id %d): %q\n", d.OrganizationName, d.OrganizationID, d.Name)
	}
	if report.MissingRecordIDs > 0 {
		fmt.Fprintf(out, "records without id: %d\n", report.MissingRecordIDs)
	}

	if !report.Clean() {
		return ErrDataCheckFailed
	}
	fmt.Fprintln(out, "No problems found")
	return nil
}

// NewHashPasswordCommand creates the hash-password command
func NewHashPasswordCommand() *cobra.Command {
	hashCmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for the users file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, _ := cmd.Flags().GetInt("cost")
			hash, err := auth.HashPasswordWithCost(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	hashCmd.Flags().Int("cost", auth.BcryptCost, "bcrypt cost")
	return hashCmd
}

// NewUserCommand creates the user management command
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts in the users file",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account to the users file",
		RunE: func(cmd *cobra.Command, args []string) error {
			usersFile, _ := cmd.Flags().GetString("users-file")
			if usersFile == "" {
				cfg, _, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				usersFile = cfg.Storage.UsersFile
			}

			username, _ := cmd.Flags().GetString("username")
			name, _ := cmd.Flags().GetString("name")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")
			officer, _ := cmd.Flags().GetBool("officer")
			cost, _ := cmd.Flags().GetInt("cost")

			if username == "" || name == "" || password == "" {
				return fmt.Errorf("username, name and password are required")
			}
			role = strings.ToLower(role)
			if role != models.PrimaryRoleFaculty && role != models.PrimaryRoleStudent {
				return fmt.Errorf("role must be %s or %s", models.PrimaryRoleFaculty, models.PrimaryRoleStudent)
			}

			repo := appRepos.NewUserRepository(usersFile)
			ctx := cmd.Context()
			users, err := repo.List(ctx)
			if err != nil {
				return err
			}
			if _, err := repo.GetByUsername(ctx, username); err == nil {
				return fmt.Errorf("user %q already exists", username)
			}

			hash, err := auth.HashPasswordWithCost(password, cost)
			if err != nil {
				return err
			}
			user := models.User{
				ID:           uuid.NewString(),
				Username:     username,
				Name:         name,
				PasswordHash: hash,
				PrimaryRole:  role,
			}
			if officer {
				user.Roles = []string{models.RoleOrgOfficer}
			}

			if err := repo.SaveAll(ctx, append(users, user)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", username, user.ID)
			return nil
		},
	}
	addCmd.Flags().String("users-file", "", "Users file (defaults to storage.users_file)")
	addCmd.Flags().String("username", "", "Login name (required)")
	addCmd.Flags().String("name", "", "Display name as it appears in member lists, e.g. \"Ruben, Stephen Joseph\" (required)")
	addCmd.Flags().String("password", "", "Password (required)")
	addCmd.Flags().String("role", models.PrimaryRoleStudent, "Primary role (faculty, student)")
	addCmd.Flags().Bool("officer", false, "Grant the organization officer role")
	addCmd.Flags().Int("cost", auth.BcryptCost, "bcrypt cost")

	userCmd.AddCommand(addCmd)
	return userCmd
}
