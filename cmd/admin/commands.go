package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/infoamous-source/kiosk-sub001/config"
	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/internal/repository"
	"github.com/infoamous-source/kiosk-sub001/pkg/database"
	"github.com/infoamous-source/kiosk-sub001/pkg/jwt"
	applogger "github.com/infoamous-source/kiosk-sub001/pkg/logger"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errEmptyPassword = errors.New("password must not be empty")
)

// accountStore is the slice of the backend the account commands touch.
type accountStore interface {
	SignUp(ctx context.Context, email, password string, meta map[string]interface{}) (*model.AuthUser, error)
	SetPassword(ctx context.Context, userID, password string) error
	FindByEmail(ctx context.Context, email string) (*model.AuthUser, error)
	SetInstructorCode(ctx context.Context, userID, code string) error
}

// env is built lazily so that --help never touches the database.
type env struct {
	accounts accountStore
	migrator migrator
}

type migrator interface {
	Up() error
	Down(steps int) error
}

type opener func(configPath string) (*env, error)

func newRootCommand(out io.Writer) *cobra.Command {
	return newRootCommandWith(out, openEnv)
}

func newRootCommandWith(out io.Writer, open opener) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "kkakdugi-admin",
		Short:         "Maintenance tasks for the Kkakdugi School backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (env and .env are read regardless)")

	load := func() (*env, error) { return open(configPath) }
	cmd.AddCommand(newMigrateCommand(out, load))
	cmd.AddCommand(newCreateInstructorCommand(out, load))
	cmd.AddCommand(newResetPasswordCommand(out, load))
	return cmd
}

func newMigrateCommand(out io.Writer, load func() (*env, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			e, err := load()
			if err != nil {
				return err
			}
			if err := e.migrator.Up(); err != nil {
				return err
			}
			fmt.Fprintln(out, "migrations applied")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back the last N migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid steps %q", args[0])
				}
				steps = n
			}
			e, err := load()
			if err != nil {
				return err
			}
			if err := e.migrator.Down(steps); err != nil {
				return err
			}
			fmt.Fprintf(out, "rolled back %d migration(s)\n", steps)
			return nil
		},
	})
	return cmd
}

func newCreateInstructorCommand(out io.Writer, load func() (*env, error)) *cobra.Command {
	var email, name, code string
	cmd := &cobra.Command{
		Use:   "create-instructor",
		Short: "Create an instructor account; the password is prompted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			code = strings.TrimSpace(code)
			if code == "" {
				return errors.New("--code is required")
			}
			pwd, err := promptPassword(out)
			if err != nil {
				return err
			}
			e, err := load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			u, err := e.accounts.SignUp(ctx, strings.TrimSpace(email), pwd, map[string]interface{}{
				"name": strings.TrimSpace(name),
				"role": model.RoleInstructor,
			})
			if err != nil {
				return fmt.Errorf("sign up: %w", err)
			}
			if err := e.accounts.SetInstructorCode(ctx, u.ID, code); err != nil {
				return fmt.Errorf("set instructor code: %w", err)
			}
			fmt.Fprintf(out, "instructor %s created (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&code, "code", "", "Instructor code students enter when signing up")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func newResetPasswordCommand(out io.Writer, load func() (*env, error)) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Replace an account's password; the new password is prompted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pwd, err := promptPassword(out)
			if err != nil {
				return err
			}
			e, err := load()
			if err != nil {
				return err
			}
			u, err := e.accounts.FindByEmail(cmd.Context(), strings.TrimSpace(email))
			if err != nil {
				return fmt.Errorf("find account: %w", err)
			}
			if err := e.accounts.SetPassword(cmd.Context(), u.ID, pwd); err != nil {
				return fmt.Errorf("set password: %w", err)
			}
			fmt.Fprintf(out, "password updated for %s\n", u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func promptPassword(out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter password: ")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errEmptyPassword
	}
	return string(pwd), nil
}

func openEnv(configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Backend.Offline() {
		return nil, errors.New("backend url and key must be configured")
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.NewDB(cfg.Backend.URL, &cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	tables := repository.NewRepository(db)
	tokens := jwt.NewManager(cfg.Backend.Key, &cfg.Auth)
	auth := backend.NewAuthProvider(tables.AuthUser, tokens, nil, cfg.Auth.MinPasswordLength, logger)
	return &env{
		accounts: &backendAccounts{auth: auth, tables: tables},
		migrator: &sqlMigrator{db: sqlDB, logger: logger},
	}, nil
}

type backendAccounts struct {
	auth   *backend.AuthProvider
	tables *repository.Repository
}

func (a *backendAccounts) SignUp(ctx context.Context, email, password string, meta map[string]interface{}) (*model.AuthUser, error) {
	return a.auth.SignUp(ctx, email, password, meta)
}

func (a *backendAccounts) SetPassword(ctx context.Context, userID, password string) error {
	return a.auth.SetPassword(ctx, userID, password)
}

func (a *backendAccounts) FindByEmail(ctx context.Context, email string) (*model.AuthUser, error) {
	return a.tables.AuthUser.GetByEmail(ctx, strings.ToLower(email))
}

// SetInstructorCode writes the code onto the profile the insert trigger created.
func (a *backendAccounts) SetInstructorCode(ctx context.Context, userID, code string) error {
	return a.tables.Profile.Update(ctx, userID, map[string]interface{}{"instructor_code": code})
}

type sqlMigrator struct {
	db     *sql.DB
	logger *zap.Logger
}

func (m *sqlMigrator) Up() error            { return database.RunMigrations(m.db, m.logger) }
func (m *sqlMigrator) Down(steps int) error { return database.RollbackMigrations(m.db, steps, m.logger) }
