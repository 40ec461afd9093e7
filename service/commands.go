package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"postviewer/app/config"
	"postviewer/app/repositories"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Loader resolves the configuration and logger when a command runs.
type Loader func() (*config.Config, *zap.Logger, error)

// NewServeCommand returns the command that runs the viewer.
func NewServeCommand(load Loader) *cobra.Command {
	var listen, baseURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the post viewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if cmd.Flags().Changed("base-url") {
				cfg.BaseURL = baseURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return RunViewer(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (overrides config)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "REST API base URL (overrides config)")
	return cmd
}

// NewFixturesCommand returns the fixture API command tree.
func NewFixturesCommand(load Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Serve and manage the local fixture API",
		Long: `The fixture API serves users, posts and comments from a local Badger
database using the same paths as JSONPlaceholder. Point base_url at it to
run the viewer without network access to the public API.`,
	}
	cmd.AddCommand(
		newFixturesServeCommand(load),
		newSeedCommand(load),
		newCleanCommand(load),
		newBackupCommand(load),
		newRestoreCommand(load),
	)
	return cmd
}

func newFixturesServeCommand(load Loader) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the fixture API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cmd.Flags().Changed("listen") {
				cfg.Fixtures.Listen = listen
			}
			return RunFixtures(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (overrides config)")
	return cmd
}

func newSeedCommand(load Loader) *cobra.Command {
	var file string
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, posts and comments from a JSON or YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			return seed(cmd.Context(), cfg.Fixtures.DBPath, file, reset, cmd.OutOrStdout(), logger)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (.json, .yml or .yaml)")
	cmd.Flags().BoolVar(&reset, "reset", false, "drop existing records first")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newCleanCommand(load Loader) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the fixture database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load()
			if err != nil {
				return err
			}
			return clean(cfg.Fixtures.DBPath, yes, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newBackupCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Create a backup of the fixture database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			_, err = backup(cfg.Fixtures.DBPath, cfg.Fixtures.BackupDir, cmd.OutOrStdout(), logger)
			return err
		},
	}
}

func newRestoreCommand(load Loader) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Restore the fixture database from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			return restore(cfg.Fixtures.DBPath, args[0], yes, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "replace an existing database without asking")
	return cmd
}

// confirm asks a yes/no question on out and reads the answer from in.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	var response string
	fmt.Fscanln(in, &response)
	return response == "y" || response == "Y"
}

// seed loads file into the database at dbPath.
func seed(ctx context.Context, dbPath, file string, reset bool, out io.Writer, logger *zap.Logger) error {
	data, err := LoadSeed(file)
	if err != nil {
		return err
	}

	db, err := openDB(dbPath, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	store := repositories.NewBadgerStore(db)
	if reset {
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clearing database: %w", err)
		}
	}
	if err := data.Apply(store); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	users, posts, comments, err := store.Counts(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Database seeded: %d users, %d posts, %d comments\n", users, posts, comments)
	return nil
}

// clean removes the database.
func clean(dbPath string, yes bool, in io.Reader, out io.Writer) error {
	if !dbExists(dbPath) {
		fmt.Fprintln(out, "Database is already clean (does not exist)")
		return nil
	}

	if !yes && !confirm(in, out, "Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Fprintln(out, "Operation cancelled")
		return nil
	}

	if err := os.RemoveAll(dbPath); err != nil {
		return fmt.Errorf("failed to clean database: %w", err)
	}
	fmt.Fprintln(out, "Database cleaned successfully")
	return nil
}

// backup writes a full backup of the database into backupDir and returns
// the backup file path.
func backup(dbPath, backupDir string, out io.Writer, logger *zap.Logger) (string, error) {
	if !dbExists(dbPath) {
		fmt.Fprintln(out, "No database exists to backup")
		return "", nil
	}

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	db, err := openDB(dbPath, logger)
	if err != nil {
		return "", err
	}
	defer db.Close()

	backupFile := filepath.Join(backupDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if _, err := db.Backup(f, 0); err != nil {
		return "", fmt.Errorf("failed to backup database: %w", err)
	}

	fmt.Fprintf(out, "Database backed up successfully to %s\n", backupFile)
	return backupFile, nil
}

// restore replaces the database with the contents of backupFile.
func restore(dbPath, backupFile string, yes bool, in io.Reader, out io.Writer, logger *zap.Logger) error {
	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupFile)
	}
	if err != nil {
		return fmt.Errorf("failed to stat backup file: %w", err)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", backupFile)
	}

	if dbExists(dbPath) {
		if !yes && !confirm(in, out, "Existing database found. Do you want to replace it?") {
			fmt.Fprintln(out, "Operation cancelled")
			return nil
		}
		if err := os.RemoveAll(dbPath); err != nil {
			return fmt.Errorf("failed to remove existing database: %w", err)
		}
	}

	db, err := openDB(dbPath, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return db.Load(f, 4)
	}()
	if err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}

	fmt.Fprintln(out, "Database restored successfully")
	return nil
}
