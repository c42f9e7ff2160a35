package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tasktracker/internal/app"
	"tasktracker/internal/terminal"
)

var (
	// clearYes skips the confirmation of the clear command
	clearYes bool
)

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "do not ask for confirmation")

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(clearCmd)
}

// session is an App driven by a terminal presenter.
type session struct {
	*runtime
	app  *app.App
	term *terminal.Terminal
}

func openSession(opts ...terminal.Option) (*session, error) {
	rt, err := loadRuntime()
	if err != nil {
		return nil, err
	}

	backend, _ := app.OpenBackend(rt.cfg.Storage, rt.logger.Named("storage"))
	term := terminal.New(os.Stdin, os.Stdout, opts...)
	a := app.New(backend, term,
		app.WithLogger(rt.logger),
		app.WithStorageKey(rt.cfg.Storage.Key),
	)
	term.Attach(a)

	return &session{runtime: rt, app: a, term: term}, nil
}

func (s *session) close() {
	if err := s.app.Close(); err != nil {
		s.logger.Warn("failed to close storage", zap.Error(err))
	}
	s.runtime.close()
}

// shellCmd runs the interactive terminal
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Manage tasks in an interactive terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()
		return s.term.Run(cmd.Context())
	},
}

// stateCmd prints the stored tasks and statistics
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the stored tasks and statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(terminal.WithQuietRender())
		if err != nil {
			return err
		}
		defer s.close()
		s.app.ShowState(cmd.OutOrStdout())
		return nil
	},
}

// demoCmd adds the sample tasks
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Add sample tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(terminal.WithQuietRender())
		if err != nil {
			return err
		}
		defer s.close()
		added := s.app.AddDemoTasks()
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d demo tasks\n", added)
		return nil
	},
}

// exportCmd writes an export file
var exportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Export all tasks to tasks-YYYY-MM-DD.json",
	Long: `Export all tasks to a pretty-printed JSON file named after today's date.

Examples:
  # Export into the configured export.dir
  tasktracker export

  # Export into another directory
  tasktracker export ./backups`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(terminal.WithQuietRender())
		if err != nil {
			return err
		}
		defer s.close()

		dir := s.cfg.Export.Dir
		if len(args) == 1 {
			dir = args[0]
		}
		path, ok := s.app.ExportTasks(dir)
		if !ok {
			return fmt.Errorf("export failed")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
		return nil
	},
}

// importCmd replaces all tasks with an export file
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all tasks with the contents of an export file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}

		s, err := openSession(terminal.WithQuietRender())
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.app.ImportTasks(data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks\n", len(s.app.State().Tasks))
		return nil
	},
}

// clearCmd deletes every stored task
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete ALL tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes && !confirm(cmd, "Are you sure you want to delete ALL tasks? [y/N] ") {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted")
			return nil
		}

		s, err := openSession(terminal.WithQuietRender())
		if err != nil {
			return err
		}
		defer s.close()

		if !s.app.ClearAllData() {
			return fmt.Errorf("failed to clear tasks")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All tasks deleted")
		return nil
	},
}

func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprint(cmd.OutOrStdout(), question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
