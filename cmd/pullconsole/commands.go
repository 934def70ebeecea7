package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/imageops/pullconsole/internal/api"
	"github.com/imageops/pullconsole/internal/auditlog"
	"github.com/imageops/pullconsole/internal/config"
	"github.com/imageops/pullconsole/internal/logging"
	"github.com/imageops/pullconsole/internal/session"
	"github.com/imageops/pullconsole/tui"
)

var version = "dev"

var (
	loginUsername string
	loginPassword string
	specFile      string
)

func init() {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the pre-pull service",
		RunE:  runLogin,
	}
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		RunE:  runLogout,
	})

	taskCmd := &cobra.Command{Use: "task", Short: "Manage pull tasks"}
	taskCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a pull task from a YAML spec file",
		RunE:  runTaskCreate,
	}
	taskCreateCmd.Flags().StringVarP(&specFile, "file", "f", "", "task spec file")
	taskCreateCmd.MarkFlagRequired("file")
	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pull tasks",
		RunE:  runTaskList,
	})
	taskCmd.AddCommand(&cobra.Command{
		Use:   "cancel <task-id>",
		Short: "Cancel a pending or running task",
		Args:  cobra.ExactArgs(1),
		RunE:  runTaskCancel,
	})
	rootCmd.AddCommand(taskCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "dash",
		Short: "Run the interactive dashboard (the default)",
		RunE:  runConsole,
	})

	scheduleCmd := &cobra.Command{Use: "scheduled", Short: "Manage scheduled tasks"}
	scheduleCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a scheduled task from a YAML spec file",
		RunE:  runScheduleCreate,
	}
	scheduleCreateCmd.Flags().StringVarP(&specFile, "file", "f", "", "schedule spec file")
	scheduleCreateCmd.MarkFlagRequired("file")
	scheduleCmd.AddCommand(scheduleCreateCmd)
	scheduleCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List scheduled tasks",
		RunE:  runScheduleList,
	})
	rootCmd.AddCommand(scheduleCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("pullconsole", version)
		},
	})
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.Load(path)
}

func newGuard() (*session.Guard, error) {
	path, err := session.DefaultPath()
	if err != nil {
		return nil, err
	}
	return session.NewGuard(path), nil
}

// newClient builds the gateway with the stored session as token source.
// Any 401 clears the stored session, so the next invocation lands on the
// login path instead of retrying a dead token.
func newClient(cfg *config.Config, guard *session.Guard) *api.Client {
	return api.New(cfg.Server.URL,
		api.WithTimeout(cfg.Timeout()),
		api.WithTokenSource(guard.Token),
		api.WithUnauthorizedHook(func() { _ = guard.Clear() }),
	)
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	guard, err := newGuard()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Path, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sessionPath, err := session.DefaultPath()
	if err != nil {
		return err
	}
	audit, err := auditlog.Open(filepath.Join(filepath.Dir(sessionPath), "audit.db"))
	if err != nil {
		// The console works without the local action log.
		logger.Warn("audit log unavailable: " + err.Error())
		audit = nil
	} else {
		defer audit.Close()
	}

	client := newClient(cfg, guard)
	p := tea.NewProgram(tui.NewModel(cfg, client, guard, audit, logger), tea.WithAltScreen())

	// Hot-reload the config file so poll interval and toast duration can be
	// tuned without restarting the console.
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if watcher, werr := config.NewWatcher(path, func(fresh *config.Config) {
		p.Send(tui.ConfigReloadedMsg{Cfg: fresh})
	}); werr == nil {
		watcher.Start(context.Background())
		defer watcher.Stop()
	}

	_, err = p.Run()
	return err
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	guard, err := newGuard()
	if err != nil {
		return err
	}

	username := loginUsername
	if username == "" {
		username, err = prompt("Username: ")
		if err != nil {
			return err
		}
	}
	password := loginPassword
	if password == "" {
		password, err = prompt("Password: ")
		if err != nil {
			return err
		}
	}

	client := newClient(cfg, guard)
	resp, err := client.Login(context.Background(), username, password)
	if err != nil {
		return fmt.Errorf("login failed: %s", api.UserMessage(err))
	}
	if err := guard.Establish(session.Session{Token: resp.Token, User: resp.User}); err != nil {
		return err
	}
	fmt.Printf("Signed in as %s (%s)\n", resp.User.Username, resp.User.Role)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	guard, err := newGuard()
	if err != nil {
		return err
	}
	if err := guard.Clear(); err != nil {
		return err
	}
	fmt.Println("Signed out")
	return nil
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	cfg, guard, err := requireSession()
	if err != nil {
		return err
	}
	req, err := loadTaskSpec(specFile)
	if err != nil {
		return err
	}

	client := newClient(cfg, guard)
	task, err := client.CreateTask(context.Background(), *req)
	if err != nil {
		return fmt.Errorf("creating task: %s", api.UserMessage(err))
	}
	fmt.Printf("Created task %s (%d images)\n", task.TaskID, len(task.Images))
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	cfg, guard, err := requireSession()
	if err != nil {
		return err
	}
	client := newClient(cfg, guard)
	resp, err := client.ListTasks(context.Background(), api.ListTasksParams{Limit: 50})
	if err != nil {
		return fmt.Errorf("listing tasks: %s", api.UserMessage(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TASK ID\tSTATUS\tIMAGES\tCREATED")
	for _, t := range resp.Tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.TaskID, t.Status, strings.Join(t.Images, ","), t.CreatedAt)
	}
	fmt.Fprintf(w, "\n%d of %d tasks\n", len(resp.Tasks), resp.Total)
	return w.Flush()
}

func runTaskCancel(cmd *cobra.Command, args []string) error {
	cfg, guard, err := requireSession()
	if err != nil {
		return err
	}
	client := newClient(cfg, guard)
	if err := client.CancelTask(context.Background(), args[0]); err != nil {
		return fmt.Errorf("cancelling task: %s", api.UserMessage(err))
	}
	fmt.Println("Cancelled", args[0])
	return nil
}

func runScheduleCreate(cmd *cobra.Command, args []string) error {
	cfg, guard, err := requireSession()
	if err != nil {
		return err
	}
	req, err := loadScheduleSpec(specFile)
	if err != nil {
		return err
	}

	client := newClient(cfg, guard)
	sched, err := client.CreateScheduledTask(context.Background(), *req)
	if err != nil {
		return fmt.Errorf("creating schedule: %s", api.UserMessage(err))
	}
	fmt.Printf("Created schedule %s (%s)\n", sched.Name, sched.CronExpr)
	return nil
}

func runScheduleList(cmd *cobra.Command, args []string) error {
	cfg, guard, err := requireSession()
	if err != nil {
		return err
	}
	client := newClient(cfg, guard)
	resp, err := client.ListScheduledTasks(context.Background(), api.ListScheduledTasksParams{Limit: 50})
	if err != nil {
		return fmt.Errorf("listing schedules: %s", api.UserMessage(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCRON\tENABLED\tNEXT RUN")
	for _, s := range resp.Tasks {
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", s.Name, s.CronExpr, s.Enabled, s.NextExecutionAt)
	}
	return w.Flush()
}

func requireSession() (*config.Config, *session.Guard, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	guard, err := newGuard()
	if err != nil {
		return nil, nil, err
	}
	if !guard.IsAuthenticated() {
		return nil, nil, fmt.Errorf("not signed in; run 'pullconsole login' first")
	}
	return cfg, guard, nil
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
