package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"interactbot/pkg/config"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage interactbot as a system service",
	Long: `Install and control interactbot as a system service.

The service manager is picked per platform:
- Linux: systemd
- macOS: launchd
- Windows: Windows Service Manager

Examples:
  sudo interactbot -c /etc/interactbot/config.yaml service install
  sudo interactbot service start
  sudo interactbot service status`,
}

var serviceRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run under the service manager, or in the foreground when started by hand",
	Run: func(cmd *cobra.Command, args []string) {
		if service.Interactive() {
			newApp("foreground", false).Run()
			return
		}
		if err := RunService(); err != nil {
			fmt.Fprintf(os.Stderr, "Error running service: %v\n", err)
			os.Exit(1)
		}
	},
}

var serviceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check service status",
	Run: func(cmd *cobra.Command, args []string) {
		if err := StatusService(); err != nil {
			fmt.Fprintf(os.Stderr, "Error checking service status: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	for _, action := range []struct{ name, short string }{
		{"install", "Install as a system service started on boot"},
		{"uninstall", "Uninstall the system service"},
		{"start", "Start the installed service"},
		{"stop", "Stop the running service"},
		{"restart", "Restart the service"},
	} {
		serviceCmd.AddCommand(&cobra.Command{
			Use:   action.name,
			Short: action.short,
			Run:   runServiceControl(action.name),
		})
	}
	serviceCmd.AddCommand(serviceRunCmd)
	serviceCmd.AddCommand(serviceStatusCmd)
}

// Program runs the serving application under a service manager.
type Program struct {
	app    *fx.App
	logger service.Logger
}

// Start implements service.Interface.
func (p *Program) Start(svc service.Service) error {
	if p.logger != nil {
		_ = p.logger.Info("Starting interactbot service")
	}

	p.app = newApp("service", false)
	if err := p.app.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	return p.app.Start(ctx)
}

// Stop implements service.Interface.
func (p *Program) Stop(svc service.Service) error {
	if p.logger != nil {
		_ = p.logger.Info("Stopping interactbot service")
	}
	if p.app == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := p.app.Stop(ctx); err != nil {
		if p.logger != nil {
			_ = p.logger.Errorf("Error stopping service: %v", err)
		}
		return err
	}
	return nil
}

// ServiceConfig returns the service definition. The config path in effect
// is passed on so the service loads the same file.
func ServiceConfig() *service.Config {
	args := []string{"service", "run"}

	path := strings.TrimSpace(configPath)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(config.ConfigPathEnv))
	}
	if path != "" {
		args = append([]string{"-c", path}, args...)
	}

	return &service.Config{
		Name:        "interactbot",
		DisplayName: "interactbot",
		Description: "HTTP interactions endpoint for chat application commands",
		Arguments:   args,
	}
}

func newService() (service.Service, *Program, error) {
	prg := &Program{}
	s, err := service.New(prg, ServiceConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("creating service: %w", err)
	}
	return s, prg, nil
}

func runServiceControl(action string) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		s, _, err := newService()
		if err == nil {
			err = service.Control(s, action)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running service %s: %v\n", action, err)
			fmt.Fprintln(os.Stderr, "\nNote: managing system services requires administrator privileges.")
			fmt.Fprintln(os.Stderr, "Please run with sudo (Linux/macOS) or as Administrator (Windows).")
			os.Exit(1)
		}
		fmt.Printf("Service %s: ok\n", action)
	}
}

// StatusService prints the state of the installed service.
func StatusService() error {
	s, _, err := newService()
	if err != nil {
		return err
	}

	st, err := s.Status()
	if err != nil {
		return fmt.Errorf("getting service status: %w", err)
	}

	fmt.Printf("Service Status: %s\n", statusLabel(st))
	return nil
}

func statusLabel(st service.Status) string {
	switch st {
	case service.StatusRunning:
		return "Running"
	case service.StatusStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// RunService blocks under the service manager until it stops the service.
func RunService() error {
	s, prg, err := newService()
	if err != nil {
		return err
	}

	logger, err := s.Logger(nil)
	if err != nil {
		return fmt.Errorf("creating service logger: %w", err)
	}
	prg.logger = logger

	if err := s.Run(); err != nil {
		_ = logger.Error(err)
		return err
	}
	return nil
}
