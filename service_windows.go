//go:build windows

// Package main provides Windows service support for GenAI Studio.
//
// service_windows.go implements the Windows Service interface using
// github.com/kardianos/service, so the studio can run as a background
// service with proper Start/Stop handling.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kardianos/service"
)

// Program implements service.Interface for Windows Service integration.
// It wraps the application lifecycle in Start/Stop methods.
type Program struct {
	ctx    context.Context
	cancel context.CancelFunc
	exit   chan struct{}
}

// Start is called when the service is started. It launches the studio
// in a goroutine and returns immediately.
func (p *Program) Start(s service.Service) error {
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.exit = make(chan struct{})

	go p.run()
	return nil
}

// Stop signals the application to shut down and waits for it.
func (p *Program) Stop(s service.Service) error {
	p.cancel()

	select {
	case <-p.exit:
	case <-time.After(30 * time.Second):
		return fmt.Errorf("timeout waiting for service to stop")
	}
	return nil
}

// run executes the full application until Stop cancels the context.
func (p *Program) run() {
	defer close(p.exit)
	runApp(p.ctx)
}

// ServiceConfig returns the service configuration for Windows.
func ServiceConfig() *service.Config {
	return &service.Config{
		Name:        "GenAIStudio",
		DisplayName: "GenAI Studio Service",
		Description: "Text-to-image web studio with local caching and generation history",
		Option: service.KeyValue{
			"StartType": "automatic",
		},
	}
}

// RunAsService runs the application as a Windows service.
// Returns true if running as a service, false if running interactively.
func RunAsService() (bool, error) {
	prg := &Program{}

	s, err := service.New(prg, ServiceConfig())
	if err != nil {
		return false, fmt.Errorf("failed to create service: %w", err)
	}

	if service.Interactive() {
		return false, nil
	}

	if err := s.Run(); err != nil {
		return true, fmt.Errorf("service run failed: %w", err)
	}
	return true, nil
}

// controlService creates the service handle and applies one control action.
func controlService(action func(service.Service) error, doneMsg string) error {
	s, err := service.New(&Program{}, ServiceConfig())
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	if err := action(s); err != nil {
		return err
	}
	fmt.Println(doneMsg)
	return nil
}

// InstallService installs the application as a Windows service.
func InstallService() error {
	return controlService(func(s service.Service) error {
		return s.Install()
	}, "Service installed successfully")
}

// UninstallService removes the Windows service.
func UninstallService() error {
	return controlService(func(s service.Service) error {
		return s.Uninstall()
	}, "Service uninstalled successfully")
}

// StartService starts the Windows service.
func StartService() error {
	return controlService(func(s service.Service) error {
		return s.Start()
	}, "Service started successfully")
}

// StopService stops the Windows service.
func StopService() error {
	return controlService(func(s service.Service) error {
		return s.Stop()
	}, "Service stopped successfully")
}

// RestartService stops and then starts the Windows service.
func RestartService() error {
	return controlService(func(s service.Service) error {
		return s.Restart()
	}, "Service restarted successfully")
}

// ServiceStatus returns the current status of the Windows service.
func ServiceStatus() (service.Status, error) {
	s, err := service.New(&Program{}, ServiceConfig())
	if err != nil {
		return service.StatusUnknown, fmt.Errorf("failed to create service: %w", err)
	}

	status, err := s.Status()
	if err != nil {
		return service.StatusUnknown, fmt.Errorf("failed to get service status: %w", err)
	}
	return status, nil
}

// PrintServiceUsage prints the help/usage information for service commands.
func PrintServiceUsage() {
	fmt.Println("GenAI Studio Service Management")
	fmt.Println()
	fmt.Println("Usage: genai_studio.exe <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  install    Install the application as a Windows service")
	fmt.Println("  uninstall  Remove the Windows service (alias: remove)")
	fmt.Println("  start      Start the Windows service")
	fmt.Println("  stop       Stop the Windows service")
	fmt.Println("  restart    Restart the Windows service (stop then start)")
	fmt.Println("  status     Show the current service status")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Run without arguments to start the studio in foreground mode.")
}

// HandleServiceCommand handles service-related command-line arguments.
// Returns true if a service command was handled, false otherwise.
func HandleServiceCommand(args []string) bool {
	if len(args) < 2 {
		return false
	}

	var err error
	switch args[1] {
	case "install":
		err = InstallService()
	case "uninstall", "remove":
		err = UninstallService()
	case "start":
		err = StartService()
	case "stop":
		err = StopService()
	case "restart":
		err = RestartService()
	case "status":
		status, statusErr := ServiceStatus()
		if statusErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", statusErr)
			os.Exit(1)
		}
		switch status {
		case service.StatusRunning:
			fmt.Println("Service is running")
		case service.StatusStopped:
			fmt.Println("Service is stopped")
		default:
			fmt.Println("Service status unknown")
		}
		return true
	case "help", "-h", "--help", "-help":
		PrintServiceUsage()
		return true
	default:
		return false
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return true
}
