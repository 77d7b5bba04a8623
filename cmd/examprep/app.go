package main

import (
	"fmt"

	"examprep/internal/logger"
	"examprep/internal/output"
	"examprep/internal/services"
	"examprep/pkg/preptypes"
)

// app is the wired application a command runs against.
type app struct {
	cfg       services.AppConfig
	storage   *services.StorageService
	framework services.FrameworkGenerator
	workspace *services.Workspace
	markdown  *services.MarkdownService
	printer   *output.Printer
	paths     services.ConfigPaths
}

// Close releases the storage backend.
func (a *app) Close() {
	if a.storage == nil {
		return
	}
	if err := a.storage.Close(); err != nil {
		logger.Warn("Failed to close storage", "error", err)
	}
}

// loadApp initializes the service registry and assembles the app from it.
func loadApp(opts *rootOptions) (*app, error) {
	registry, err := initializeServices(opts)
	if err != nil {
		return nil, err
	}

	configService, err := serviceAs[*services.ConfigurationService](registry, "configuration")
	if err != nil {
		return nil, err
	}
	cfg, err := configService.AppConfig()
	if err != nil {
		return nil, err
	}
	storageService, err := serviceAs[*services.StorageService](registry, "storage")
	if err != nil {
		return nil, err
	}
	markdown, err := serviceAs[*services.MarkdownService](registry, "markdown")
	if err != nil {
		return nil, err
	}
	frameworkService, err := serviceAs[*services.FrameworkService](registry, "framework")
	if err != nil {
		return nil, err
	}

	options := output.TerminalOptions()
	if cfg.TestMode {
		options = []output.Option{output.TestMode()}
	}
	options = append(options, printerOptions(opts)...)
	a, err := newApp(cfg, storageService, frameworkService, markdown, output.ConfigureGlobal(options...))
	if err != nil {
		return nil, err
	}
	a.paths = configService.GetConfigPaths()
	return a, nil
}

// newApp builds the account workspace over the root namespace of storageService.
// Markdown wraps at the printer's width.
func newApp(cfg services.AppConfig, storageService *services.StorageService, generator services.FrameworkGenerator,
	markdown *services.MarkdownService, printer *output.Printer) (*app, error) {
	store, err := storageService.Store()
	if err != nil {
		return nil, err
	}
	if err := markdown.SetWordWrap(printer.Width()); err != nil {
		return nil, fmt.Errorf("failed to set markdown width: %w", err)
	}
	return &app{
		cfg:       cfg,
		storage:   storageService,
		framework: generator,
		workspace: services.NewWorkspace(store, generator, cfg),
		markdown:  markdown,
		printer:   printer,
	}, nil
}

// initializeServices registers every examprep service in dependency order and
// initializes them on a fresh global registry.
func initializeServices(opts *rootOptions) (*services.Registry, error) {
	registry := services.NewRegistry()
	services.SetGlobalRegistry(registry)

	for _, service := range []preptypes.Service{
		services.NewConfigurationService(opts.v, opts.configFile, opts.testMode),
		services.NewCatalogService(),
		services.NewDebugTransportService(),
		services.NewClientFactoryService(),
		services.NewStorageService(),
		services.NewMarkdownService(),
		services.NewFrameworkService(),
	} {
		if err := registry.RegisterService(service); err != nil {
			return nil, err
		}
	}

	if err := registry.InitializeAll(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	logger.Debug("Services initialized", "test_mode", opts.testMode)
	return registry, nil
}

// printerOptions maps the output flags onto printer options.
func printerOptions(opts *rootOptions) []output.Option {
	options := []output.Option{output.WithWidth(opts.width)}
	if opts.json {
		options = append(options, output.JSON())
	}
	return options
}

func serviceAs[T any](registry *services.Registry, name string) (T, error) {
	var zero T
	service, err := registry.GetService(name)
	if err != nil {
		return zero, err
	}
	typed, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("service %s has unexpected type %T", name, service)
	}
	return typed, nil
}
