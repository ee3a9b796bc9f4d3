package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	api "github.com/oshokin/radio-bridge/internal/api/grpc/channel"
	"github.com/oshokin/radio-bridge/internal/config"
	"github.com/oshokin/radio-bridge/internal/device/adb"
	"github.com/oshokin/radio-bridge/internal/logger"
	"github.com/oshokin/radio-bridge/internal/metrics"
	repo "github.com/oshokin/radio-bridge/internal/repository/optimization"
)

// Options controls the radio-bridge process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// Serial overrides the configured handset serial.
	Serial string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the method channel server and blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "radio-bridge")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	serial := settings.Device.Serial
	if opts.Serial != "" {
		serial = opts.Serial
	}

	device := adb.NewClient(settings.Device.AdbPath,
		adb.WithSerial(serial),
		adb.WithTimeout(settings.Timeout))

	if err = device.EnsureServer(ctx); err != nil {
		return fmt.Errorf("prepare adb: %w", err)
	}

	var collectors *metrics.Metrics
	if settings.MetricsAddress != "" {
		collectors = metrics.New()
	}

	svc, err := newService(ctx, serviceOptions{
		device:       device,
		repo:         repo.NewFileRepository(settings.OptimizationFile),
		testingMenu:  settings.TestingMenu,
		metrics:      collectors,
		pollInterval: settings.PollInterval,
	})
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	defer svc.Close()

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	api.RegisterMethodChannelServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Radio bridge listening",
		"listen_address", listenAddress,
		"device_serial", serial,
		"optimization_file", settings.OptimizationFile,
		"log_level", logger.Level())

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()

		return nil
	})

	group.Go(func() error {
		if serveErr := grpcServer.Serve(lis); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", serveErr)
		}

		return nil
	})

	if collectors != nil {
		group.Go(func() error {
			return collectors.Serve(groupCtx, settings.MetricsAddress)
		})
	}

	if err = group.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise binds the configured port on all interfaces.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return ":" + port, nil
}
