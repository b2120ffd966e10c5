package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"github.com/ilhambagus/pos-android-sdk/fps"
	"github.com/ilhambagus/pos-android-sdk/services/flowservice"
	"github.com/ilhambagus/pos-android-sdk/services/paymentservice"
)

var (
	serveHTTPAddr       string
	serveCardHostAddr   string
	serveLoyaltyBalance int64
	serveCurrency       string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the flow processing service with the sample services",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http-addr", "localhost:9080", "HTTP listen address of the flow processing service")
	serveCmd.Flags().StringVar(&serveCardHostAddr, "card-host", "", "ISO 8583 card host address (empty approves locally)")
	serveCmd.Flags().Int64Var(&serveLoyaltyBalance, "loyalty-balance", 40000, "loyalty points available, in minor units")
	serveCmd.Flags().StringVar(&serveCurrency, "currency", "EUR", "currency of the sample services")
}

func serve() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	paymentConfig := paymentservice.DefaultConfig()
	paymentConfig.CardHostAddr = serveCardHostAddr
	paymentConfig.Currency = serveCurrency
	payments := paymentservice.NewApp(logger, paymentConfig)
	if err := payments.Start(); err != nil {
		return fmt.Errorf("starting payment service: %w", err)
	}
	defer payments.Shutdown()

	loyaltyConfig := flowservice.DefaultConfig()
	loyaltyConfig.LoyaltyBalance = serveLoyaltyBalance
	loyaltyConfig.Currency = serveCurrency
	loyalty := flowservice.NewApp(logger, loyaltyConfig)
	if err := loyalty.Start(); err != nil {
		return fmt.Errorf("starting flow service: %w", err)
	}
	defer loyalty.Shutdown()

	fpsConfig := fps.DefaultConfig()
	fpsConfig.HTTPAddr = serveHTTPAddr
	app := fps.NewApp(logger, fpsConfig)
	if err := app.Start(); err != nil {
		return fmt.Errorf("starting fps: %w", err)
	}
	defer app.Shutdown()

	if err := app.Registry().Register(payments.ServiceInfo()); err != nil {
		return err
	}
	if err := app.Registry().Register(loyalty.ServiceInfo()); err != nil {
		return err
	}

	logger.Info("serving", slog.String("addr", app.Addr))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	return nil
}
