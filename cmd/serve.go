package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	authmiddleware "github.com/vibast-solutions/lib-go-auth/middleware"
	"google.golang.org/grpc"

	"github.com/vibast-solutions/ms-go-bounces/app/controller"
	grpcserver "github.com/vibast-solutions/ms-go-bounces/app/grpc"
	"github.com/vibast-solutions/ms-go-bounces/app/queue"
	"github.com/vibast-solutions/ms-go-bounces/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  "Start both HTTP (Echo) and gRPC servers for the bounces service.",
	Run:   runServe,
}

// init registers the serve command.
func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe wires dependencies and starts HTTP and gRPC servers.
func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := openMySQL(cfg)
	if err != nil {
		logrus.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	rdb, err := openRedis(cfg)
	if err != nil {
		logrus.Fatalf("Failed to open redis: %v", err)
	}
	defer rdb.Close()

	bounceService, err := buildBounceService(cfg, db, rdb)
	if err != nil {
		logrus.Fatalf("Failed to build bounce service: %v", err)
	}

	internalAuth, closeAuth, err := buildInternalAuth(cfg)
	if err != nil {
		logrus.Fatalf("Failed to build auth client: %v", err)
	}
	defer closeAuth()

	producer := queue.NewBounceProducer(rdb)
	bounceController := controller.NewBounceController(bounceService, producer)
	grpcBounceServer := grpcserver.NewServer(bounceService, producer)

	e := setupHTTPServer(bounceController, authmiddleware.NewEchoInternalAuthMiddleware(internalAuth), cfg.InternalServiceName)
	grpcServer := setupGRPCServer(grpcBounceServer, authmiddleware.NewGRPCInternalAuthMiddleware(internalAuth), cfg.InternalServiceName)

	grpcAddr := net.JoinHostPort(cfg.GRPCHost, cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logrus.Fatalf("Failed to listen on gRPC port: %v", err)
	}

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
		logrus.Infof("Starting HTTP server on %s", httpAddr)
		if err := e.Start(httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	go func() {
		logrus.Infof("Starting gRPC server on %s", lis.Addr())
		if err := grpcServer.Serve(lis); err != nil {
			logrus.Fatalf("gRPC server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("HTTP shutdown error: %v", err)
	}
	grpcServer.GracefulStop()

	logrus.Info("Server stopped")
}

// setupHTTPServer configures the Echo HTTP server and routes. The /bounces group
// requires a caller API key granted access to serviceName.
func setupHTTPServer(
	bounceController *controller.BounceController,
	internalAuthMW *authmiddleware.EchoInternalAuthMiddleware,
	serviceName string,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit("12M"))

	bounces := e.Group("/bounces")
	internalAuthMW.ProtectAllWithAccess(bounces, serviceName)
	bounces.POST("", bounceController.Submit)
	bounces.POST("/parse", bounceController.Parse)
	bounces.GET("/:request_id/records", bounceController.Records)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

// setupGRPCServer builds the gRPC server with every unary call gated on serviceName access.
func setupGRPCServer(
	bounceServer *grpcserver.Server,
	internalAuthMW *authmiddleware.GRPCInternalAuthMiddleware,
	serviceName string,
) *grpc.Server {
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(internalAuthMW.UnaryRequireInternalAccess(serviceName)))
	grpcserver.Register(grpcServer, bounceServer)
	return grpcServer
}
