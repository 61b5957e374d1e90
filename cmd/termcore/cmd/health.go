package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/termcore/foundation/term/command"
	"github.com/msto63/termcore/internal/server"
	grpcx "github.com/msto63/termcore/pkg/core/grpc"
	"github.com/msto63/termcore/pkg/core/health"
)

var (
	healthURL  string
	healthGRPC string
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe a running front end",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().StringVar(&healthURL, "url", "", "base URL of the HTTP front end (default from config)")
	healthCmd.Flags().StringVar(&healthGRPC, "grpc", "", "gRPC health address (default from config, if enabled)")
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	out := cmd.OutOrStdout()

	url := healthURL
	if url == "" {
		url = "http://" + dialAddress(appConfig.Server.Address())
	}
	status, err := probeHTTP(ctx, url+"/health")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "http  %s  %s\n", url, renderResult(healthResult(status)))

	target := healthGRPC
	if target == "" && appConfig.Server.GRPCAddress() != "" {
		target = dialAddress(appConfig.Server.GRPCAddress())
	}
	if target != "" {
		conn, err := grpcx.Dial(target)
		if err != nil {
			return err
		}
		defer conn.Close()

		grpcStatus, err := grpcx.Probe(ctx, conn, server.HealthService)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "grpc  %s  %s\n", target, grpcStatus)
	}

	if status == string(health.StatusUnhealthy) {
		return errCommandFailed
	}
	return nil
}

func probeHTTP(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	var report struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return "", fmt.Errorf("failed to decode health report: %w", err)
	}
	return report.Status, nil
}

// dialAddress turns a wildcard listen address into one a client can dial
func dialAddress(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}

func healthResult(status string) command.Result {
	switch health.Status(status) {
	case health.StatusHealthy:
		return command.Info("%s", status)
	case health.StatusDegraded:
		return command.Warning("%s", status)
	default:
		return command.Error("%s", status)
	}
}
