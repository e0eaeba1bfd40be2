package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/pcmnking/liangfstar/internal/calc"
	"github.com/pcmnking/liangfstar/internal/chartmcp"
	"github.com/pcmnking/liangfstar/internal/logging"
	"github.com/pcmnking/liangfstar/internal/rules"
	"github.com/pcmnking/liangfstar/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve chart tools over MCP",
	Long: `Starts an MCP server exposing compute_chart, evaluate_chart,
sector_flights, and list_rules. The transport is stdio unless mcp.transport
is set to sse, in which case the server listens on mcp.addr. With --watch
the rule file is reloaded in place whenever it changes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Bool("watch", false, "reload the rule file when it changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(c *cobra.Command, _ []string) error {
	logger := logging.New("mcp")
	ctx := c.Context()

	rs, err := rules.LoadOrDefault(cfg.RulesFile)
	if err != nil {
		return err
	}
	holder := rules.NewHolder(rs)

	texts, closeTexts, err := openTexts(ctx)
	if err != nil {
		return err
	}
	defer closeTexts()

	em, err := openEmitter()
	if err != nil {
		return err
	}
	defer em.Close()

	if watch, _ := c.Flags().GetBool("watch"); watch && cfg.RulesFile != "" {
		w, err := rules.NewWatcher(cfg.RulesFile)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
		go reloadLoop(ctx, w, holder, em)
	}

	srv := chartmcp.NewServer(chartmcp.Config{
		Rules:   holder,
		Calc:    calc.New(calc.WithLogger(logging.New("calc"))),
		Texts:   texts,
		Emitter: em,
		Logger:  logger,
	})

	if cfg.MCP.Transport == "sse" {
		return serveSSE(ctx, srv)
	}
	logger.Info("starting MCP server over stdio", "rules", rs.Source)
	return srv.Run(ctx, &mcp.StdioTransport{})
}

func serveSSE(ctx context.Context, srv *chartmcp.Server) error {
	logger := logging.New("mcp")
	httpSrv := &http.Server{
		Addr:              cfg.MCP.Addr,
		Handler:           srv.SSEHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting MCP server over SSE", "addr", cfg.MCP.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// reloadLoop swaps in the rule file on every settled change until ctx ends.
func reloadLoop(ctx context.Context, w *rules.Watcher, holder *rules.Holder, em *telemetry.Emitter) {
	logger := logging.New("rules")
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-w.Changes:
			if !ok {
				return
			}
			rs, err := holder.Reload(path)
			count := 0
			if rs != nil {
				count = rs.Len()
			}
			if err != nil {
				logger.Warn("rule reload failed, keeping previous rules", "path", path, "error", err)
			} else {
				logger.Info("rules reloaded", "path", path, "rules", count)
			}
			_ = em.RulesReloaded(path, count, err)
		}
	}
}
