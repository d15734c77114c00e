package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/strand-ui/strand/pkg/component"
	"github.com/strand-ui/strand/pkg/inspect"
	"github.com/strand-ui/strand/pkg/reactive"
	"github.com/strand-ui/strand/pkg/telemetry"
	"github.com/strand-ui/strand/pkg/vtree"
)

func inspectCmd() *cobra.Command {
	var (
		addr     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Serve the inspector over a self-mutating demo application",
		Long: `Mount a demo component on the in-memory recorder platform, mutate its
state on an interval, and serve the inspector HTTP surface:

  GET /state    JSON snapshot of the observed state
  GET /events   WebSocket stream of flush and patch events
  GET /metrics  Prometheus exposition`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), addr, interval)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8372", "Listen address")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Demo mutation interval")

	return cmd
}

func runInspect(ctx context.Context, addr string, interval time.Duration) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(telemetry.WithRegistry(reg))
	tracer := telemetry.NewTracer()
	feed := inspect.NewFeed(logger)
	hooks := telemetry.Fanout(metrics, tracer, feed)

	sched := reactive.NewScheduler(
		reactive.WithLogger(logger),
		reactive.WithHooks(hooks),
	)

	state := reactive.Observe(map[string]any{
		"tick":  0,
		"items": []any{},
	}).(*reactive.Object)

	render := func() *vtree.VNode {
		items := state.Get("items").(*reactive.List)
		children := make([]*vtree.VNode, 0, items.Len()+1)
		children = append(children,
			vtree.El("h1", nil, vtree.Text(fmt.Sprintf("tick %d", state.Get("tick")))))
		for i := 0; i < items.Len(); i++ {
			label := fmt.Sprint(items.At(i))
			children = append(children,
				vtree.El("li", nil, vtree.Text(label)).WithKey(label))
		}
		return vtree.El("div", vtree.Attrs{"id": "demo"}, children...)
	}

	rec := vtree.NewRecorder()
	inst := component.Mount(rec.Body(), rec, render,
		component.WithLogger(logger),
		component.WithScheduler(sched),
		component.WithPatchHooks(hooks),
	)
	defer inst.Teardown()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tick, _ := state.Peek("tick").(int)
				state.Set("tick", tick+1)
				items := state.Peek("items").(*reactive.List)
				items.Append(fmt.Sprintf("event %d", tick))
				if items.Len() > 10 {
					items.RemoveAt(0)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	srv := inspect.NewServer(feed,
		inspect.WithStateSource(func() any { return state }),
		inspect.WithGatherer(reg),
		inspect.WithServerLogger(logger),
	)
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: srv.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("inspector listening", "addr", addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
