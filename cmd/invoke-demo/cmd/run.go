package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sentinel-Gate/invoke-core/internal/config"
	"github.com/Sentinel-Gate/invoke-core/internal/domain/invoke"
)

var scenarios = map[string]func(cfg *config.Config, log *slog.Logger) error{
	"happy-path":    runHappyPath,
	"async-upgrade": runAsyncUpgrade,
	"cancel-race":   runCancelRace,
	"one-way":       runOneWay,
	"timeout":       runTimeout,
}

var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Run a named invoke-core pipeline scenario",
	Long: `Run drives one InvocationContext through the loopback Receiver for a
named scenario, logging its final outcome.

Available scenarios:
  happy-path     synchronous call, immediate reply
  async-upgrade  the invocation upgrades to asynchronous mid-flight and the
                 caller collects the result through a FutureHandle instead
  cancel-race    the caller requests cancellation concurrently with the
                 receiver producing a result
  one-way        the caller declares it will never read the result
  timeout        the caller gives up waiting before the receiver replies`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		level := slog.LevelInfo
		if cfg.DevMode {
			level = slog.LevelDebug
		}
		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		scenario, ok := scenarios[args[0]]
		if !ok {
			return fmt.Errorf("unknown scenario %q", args[0])
		}
		return scenario(cfg, log)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// demoProxy is the minimal ProxyHandler the scenarios share, recording
// whatever weak-affinity hint the core reports after a successful result
// pass.
type demoProxy struct {
	locator invoke.Locator
	mu      sync.Mutex
	attach  map[invoke.AttachmentKey]any
	hint    any
}

func newDemoProxy(locator invoke.Locator) *demoProxy {
	return &demoProxy{locator: locator, attach: make(map[invoke.AttachmentKey]any)}
}

func (d *demoProxy) GetLocator() invoke.Locator { return d.locator }

func (d *demoProxy) GetAttachment(key invoke.AttachmentKey) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.attach[key]
	return v, ok
}

func (d *demoProxy) SetAttachment(key invoke.AttachmentKey, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attach[key] = value
}

func (d *demoProxy) SetWeakAffinity(hint any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hint = hint
}

func runHappyPath(cfg *config.Config, log *slog.Logger) error {
	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer p.cleanup()

	proxy := newDemoProxy(invoke.Locator{Namespace: "orders", Identity: "shard-1"})
	ctx := invoke.New(invoke.Options{
		Locator:      proxy.locator,
		Method:       invoke.MethodDescriptor{Name: "PlaceOrder", ParameterTypes: []string{"string"}},
		Parameters:   []any{"sku-42"},
		Chain:        p.chain,
		ProxyHandler: proxy,
	})
	ctx.GetContextData().Set("sticky", "shard-1")

	receiver, err := newReceiver(cfg, func(ctx *invoke.InvocationContext) (any, error) {
		return "order placed: " + ctx.GetParameters()[0].(string), nil
	})
	if err != nil {
		return err
	}
	ctx.BindReceiver(receiver, &invoke.ReceiverInvocationContext{TransportID: "loopback-0"})

	if err := ctx.SendRequest(); err != nil {
		return err
	}
	val, err := ctx.AwaitResponse()
	if err != nil {
		return err
	}
	log.Info("happy-path complete", "result", val)
	return nil
}

// upgradeToAsync is prepended to the chain for the async-upgrade scenario:
// it calls ProceedAsynchronously before forwarding the request, so the
// caller's AwaitResponse returns PROCEED_ASYNC instead of blocking.
type upgradeToAsync struct{}

func (upgradeToAsync) HandleInvocation(ctx *invoke.InvocationContext) error {
	if err := ctx.ProceedAsynchronously(); err != nil {
		return err
	}
	return ctx.SendRequest()
}

func (upgradeToAsync) HandleInvocationResult(ctx *invoke.InvocationContext) (any, error) {
	return ctx.GetResult()
}

func runAsyncUpgrade(cfg *config.Config, log *slog.Logger) error {
	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer p.cleanup()

	chain := append([]invoke.Interceptor{upgradeToAsync{}}, p.chain...)
	proxy := newDemoProxy(invoke.Locator{Namespace: "reports", Identity: "shard-2"})
	ctx := invoke.New(invoke.Options{
		Locator:      proxy.locator,
		Method:       invoke.MethodDescriptor{Name: "GenerateReport"},
		Chain:        chain,
		ProxyHandler: proxy,
	})

	receiver, err := newReceiver(cfg, func(ctx *invoke.InvocationContext) (any, error) {
		return "report-ready", nil
	})
	if err != nil {
		return err
	}
	ctx.BindReceiver(receiver, &invoke.ReceiverInvocationContext{TransportID: "loopback-0"})

	if err := ctx.SendRequest(); err != nil {
		return err
	}
	result, err := ctx.AwaitResponse()
	if err != nil {
		return err
	}
	if !invoke.IsProceedAsync(result) {
		log.Info("async-upgrade resolved synchronously after all", "result", result)
		return nil
	}
	log.Info("caller switching to FutureHandle")
	future := invoke.NewFutureHandle(ctx)
	defer future.Close()
	val, err := future.Get()
	if err != nil {
		return err
	}
	log.Info("async-upgrade complete", "result", val)
	return nil
}

func runCancelRace(cfg *config.Config, log *slog.Logger) error {
	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer p.cleanup()

	proxy := newDemoProxy(invoke.Locator{Namespace: "billing", Identity: "shard-3"})
	ctx := invoke.New(invoke.Options{
		Locator:      proxy.locator,
		Method:       invoke.MethodDescriptor{Name: "Charge"},
		Chain:        p.chain,
		ProxyHandler: proxy,
	})
	cfg.Receiver.SimulatedLatency = "20ms"
	receiver, err := newReceiver(cfg, func(ctx *invoke.InvocationContext) (any, error) {
		return "charged", nil
	})
	if err != nil {
		return err
	}
	ctx.BindReceiver(receiver, &invoke.ReceiverInvocationContext{TransportID: "loopback-0"})

	future := invoke.NewFutureHandle(ctx)
	defer future.Close()

	if err := ctx.SendRequest(); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		cancelled := future.Cancel(false)
		log.Info("cancel requested", "accepted", cancelled)
	}()

	val, err := future.Get()
	wg.Wait()
	switch {
	case errors.Is(err, invoke.ErrCancelled):
		log.Info("cancel-race resolved: cancelled")
	case err != nil:
		return err
	default:
		log.Info("cancel-race resolved: completed first", "result", val)
	}
	return nil
}

func runOneWay(cfg *config.Config, log *slog.Logger) error {
	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer p.cleanup()

	proxy := newDemoProxy(invoke.Locator{Namespace: "telemetry", Identity: "shard-4"})
	ctx := invoke.New(invoke.Options{
		Locator:      proxy.locator,
		Method:       invoke.MethodDescriptor{Name: "EmitEvent"},
		Chain:        p.chain,
		ProxyHandler: proxy,
	})
	receiver, err := newReceiver(cfg, func(ctx *invoke.InvocationContext) (any, error) {
		return "event-accepted", nil
	})
	if err != nil {
		return err
	}
	ctx.BindReceiver(receiver, &invoke.ReceiverInvocationContext{TransportID: "loopback-0"})

	if err := ctx.SendRequest(); err != nil {
		return err
	}
	if err := ctx.SetDiscardResult(); err != nil {
		return err
	}
	receiver.Wait()
	log.Info("one-way call dispatched, result discarded without ever being read")
	return nil
}

func runTimeout(cfg *config.Config, log *slog.Logger) error {
	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer p.cleanup()

	proxy := newDemoProxy(invoke.Locator{Namespace: "batch", Identity: "shard-5"})
	ctx := invoke.New(invoke.Options{
		Locator:      proxy.locator,
		Method:       invoke.MethodDescriptor{Name: "RunBatch"},
		Chain:        p.chain,
		ProxyHandler: proxy,
	})
	slowCfg := *cfg
	slowCfg.Receiver.SimulatedLatency = "500ms"
	receiver, err := newReceiver(&slowCfg, func(ctx *invoke.InvocationContext) (any, error) {
		return "batch-complete", nil
	})
	if err != nil {
		return err
	}
	ctx.BindReceiver(receiver, &invoke.ReceiverInvocationContext{TransportID: "loopback-0"})

	future := invoke.NewFutureHandle(ctx)
	defer future.Close()

	if err := ctx.SendRequest(); err != nil {
		return err
	}
	_, err = future.GetTimeout(50 * time.Millisecond)
	if errors.Is(err, invoke.ErrTimeout) {
		log.Info("timeout scenario: gave up waiting, receiver is still running in the background")
		return nil
	}
	return err
}
