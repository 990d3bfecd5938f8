package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/decker502/pganims/pkg/asset"
	"github.com/decker502/pganims/pkg/components"
	"github.com/decker502/pganims/pkg/ecs"
	"github.com/decker502/pganims/pkg/events"
	"github.com/decker502/pganims/pkg/player"
	"github.com/decker502/pganims/pkg/systems"
)

type simulateOptions struct {
	anim    int
	once    bool
	next    string
	ticks   int
	fps     float64
	polling bool
	mqtt    bool
}

func newSimulateCommand(ctx *commandContext) *cobra.Command {
	opts := simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the engine headless and print emitted notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.anim, "anim", 0, "Configuration index to play (0 keeps the model default)")
	flags.BoolVar(&opts.once, "once", false, "Play once instead of looping")
	flags.StringVar(&opts.next, "next", "", "Queue of entry sets, e.g. \"1;2,3\" (last set plays first)")
	flags.IntVar(&opts.ticks, "ticks", 120, "Number of ticks to run")
	flags.Float64Var(&opts.fps, "fps", 60, "Ticks per second")
	flags.BoolVar(&opts.polling, "polling", false, "Check every directive each tick")
	flags.BoolVar(&opts.mqtt, "mqtt", false, "Also publish notifications to the MQTT broker ($PGANIMS_MQTT_URL)")

	return cmd
}

func runSimulate(ctx *commandContext, opts simulateOptions, out, errOut io.Writer) error {
	if opts.fps <= 0 {
		return fmt.Errorf("fps must be positive, got %v", opts.fps)
	}
	queue, err := parseQueue(opts.next)
	if err != nil {
		return err
	}

	cfg, err := ctx.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	model, mc, err := ctx.loadModel()
	if err != nil {
		return err
	}

	em := ecs.NewEntityManager()
	store := asset.NewStore()
	store.Insert(asset.Handle(mc.ID), model)

	plugin := systems.NewAnimsPlugin(em, store, cfg)
	plugin.SetLogger(ctx.logger(errOut))
	if opts.polling {
		plugin.SetPolling(true)
	}
	plugin.RequestGraph(asset.Handle(mc.ID))

	if opts.mqtt {
		sink := events.NewMQTTSink("animctl-"+strconv.FormatInt(time.Now().UnixNano(), 36), events.DefaultTopicPrefix)
		if err := sink.Connect(5 * time.Second); err != nil {
			return fmt.Errorf("connect %s: %w", events.BrokerURL(), err)
		}
		defer sink.Disconnect()
		plugin.Events().AddSink(sink)
	}

	dt := 1 / opts.fps
	var now float64
	plugin.Events().Subscribe(func(ev events.AnimEvent) {
		fmt.Fprintf(out, "t=%7.3fs  %-5s anim=%d skeleton=%d\n", now, ev.Kind, ev.Anim, ev.Skeleton)
	})

	owner := em.CreateEntity()
	ecs.AddComponent(em, owner, components.NewAnimatable(mc.DefaultAnim))
	skeleton := em.CreateEntity()
	em.SetParent(skeleton, owner)
	p := player.NewAnimationPlayer()
	ecs.AddComponent(em, skeleton, &components.AnimationPlayerComponent{Player: p})

	// 第一帧构建动画图并绑定
	plugin.Update(0)
	if err := plugin.ConfigErr(); err != nil {
		fmt.Fprintf(errOut, "warning: %v\n", err)
	}

	if opts.anim > 0 {
		var err error
		if opts.once {
			err = plugin.SetOnce(owner, opts.anim)
		} else {
			err = plugin.SetLoop(owner, opts.anim)
		}
		if err != nil {
			return err
		}
	}
	if queue != nil {
		if err := plugin.SetNext(owner, queue); err != nil {
			return err
		}
	}

	for i := 0; i < opts.ticks; i++ {
		now += dt
		plugin.Update(dt)
	}

	d, err := plugin.Directive(owner)
	if err != nil {
		return err
	}
	def := plugin.Definition()
	playing := make([]string, 0)
	for _, node := range p.PlayingAnimations() {
		if k, ok := def.IndexOf(node); ok {
			playing = append(playing, strconv.Itoa(k))
		}
	}
	fmt.Fprintf(out, "after %d ticks: entries=%v repeat=%v queued=%d playing=[%s]\n",
		opts.ticks, d.Indices(), d.Repeat(), len(d.Next()), strings.Join(playing, " "))
	return nil
}

// parseQueue 解析 "1;2,3" 形式的队列：分号分隔集合，逗号分隔索引
func parseQueue(s string) ([][]components.Entry, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var queue [][]components.Entry
	for _, set := range strings.Split(s, ";") {
		entries := make([]components.Entry, 0)
		for _, field := range strings.Split(set, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			idx, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("invalid queue index %q: %w", field, err)
			}
			entries = append(entries, components.NewEntry(idx))
		}
		queue = append(queue, entries)
	}
	return queue, nil
}
