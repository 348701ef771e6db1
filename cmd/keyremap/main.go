// Command keyremap grabs configured keyboard devices, remaps their keys
// according to a JSON keymap configuration, and replays the remapped
// events through a synthetic input device (spec.md §6).
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/uplg/keyremap/internal/config"
	"github.com/uplg/keyremap/internal/device"
	"github.com/uplg/keyremap/internal/remap"
	"github.com/uplg/keyremap/internal/sink"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:          "keyremap",
		Short:        "Grab and remap Linux keyboard devices",
		SilenceUsage: true,
		// Any invocation that names no known subcommand lands here.
		Args: cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(os.Stderr, cmd.UsageString())
			os.Exit(1)
		},
	}

	root.AddCommand(listCmd(), grabCmd(logger))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List character devices under /dev/input that report keyboard capability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := device.Enumerate()
			if err != nil {
				return err
			}
			for _, d := range devices {
				fmt.Println(d.String())
			}
			return nil
		},
	}
}

func grabCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "grab <config_path>",
		Short: "Start the grab manager with the given keymap configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}

			engine, err := remap.New(remap.KeymapConfig{Map: cfg.Map, Layers: cfg.Layers})
			if err != nil {
				return err
			}

			vdev, err := sink.Open()
			if err != nil {
				return err
			}
			defer vdev.Close()

			mgr := device.NewManager(cfg.KeyboardNames, engine, vdev, logger)
			if err := mgr.Run(); err != nil {
				return err
			}
			return nil
		},
	}
}
