/*
 * main.go, part of assemble.
 *
 * Copyright 2024 Matteo Degiacomi and the assemble contributors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Command assemble builds polymer chains from a monomer library and packs
// them into a simulation box.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/degiacom/assemble/config"
	"github.com/degiacom/assemble/internal/app"
	"github.com/degiacom/assemble/internal/logging"
	"github.com/spf13/cobra"
)

// Set at build time with -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func newBuildCommand() *cobra.Command {
	var setup string
	cmd := &cobra.Command{
		Use:   "build -c setup.yaml",
		Short: "Build the polymers of a setup file and pack them into a system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(setup, cmd.Flags())
			if err != nil {
				return err
			}
			log, err := app.Logger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()
			log.Info("assemble", logging.String("version", version), logging.String("setup", setup))
			res, err := app.New(cfg, log).Run(cmd.Context())
			if res != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%d of %d polymers built, outputs in %s\n", len(res.Built()), len(res.Chains), res.Folder)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVarP(&setup, "config", "c", "", "setup file (YAML)")
	f.String("output", ".", "folder where the system folder is created")
	f.Uint64("seed", 0, "random seed, 0 picks one")
	f.String("log-level", "info", "debug, info, warn or error")
	f.Int("workers", 1, "chains built, and packing trials run, at the same time")
	f.Int("trials", 100, "packing trials")
	cmd.MarkFlagRequired("config")
	return cmd
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "assemble",
		Short:         "Polymer chain builder and lattice packer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newBuildCommand(), &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "assemble %s (%s)\n", version, commit)
		},
	})
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
