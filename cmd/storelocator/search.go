package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/storelocator"
)

type searchFlags struct {
	address string
	lat     float64
	lng     float64
	coords  bool
	device  bool
	radius  float64
}

func searchCmd(env *string) *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run one search and print the interim and committed rankings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.coords = cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng")
			a, err := newApp(*env)
			if err != nil {
				return err
			}
			defer a.Close()
			return runSearch(cmd.Context(), cmd.OutOrStdout(), a.engine, f)
		},
	}
	cmd.Flags().StringVar(&f.address, "address", "", "Free-text address to search around")
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "Latitude to search around (with --lng)")
	cmd.Flags().Float64Var(&f.lng, "lng", 0, "Longitude to search around (with --lat)")
	cmd.Flags().BoolVar(&f.device, "device", false, "Search around the configured device position")
	cmd.Flags().Float64Var(&f.radius, "radius", 0, "Search radius; 0 uses the configured radius")
	cmd.MarkFlagsMutuallyExclusive("address", "device", "lat")
	cmd.MarkFlagsMutuallyExclusive("address", "device", "lng")
	return cmd
}

func runSearch(ctx context.Context, out io.Writer, engine *storelocator.Engine, f searchFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ch, cancel := engine.Subscribe(16)
	defer cancel()

	var (
		res storelocator.Result
		err error
	)
	switch {
	case f.address != "":
		res, err = engine.SearchAddress(ctx, f.address, f.radius)
	case f.coords:
		res, err = engine.SearchCoordinates(ctx, storelocator.Location{Lat: f.lat, Lng: f.lng}, f.radius)
	case f.device:
		res, err = engine.SearchDevice(ctx, f.radius)
	default:
		return errors.New("one of --address, --lat/--lng or --device is required")
	}
	if err != nil {
		return err
	}

	if r := res.Snapshot.Resolved; r != nil {
		fmt.Fprintf(out, "Location: %s (%s)\n", r.FormattedAddress, r.Location)
	}
	if res.Outcome == storelocator.OutcomeViewport {
		fmt.Fprintln(out, "Not a specific place; zoom to the area to browse stores.")
		return nil
	}

	for {
		select {
		case snap := <-ch:
			if snap.SessionID != res.SessionID {
				continue
			}
			printSnapshot(out, snap)
		default:
			return nil
		}
	}
}

func printSnapshot(out io.Writer, snap storelocator.Snapshot) {
	fmt.Fprintf(out, "\n[%s] v%d\n", snap.Phase, snap.Version)
	if snap.Empty {
		fmt.Fprintln(out, "No stores found.")
		return
	}
	n := 0
	for _, r := range snap.Stores {
		if r.Hidden() {
			continue
		}
		n++
		line := fmt.Sprintf("%2d. %s", n, r.Store().Name())
		if t := r.DistanceText(); t != "" {
			line += "  " + t
		}
		if t := r.DurationText(); t != "" {
			line += "  (" + t + ")"
		}
		fmt.Fprintln(out, line)
	}
}
